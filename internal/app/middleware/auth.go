/*
 * @Description: 认证与权限中间件
 * @Author: 安知鱼
 * @Date: 2025-06-15 11:30:55
 * @LastEditTime: 2026-01-18 17:35:10
 * @LastEditors: 安知鱼
 */
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/anzhiyu-c/anheyu-attachment/internal/pkg/auth"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/response"
)

type Middleware struct {
	secret []byte
	logger *zap.Logger
}

func NewMiddleware(secret []byte, logger *zap.Logger) *Middleware {
	return &Middleware{secret: secret, logger: logger}
}

// JWTAuth 是一个强制性的JWT认证中间件
func (m *Middleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.Request.Header.Get("Authorization")
		if authHeader == "" {
			response.Fail(c, http.StatusUnauthorized, "请求未携带Token，无权限访问")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			response.Fail(c, http.StatusUnauthorized, "Token格式不正确")
			c.Abort()
			return
		}

		claims, err := auth.ParseToken(parts[1], m.secret)
		if err != nil {
			m.logger.Debug("[JWTAuth] JWT token解析失败", zap.Error(err))
			response.Fail(c, http.StatusUnauthorized, "无效或过期的Token")
			c.Abort()
			return
		}

		c.Set(auth.ClaimsKey, claims)
		c.Next()
	}
}

// AdminAuth 是一个管理员权限验证中间件，必须挂在 JWTAuth 之后
func (m *Middleware) AdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(auth.ClaimsKey)
		if !exists {
			m.logger.Warn("[AdminAuth] 上下文中没有找到认证信息", zap.String("path", c.Request.URL.Path))
			response.Fail(c, http.StatusForbidden, "权限信息获取失败")
			c.Abort()
			return
		}

		claims, ok := claimsValue.(*auth.CustomClaims)
		if !ok {
			response.Fail(c, http.StatusForbidden, "权限信息格式不正确")
			c.Abort()
			return
		}

		userGroupID, err := claims.DecodeUserGroupID()
		if err != nil {
			m.logger.Warn("[AdminAuth] 解析用户组ID失败", zap.Error(err))
			response.Fail(c, http.StatusForbidden, "权限信息无效：用户组ID无法解析")
			c.Abort()
			return
		}

		if userGroupID != auth.AdminGroupID {
			m.logger.Info("[AdminAuth] 权限不足",
				zap.Uint("user_group_id", userGroupID),
				zap.String("path", c.Request.URL.Path))
			response.Fail(c, http.StatusForbidden, "权限不足：此操作需要管理员权限")
			c.Abort()
			return
		}

		c.Next()
	}
}
