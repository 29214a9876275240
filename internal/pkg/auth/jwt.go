/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-06-28 00:21:55
 * @LastEditTime: 2026-01-18 17:10:02
 * @LastEditors: 安知鱼
 */
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/anzhiyu-c/anheyu-attachment/pkg/idgen"
)

// GenerateToken 生成一个新的 JWT Access Token
func GenerateToken(userID uint, userGroupID uint, secretKey []byte, ttl time.Duration) (string, error) {
	if len(secretKey) == 0 {
		return "", fmt.Errorf("JWT Secret 不能为空")
	}

	publicUserID, err := idgen.GeneratePublicID(userID, idgen.EntityTypeUser)
	if err != nil {
		return "", fmt.Errorf("生成用户公共ID失败: %w", err)
	}
	publicUserGroupID, err := idgen.GeneratePublicID(userGroupID, idgen.EntityTypeUserGroup)
	if err != nil {
		return "", fmt.Errorf("生成用户组公共ID失败: %w", err)
	}

	now := time.Now()
	claims := CustomClaims{
		UserID:      publicUserID,
		UserGroupID: publicUserGroupID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "anheyu-attachment",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey)
}

// ParseToken 解析 JWT Token
func ParseToken(tokenStr string, secretKey []byte) (*CustomClaims, error) {
	if len(secretKey) == 0 {
		return nil, fmt.Errorf("JWT Secret 不能为空")
	}

	claims := &CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("解析token失败: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("无效或过期Token")
	}
	return claims, nil
}

// DecodeUserID 解码 Claims 中的用户ID
func (c *CustomClaims) DecodeUserID() (uint, error) {
	return decode(c.UserID, idgen.EntityTypeUser)
}

// DecodeUserGroupID 解码 Claims 中的用户组ID
func (c *CustomClaims) DecodeUserGroupID() (uint, error) {
	return decode(c.UserGroupID, idgen.EntityTypeUserGroup)
}

func decode(publicID string, want uint64) (uint, error) {
	id, typ, err := idgen.DecodePublicID(publicID)
	if err != nil {
		return 0, err
	}
	if typ != want {
		return 0, fmt.Errorf("公共ID类型不匹配: %d", typ)
	}
	return id, nil
}

// CurrentUserID 返回经过 JWTAuth 认证的当前用户ID
func CurrentUserID(c *gin.Context) (uint, error) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return 0, errors.New("未找到认证信息")
	}
	claims, ok := v.(*CustomClaims)
	if !ok {
		return 0, errors.New("认证信息格式不正确")
	}
	return claims.DecodeUserID()
}
