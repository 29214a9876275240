/*
 * @Description: 请求日志中间件
 * @Author: 安知鱼
 * @Date: 2026-01-18 17:38:02
 * @LastEditTime: 2026-01-18 17:38:02
 * @LastEditors: 安知鱼
 */
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/anzhiyu-c/anheyu-attachment/internal/pkg/auth"
)

// RequestLogger 记录每个请求的方法、路径、状态码、耗时和操作人
func (m *Middleware) RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if actorID, err := auth.CurrentUserID(c); err == nil {
			fields = append(fields, zap.Uint("actor_id", actorID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			m.logger.Error("HTTP请求", fields...)
		case status >= 400:
			m.logger.Warn("HTTP请求", fields...)
		default:
			m.logger.Info("HTTP请求", fields...)
		}
	}
}
