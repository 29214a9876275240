/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-06-15 12:16:18
 * @LastEditTime: 2026-01-18 17:21:44
 * @LastEditors: 安知鱼
 */
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
)

// Response 是统一的API返回结构体
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// ErrorData 是业务错误响应中 data 字段的结构
type ErrorData struct {
	Kind constant.ErrorKind `json:"kind"`
	Code string             `json:"code"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: message,
		Data:    data,
	})
}

// Fail 失败响应
func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// SuccessWithStatus 成功响应，但允许自定义 HTTP 状态码。
// 这对于返回 201 Created 或 202 Accepted 等状态非常有用。
func SuccessWithStatus(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// StatusOf 返回业务错误大类对应的 HTTP 状态码
func StatusOf(kind constant.ErrorKind) int {
	switch kind {
	case constant.KindNotFound:
		return http.StatusNotFound
	case constant.KindAlreadyExists, constant.KindDeleteForbidden:
		return http.StatusConflict
	case constant.KindInvalidParameter:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// FailWithError 把 service 返回的错误转换为失败响应。
// 未归类的内部错误只返回通用提示，调试模式下才附带底层原因。
func FailWithError(c *gin.Context, err error) {
	biz := constant.AsBizError(err)
	status := StatusOf(biz.Kind)

	message := biz.Message
	if biz.Kind == constant.KindInternal && gin.IsDebugging() {
		message = biz.Error()
	}

	c.JSON(status, Response{
		Code:    status,
		Message: message,
		Data:    ErrorData{Kind: biz.Kind, Code: biz.Code},
	})
}
