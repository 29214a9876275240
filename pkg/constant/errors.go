/*
 * @Description: 业务错误定义
 * @Author: 安知鱼
 * @Date: 2025-06-27 12:08:15
 * @LastEditTime: 2026-01-14 10:21:37
 * @LastEditors: 安知鱼
 */
package constant

import (
	"errors"
	"fmt"
)

// ErrorKind 是业务错误的大类，Handler 据此转换为 HTTP 状态码
type ErrorKind string

const (
	KindNotFound         ErrorKind = "NOT_FOUND"
	KindAlreadyExists    ErrorKind = "ALREADY_EXISTS"
	KindDeleteForbidden  ErrorKind = "DELETE_FORBIDDEN"
	KindInvalidParameter ErrorKind = "INVALID_PARAMETER"
	KindIOError          ErrorKind = "IO_ERROR"
	KindInternal         ErrorKind = "INTERNAL_ERROR"
)

// BizError 是带有稳定错误码的业务错误。
// errors.Is 按 Code 比较，因此附带了自定义消息的错误依然能匹配对应的哨兵错误。
type BizError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	cause   error
}

func (e *BizError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *BizError) Unwrap() error {
	return e.cause
}

// Is 让 errors.Is(err, ErrFolderNotFound) 这样的判断成立
func (e *BizError) Is(target error) bool {
	t, ok := target.(*BizError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithMessage 基于哨兵错误派生一个带自定义消息的新错误
func (e *BizError) WithMessage(format string, args ...interface{}) *BizError {
	return &BizError{Kind: e.Kind, Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

// Wrap 基于哨兵错误派生一个携带底层原因的新错误
func (e *BizError) Wrap(cause error) *BizError {
	return &BizError{Kind: e.Kind, Code: e.Code, Message: e.Message, cause: cause}
}

func newBizError(kind ErrorKind, code, message string) *BizError {
	return &BizError{Kind: kind, Code: code, Message: message}
}

// 定义业务逻辑相关的标准错误
var (
	// ErrFolderNotFound 表示文件夹不存在或已被删除，可以由 Handler 转换为 404
	ErrFolderNotFound = newBizError(KindNotFound, "FOLDER_NOT_FOUND", "文件夹不存在")

	// ErrAttachmentNotFound 表示附件不存在或已被删除，可以由 Handler 转换为 404
	ErrAttachmentNotFound = newBizError(KindNotFound, "ATTACHMENT_NOT_FOUND", "附件不存在")

	// ErrFolderAlreadyExists 表示同级目录下已存在同名文件夹，可以由 Handler 转换为 409
	ErrFolderAlreadyExists = newBizError(KindAlreadyExists, "FOLDER_ALREADY_EXISTS", "同级目录下已存在同名文件夹")

	// ErrFolderDeleteForbidden 表示文件夹下仍有子文件夹或附件，可以由 Handler 转换为 409
	ErrFolderDeleteForbidden = newBizError(KindDeleteForbidden, "FOLDER_DELETE_FORBIDDEN", "文件夹下存在子文件夹或附件，无法删除")

	// ErrInvalidParameter 表示请求参数错误，可以由 Handler 转换为 400
	ErrInvalidParameter = newBizError(KindInvalidParameter, "INVALID_PARAMETER", "参数错误")

	// ErrUploadIO 表示上传流读写失败，只影响当前文件
	ErrUploadIO = newBizError(KindIOError, "IO_ERROR", "文件读写失败")

	// ErrInternal 表示未归类的内部错误
	ErrInternal = newBizError(KindInternal, "INTERNAL_ERROR", "内部服务器错误")
)

// 仓储层使用的非业务错误
var (
	// ErrAttachmentHashConflict 表示同一存储下已存在相同内容哈希的附件（唯一索引冲突）
	ErrAttachmentHashConflict = errors.New("相同内容的附件已存在")
)

// AsBizError 将任意错误归类为 BizError，无法归类的统一视为内部错误
func AsBizError(err error) *BizError {
	if err == nil {
		return nil
	}
	var biz *BizError
	if errors.As(err, &biz) {
		return biz
	}
	return ErrInternal.Wrap(err)
}
