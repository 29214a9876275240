/*
 * @Description: 附件模型
 * @Author: 安知鱼
 * @Date: 2026-01-14 11:41:52
 * @LastEditTime: 2026-01-15 09:12:26
 * @LastEditors: 安知鱼
 */
package model

import (
	"strings"
	"time"

	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
)

// Attachment 描述一个已上传的文件及其字节所在位置。
// 本地存储以 Path 为准，云存储以 ObjectKey 为准；Hash 为空表示历史数据没有摘要。
type Attachment struct {
	ID           uint                    `json:"id"`
	FolderID     uint                    `json:"folder_id"`
	Kind         constant.AttachmentKind `json:"kind"`
	Name         string                  `json:"name"`
	OriginalName string                  `json:"original_name"`
	Filename     string                  `json:"filename"`
	Ext          string                  `json:"ext"`
	MimeType     string                  `json:"mime_type"`
	Size         int64                   `json:"size"`
	Storage      constant.StorageType    `json:"storage"`
	Path         string                  `json:"path"`
	URL          string                  `json:"url"`
	ObjectKey    string                  `json:"object_key"`
	Hash         string                  `json:"hash,omitempty"`
	Width        *int                    `json:"width,omitempty"`
	Height       *int                    `json:"height,omitempty"`
	Duration     *float64                `json:"duration,omitempty"`
	Status       constant.Status         `json:"status"`
	CreatorID    uint                    `json:"creator_id"`
	UpdaterID    uint                    `json:"updater_id"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// Locator 返回附件在其存储后端中的权威定位符
func (a *Attachment) Locator() string {
	if a.Storage.IsCloud() {
		return a.ObjectKey
	}
	return a.Path
}

// UpdateAttachmentParams 更新附件元数据的参数，nil 字段保持不变。
// FolderID 指向 0 表示移出到未归档。
type UpdateAttachmentParams struct {
	Name     *string                  `json:"name"`
	FolderID *uint                    `json:"folder_id"`
	Kind     *constant.AttachmentKind `json:"kind"`
	Status   *constant.Status         `json:"status"`
	ActorID  uint                     `json:"-"`
}

// AttachmentQuery 附件列表的过滤条件，FolderID 为 nil 时不过滤，为 0 时只查未归档
type AttachmentQuery struct {
	PageQuery
	FolderID *uint                   `form:"folder_id"`
	Kind     constant.AttachmentKind `form:"kind"`
	Status   constant.Status         `form:"status"`
	Storage  constant.StorageType    `form:"storage"`
	Keyword  string                  `form:"keyword"`
	MimeType string                  `form:"mime_type"`
}

// UploadResult 是单个文件的上传结果
type UploadResult struct {
	Attachment *Attachment `json:"attachment"`
	Reused     bool        `json:"reused"`
}

// UploadItemResult 是批量上传中某一个文件的结果，Attachment 与 Error 二选一
type UploadItemResult struct {
	Index        int         `json:"index"`
	OriginalName string      `json:"original_name"`
	Attachment   *Attachment `json:"attachment,omitempty"`
	Reused       bool        `json:"reused"`
	Error        *ItemError  `json:"error,omitempty"`
}

// ItemError 是批量结果中的错误描述
type ItemError struct {
	Kind    constant.ErrorKind `json:"kind"`
	Code    string             `json:"code"`
	Message string             `json:"message"`
}

// kindPrefixes 是 MIME 前缀到附件分类的映射表
var kindPrefixes = []struct {
	prefix string
	kind   constant.AttachmentKind
}{
	{"image/", constant.AttachmentKindImage},
	{"audio/", constant.AttachmentKindAudio},
	{"video/", constant.AttachmentKindVideo},
}

// InferKind 根据 MIME 类型推断附件分类，未命中的一律为 other
func InferKind(mimeType string) constant.AttachmentKind {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	for _, p := range kindPrefixes {
		if strings.HasPrefix(mt, p.prefix) {
			return p.kind
		}
	}
	return constant.AttachmentKindOther
}
