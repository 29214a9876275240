/*
 * @Description: 定义了所有存储驱动需要遵守的接口和公共结构
 * @Author: 安知鱼
 * @Date: 2025-06-28 00:21:55
 * @LastEditTime: 2026-01-16 13:05:22
 * @LastEditors: 安知鱼
 */
package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
)

// PutInput 描述一次写入：字节已经完整落在本地临时文件中
type PutInput struct {
	Key        string // 存储键，形如 2026/01/<uuid>.png，与原始文件名无关
	SourcePath string // 临时文件路径
	Size       int64
	MimeType   string
}

// PutResult 是写入成功后的定位信息。
// 本地存储只有 Path 有意义，云存储以 ObjectKey 为准。
type PutResult struct {
	Path      string
	URL       string
	ObjectKey string
}

// Driver 定义了所有存储驱动必须实现的接口。
// 只包含单次写入和尽力而为的删除，不涉及预签名、分片上传等能力。
type Driver interface {
	Type() constant.StorageType
	// Put 将临时文件写入存储。本地驱动可能直接移动该文件。
	Put(ctx context.Context, in *PutInput) (*PutResult, error)
	// Delete 删除一个已写入的对象，locator 为 Path 或 ObjectKey
	Delete(ctx context.Context, locator string) error
}

// publicURL 拼接对外访问地址，domain 可以带或不带协议
func publicURL(domain string, useHTTPS bool, key string) string {
	domain = strings.TrimRight(strings.TrimSpace(domain), "/")
	if !strings.HasPrefix(domain, "http://") && !strings.HasPrefix(domain, "https://") {
		domain = scheme(useHTTPS) + "://" + domain
	}
	return fmt.Sprintf("%s/%s", domain, escapeKey(key))
}

func scheme(useHTTPS bool) string {
	if useHTTPS {
		return "https"
	}
	return "http"
}

// escapeKey 对对象键逐段转义，保留路径分隔符
func escapeKey(key string) string {
	parts := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
