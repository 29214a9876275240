/*
 * @Description: 本地存储驱动
 * @Author: 安知鱼
 * @Date: 2025-06-28 00:21:55
 * @LastEditTime: 2026-01-16 13:10:44
 * @LastEditors: 安知鱼
 */
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
)

// LocalDriver 把文件保存在本地目录 root 下，并通过 urlPrefix 对外访问
type LocalDriver struct {
	root      string
	urlPrefix string
}

// NewLocalDriver 是 LocalDriver 的构造函数
func NewLocalDriver(root, urlPrefix string) (*LocalDriver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("解析本地存储目录失败: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("创建本地存储目录失败: %w", err)
	}
	if urlPrefix == "" {
		urlPrefix = "/"
	}
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}
	return &LocalDriver{root: abs, urlPrefix: urlPrefix}, nil
}

func (d *LocalDriver) Type() constant.StorageType {
	return constant.StorageLocal
}

// Root 返回本地存储根目录
func (d *LocalDriver) Root() string {
	return d.root
}

func (d *LocalDriver) Put(ctx context.Context, in *PutInput) (*PutResult, error) {
	dst, err := d.resolve(in.Key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return nil, fmt.Errorf("创建目标目录失败: %w", err)
	}
	// 优先直接移动临时文件，跨设备时退回到复制
	if err := os.Rename(in.SourcePath, dst); err != nil {
		if err := copyFile(in.SourcePath, dst); err != nil {
			os.Remove(dst)
			return nil, err
		}
	}
	key := filepath.ToSlash(strings.TrimPrefix(dst, d.root+string(filepath.Separator)))
	return &PutResult{
		Path: key,
		URL:  d.urlPrefix + escapeKey(key),
	}, nil
}

func (d *LocalDriver) Delete(ctx context.Context, locator string) error {
	target, err := d.resolve(locator)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("删除本地文件失败: %w", err)
	}
	return nil
}

// resolve 把存储键转换为 root 内的物理路径，拒绝越界的键
func (d *LocalDriver) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash("/" + key))
	p := filepath.Join(d.root, clean)
	if p == d.root || !strings.HasPrefix(p, d.root+string(filepath.Separator)) {
		return "", fmt.Errorf("非法的存储键: %q", key)
	}
	return p, nil
}

// copyFile 将源文件复制到目标路径
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("无法打开源文件: %w", err)
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("无法创建目标文件: %w", err)
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return fmt.Errorf("复制文件内容失败: %w", err)
	}

	// 确保数据写入磁盘
	if err := destFile.Sync(); err != nil {
		return fmt.Errorf("同步文件到磁盘失败: %w", err)
	}

	return nil
}
