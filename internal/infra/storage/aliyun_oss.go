/*
 * @Description: 阿里云OSS存储驱动
 * @Author: 安知鱼
 * @Date: 2025-09-28 18:00:00
 * @LastEditTime: 2026-01-16 13:24:09
 * @LastEditors: 安知鱼
 */
package storage

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/model"
	"go.uber.org/zap"
)

// AliOSSDriver 通过 PutObject 将文件写入阿里云 OSS
type AliOSSDriver struct {
	bucket   *oss.Bucket
	settings model.AliOSSSettings
	endpoint string
	logger   *zap.Logger
}

// AliOSSEndpoint 返回配置的 Endpoint，未配置时由地域推导
func AliOSSEndpoint(s model.AliOSSSettings) string {
	endpoint := strings.TrimSpace(s.Endpoint)
	if endpoint == "" {
		endpoint = s.Region + ".aliyuncs.com"
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = scheme(s.UseHTTPS) + "://" + endpoint
	}
	return endpoint
}

// NewAliOSSDriver 根据配置创建客户端和存储桶
func NewAliOSSDriver(s model.AliOSSSettings, logger *zap.Logger) (*AliOSSDriver, error) {
	if s.Bucket == "" || s.AccessKeyID == "" || s.AccessKeySecret == "" {
		return nil, fmt.Errorf("阿里云OSS配置不完整")
	}
	endpoint := AliOSSEndpoint(s)

	client, err := oss.New(endpoint, s.AccessKeyID, s.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("创建阿里云OSS客户端失败: %w", err)
	}
	bucket, err := client.Bucket(s.Bucket)
	if err != nil {
		return nil, fmt.Errorf("获取阿里云OSS存储桶失败: %w", err)
	}

	logger.Info("阿里云OSS客户端已创建", zap.String("bucket", s.Bucket), zap.String("endpoint", endpoint))
	return &AliOSSDriver{bucket: bucket, settings: s, endpoint: endpoint, logger: logger}, nil
}

func (d *AliOSSDriver) Type() constant.StorageType {
	return constant.StorageAliyunOSS
}

func (d *AliOSSDriver) Put(ctx context.Context, in *PutInput) (*PutResult, error) {
	f, err := os.Open(in.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("打开临时文件失败: %w", err)
	}
	defer f.Close()

	key := strings.TrimLeft(in.Key, "/")
	if err := d.bucket.PutObject(key, f,
		oss.ContentType(in.MimeType),
		oss.ContentLength(in.Size),
		oss.WithContext(ctx),
	); err != nil {
		return nil, fmt.Errorf("上传文件到阿里云OSS失败: %w", err)
	}

	d.logger.Debug("阿里云OSS上传成功", zap.String("object_key", key))
	return &PutResult{ObjectKey: key, URL: d.objectURL(key)}, nil
}

func (d *AliOSSDriver) Delete(ctx context.Context, locator string) error {
	if err := d.bucket.DeleteObject(locator, oss.WithContext(ctx)); err != nil {
		return fmt.Errorf("删除阿里云OSS对象失败: %w", err)
	}
	return nil
}

// objectURL 优先使用自定义域名，否则使用 bucket 默认域名
func (d *AliOSSDriver) objectURL(key string) string {
	if d.settings.Domain != "" {
		return publicURL(d.settings.Domain, d.settings.UseHTTPS, key)
	}
	host := d.endpoint
	host = strings.TrimPrefix(strings.TrimPrefix(host, "https://"), "http://")
	return publicURL(d.settings.Bucket+"."+host, d.settings.UseHTTPS, key)
}
