/*
 * @Description: AWS S3 及兼容存储驱动
 * @Author: 安知鱼
 * @Date: 2025-09-28 12:00:00
 * @LastEditTime: 2026-01-16 13:37:50
 * @LastEditors: 安知鱼
 */
package storage

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/model"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// S3Driver 通过 PutObject 将文件写入 S3 或兼容存储
type S3Driver struct {
	client   *s3.Client
	settings model.S3Settings
	logger   *zap.Logger
}

// NewS3Driver 根据配置创建 S3 客户端
func NewS3Driver(ctx context.Context, s model.S3Settings, logger *zap.Logger) (*S3Driver, error) {
	if s.Bucket == "" || s.AccessKeyID == "" || s.SecretAccessKey == "" {
		return nil, fmt.Errorf("AWS S3配置不完整")
	}
	region := s.Region
	if region == "" {
		region = "us-east-1"
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.AccessKeyID, s.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("创建AWS S3配置失败: %w", err)
	}

	endpoint := s3Endpoint(s)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = s.ForcePathStyle
	})

	logger.Info("AWS S3客户端已创建", zap.String("bucket", s.Bucket), zap.String("region", region), zap.String("endpoint", endpoint))
	return &S3Driver{client: client, settings: s, logger: logger}, nil
}

func s3Endpoint(s model.S3Settings) string {
	endpoint := strings.TrimRight(strings.TrimSpace(s.Endpoint), "/")
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = scheme(s.UseHTTPS) + "://" + endpoint
	}
	return endpoint
}

func (d *S3Driver) Type() constant.StorageType {
	return constant.StorageAWSS3
}

func (d *S3Driver) Put(ctx context.Context, in *PutInput) (*PutResult, error) {
	f, err := os.Open(in.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("打开临时文件失败: %w", err)
	}
	defer f.Close()

	key := strings.TrimLeft(in.Key, "/")
	_, err = d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(d.settings.Bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(in.Size),
		ContentType:   aws.String(in.MimeType),
	})
	if err != nil {
		return nil, fmt.Errorf("上传文件到AWS S3失败: %w", err)
	}

	d.logger.Debug("AWS S3上传成功", zap.String("object_key", key))
	return &PutResult{ObjectKey: key, URL: d.objectURL(key)}, nil
}

func (d *S3Driver) Delete(ctx context.Context, locator string) error {
	_, err := d.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(d.settings.Bucket),
		Key:    aws.String(locator),
	})
	if err != nil {
		return fmt.Errorf("删除AWS S3对象失败: %w", err)
	}
	return nil
}

// objectURL 优先使用自定义域名；自定义 endpoint 时按路径样式拼接
func (d *S3Driver) objectURL(key string) string {
	s := d.settings
	if s.Domain != "" {
		return publicURL(s.Domain, s.UseHTTPS, key)
	}
	if endpoint := s3Endpoint(s); endpoint != "" {
		if s.ForcePathStyle {
			return publicURL(endpoint+"/"+s.Bucket, s.UseHTTPS, key)
		}
		host := strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")
		return publicURL(s.Bucket+"."+host, s.UseHTTPS, key)
	}
	region := s.Region
	if region == "" {
		region = "us-east-1"
	}
	return publicURL(fmt.Sprintf("%s.s3.%s.amazonaws.com", s.Bucket, region), true, key)
}
