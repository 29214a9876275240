/*
 * @Description: 存储提供方配置模型
 * @Author: 安知鱼
 * @Date: 2026-01-14 13:02:47
 * @LastEditTime: 2026-01-16 15:40:11
 * @LastEditors: 安知鱼
 *
 * 持久化形态：一个激活选择器 + 每个提供方各一份配置 JSON（即使未激活也保留）。
 * 校验边界上则通过 Selection() 还原为三选一的 ProviderSelection。
 */
package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
)

const (
	// StorageConfigFormat 是导出快照的格式标识
	StorageConfigFormat = "anheyu-storage-config"
	// StorageConfigVersion 是当前导出快照的版本
	StorageConfigVersion = 1
)

// 各提供方配置 JSON 中的密钥字段
var (
	AliOSSSecretFields = []string{"access_key_secret"}
	S3SecretFields     = []string{"secret_access_key"}
)

// AliOSSSettings 阿里云 OSS 配置
type AliOSSSettings struct {
	AccessKeyID     string `json:"access_key_id"`
	AccessKeySecret string `json:"access_key_secret"`
	Bucket          string `json:"bucket"`
	Region          string `json:"region"`
	Endpoint        string `json:"endpoint"`
	Domain          string `json:"domain"`
	UseHTTPS        bool   `json:"use_https"`
}

// S3Settings AWS S3 及兼容存储的配置
type S3Settings struct {
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	Bucket          string `json:"bucket"`
	Region          string `json:"region"`
	Endpoint        string `json:"endpoint"`
	ForcePathStyle  bool   `json:"force_path_style"`
	Domain          string `json:"domain"`
	UseHTTPS        bool   `json:"use_https"`
}

// StorageConfig 是完整的存储配置（含密钥），只在特权路径上返回
type StorageConfig struct {
	ActiveProvider constant.ProviderType `json:"active_provider"`
	AliyunOSS      AliOSSSettings        `json:"aliyun_oss"`
	AWSS3          S3Settings            `json:"aws_s3"`
}

// ProviderSelection 是激活提供方的三选一表示
type ProviderSelection interface {
	Provider() constant.ProviderType
}

type DisabledSelection struct{}

type AliOSSSelection struct {
	Settings AliOSSSettings
}

type S3Selection struct {
	Settings S3Settings
}

func (DisabledSelection) Provider() constant.ProviderType { return constant.ProviderDisabled }
func (AliOSSSelection) Provider() constant.ProviderType   { return constant.ProviderAliyunOSS }
func (S3Selection) Provider() constant.ProviderType       { return constant.ProviderAWSS3 }

// Selection 从"选择器 + 全部配置"的存储形态还原出当前激活的提供方
func (c StorageConfig) Selection() ProviderSelection {
	switch c.ActiveProvider {
	case constant.ProviderAliyunOSS:
		return AliOSSSelection{Settings: c.AliyunOSS}
	case constant.ProviderAWSS3:
		return S3Selection{Settings: c.AWSS3}
	default:
		return DisabledSelection{}
	}
}

// AliOSSSettingsInput 是阿里云 OSS 配置的部分更新，nil 表示未提供
type AliOSSSettingsInput struct {
	AccessKeyID     *string `json:"access_key_id"`
	AccessKeySecret *string `json:"access_key_secret"`
	Bucket          *string `json:"bucket"`
	Region          *string `json:"region"`
	Endpoint        *string `json:"endpoint"`
	Domain          *string `json:"domain"`
	UseHTTPS        *bool   `json:"use_https"`
}

// ApplyTo 把输入合并到已存储的配置上，空密钥视为未提供
func (in *AliOSSSettingsInput) ApplyTo(dst AliOSSSettings) AliOSSSettings {
	if in == nil {
		return dst
	}
	setString(&dst.AccessKeyID, in.AccessKeyID)
	setSecret(&dst.AccessKeySecret, in.AccessKeySecret)
	setString(&dst.Bucket, in.Bucket)
	setString(&dst.Region, in.Region)
	setString(&dst.Endpoint, in.Endpoint)
	setString(&dst.Domain, in.Domain)
	if in.UseHTTPS != nil {
		dst.UseHTTPS = *in.UseHTTPS
	}
	return dst
}

// S3SettingsInput 是 S3 配置的部分更新，nil 表示未提供
type S3SettingsInput struct {
	AccessKeyID     *string `json:"access_key_id"`
	SecretAccessKey *string `json:"secret_access_key"`
	Bucket          *string `json:"bucket"`
	Region          *string `json:"region"`
	Endpoint        *string `json:"endpoint"`
	ForcePathStyle  *bool   `json:"force_path_style"`
	Domain          *string `json:"domain"`
	UseHTTPS        *bool   `json:"use_https"`
}

// ApplyTo 把输入合并到已存储的配置上，空密钥视为未提供
func (in *S3SettingsInput) ApplyTo(dst S3Settings) S3Settings {
	if in == nil {
		return dst
	}
	setString(&dst.AccessKeyID, in.AccessKeyID)
	setSecret(&dst.SecretAccessKey, in.SecretAccessKey)
	setString(&dst.Bucket, in.Bucket)
	setString(&dst.Region, in.Region)
	setString(&dst.Endpoint, in.Endpoint)
	setString(&dst.Domain, in.Domain)
	if in.ForcePathStyle != nil {
		dst.ForcePathStyle = *in.ForcePathStyle
	}
	if in.UseHTTPS != nil {
		dst.UseHTTPS = *in.UseHTTPS
	}
	return dst
}

// StorageConfigInput 是 upsert 的请求体，ActiveProvider 为空时保持当前选择
type StorageConfigInput struct {
	ActiveProvider string               `json:"active_provider"`
	AliyunOSS      *AliOSSSettingsInput `json:"aliyun_oss"`
	AWSS3          *S3SettingsInput     `json:"aws_s3"`
}

// StorageConfigSnapshot 是导出的配置快照，包含密钥
type StorageConfigSnapshot struct {
	Format         string                `json:"format"`
	Version        int                   `json:"version"`
	ExportedAt     time.Time             `json:"exported_at"`
	ActiveProvider constant.ProviderType `json:"active_provider"`
	AliyunOSS      AliOSSSettings        `json:"aliyun_oss"`
	AWSS3          S3Settings            `json:"aws_s3"`
}

// StorageConfigImport 是导入的请求体，快照中缺省的密钥同样保留已存储的值
type StorageConfigImport struct {
	Format  string `json:"format"`
	Version int    `json:"version"`
	StorageConfigInput
}

// ImportResult 导入结果
type ImportResult struct {
	ActiveProvider constant.ProviderType `json:"active_provider"`
}

// RedactJSONFields 从 JSON 对象中移除指定字段。
// 无法解析为对象时返回空字符串，保证不会把原文泄露出去。
func RedactJSONFields(raw string, fields ...string) string {
	if strings.TrimSpace(raw) == "" {
		return raw
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &obj); err != nil || obj == nil {
		return ""
	}
	for _, f := range fields {
		delete(obj, f)
	}
	out, err := json.Marshal(obj)
	if err != nil {
		return ""
	}
	return string(out)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func setSecret(dst *string, src *string) {
	if src != nil && strings.TrimSpace(*src) != "" {
		*dst = strings.TrimSpace(*src)
	}
}
