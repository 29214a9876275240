/*
 * @Description: 系统配置项定义
 * @Author: 安知鱼
 * @Date: 2025-06-28 14:02:11
 * @LastEditTime: 2026-01-16 17:20:33
 * @LastEditors: 安知鱼
 */
package configdef

import (
	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/model"
)

// Definition 定义了单个配置项的所有属性。
type Definition struct {
	Key     constant.SettingKey
	Value   string
	Comment string
	// SecretFields 是值（JSON 对象）中的密钥字段，非特权读取时会被移除
	SecretFields []string
}

// Redact 返回可对外展示的值
func (d Definition) Redact(value string) string {
	if len(d.SecretFields) == 0 {
		return value
	}
	return model.RedactJSONFields(value, d.SecretFields...)
}

// AllSettings 是系统中所有配置项的"单一事实来源"
var AllSettings = []Definition{
	// --- 存储提供方 ---
	{Key: constant.KeyStorageActiveProvider, Value: string(constant.ProviderDisabled), Comment: "当前激活的存储提供方 (disabled/aliyun_oss/aws_s3)"},
	{
		Key:          constant.KeyStorageAliyunOSS,
		Value:        `{"access_key_id":"","access_key_secret":"","bucket":"","region":"","endpoint":"","domain":"","use_https":true}`,
		Comment:      "阿里云 OSS 配置",
		SecretFields: model.AliOSSSecretFields,
	},
	{
		Key:          constant.KeyStorageAWSS3,
		Value:        `{"access_key_id":"","secret_access_key":"","bucket":"","region":"","endpoint":"","force_path_style":false,"domain":"","use_https":true}`,
		Comment:      "AWS S3 配置",
		SecretFields: model.S3SecretFields,
	},
}

var byKey = func() map[string]Definition {
	m := make(map[string]Definition, len(AllSettings))
	for _, d := range AllSettings {
		m[d.Key.String()] = d
	}
	return m
}()

// Lookup 按键查找配置定义
func Lookup(key string) (Definition, bool) {
	d, ok := byKey[key]
	return d, ok
}
