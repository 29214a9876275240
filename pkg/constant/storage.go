/*
 * @Description: 存储提供方选择器
 * @Author: 安知鱼
 * @Date: 2026-01-14 10:27:44
 * @LastEditTime: 2026-01-14 10:27:44
 * @LastEditors: 安知鱼
 */
package constant

import "strings"

// ProviderType 是当前激活的存储提供方
type ProviderType string

const (
	// ProviderDisabled 表示不启用云存储，上传写入本地
	ProviderDisabled  ProviderType = "disabled"
	ProviderAliyunOSS ProviderType = "aliyun_oss"
	ProviderAWSS3     ProviderType = "aws_s3"

	// providerLocalAlias 是 disabled 的别名
	providerLocalAlias = "local"
)

// ParseProviderType 解析选择器，local 视为 disabled
func ParseProviderType(s string) (ProviderType, bool) {
	switch ProviderType(strings.TrimSpace(s)) {
	case ProviderDisabled, providerLocalAlias:
		return ProviderDisabled, true
	case ProviderAliyunOSS:
		return ProviderAliyunOSS, true
	case ProviderAWSS3:
		return ProviderAWSS3, true
	}
	return "", false
}

func (p ProviderType) IsValid() bool {
	_, ok := ParseProviderType(string(p))
	return ok
}

// StorageType 返回该提供方对应的附件存储类型
func (p ProviderType) StorageType() StorageType {
	switch p {
	case ProviderAliyunOSS:
		return StorageAliyunOSS
	case ProviderAWSS3:
		return StorageAWSS3
	default:
		return StorageLocal
	}
}
