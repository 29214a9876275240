/*
 * @Description: 系统配置键
 * @Author: 安知鱼
 * @Date: 2025-06-27 12:08:15
 * @LastEditTime: 2026-01-14 10:29:10
 * @LastEditors: 安知鱼
 */
package constant

type SettingKey string

func (k SettingKey) String() string {
	return string(k)
}

const (
	// KeyStorageActiveProvider 当前激活的存储提供方
	KeyStorageActiveProvider SettingKey = "STORAGE_ACTIVE_PROVIDER"
	// KeyStorageAliyunOSS 阿里云 OSS 配置 JSON，含密钥
	KeyStorageAliyunOSS SettingKey = "STORAGE_ALIYUN_OSS"
	// KeyStorageAWSS3 AWS S3 配置 JSON，含密钥
	KeyStorageAWSS3 SettingKey = "STORAGE_AWS_S3"
)
