/*
 * @Description: 附件与文件夹相关的枚举
 * @Author: 安知鱼
 * @Date: 2026-01-14 10:25:03
 * @LastEditTime: 2026-01-14 10:25:03
 * @LastEditors: 安知鱼
 */
package constant

// AttachmentKind 是附件的媒体分类
type AttachmentKind string

const (
	AttachmentKindImage AttachmentKind = "image"
	AttachmentKindAudio AttachmentKind = "audio"
	AttachmentKindVideo AttachmentKind = "video"
	AttachmentKindOther AttachmentKind = "other"
)

func (k AttachmentKind) IsValid() bool {
	switch k {
	case AttachmentKindImage, AttachmentKindAudio, AttachmentKindVideo, AttachmentKindOther:
		return true
	}
	return false
}

// FolderKind 是文件夹的分类提示，比附件分类多一个 all
type FolderKind string

const (
	FolderKindAll   FolderKind = "all"
	FolderKindImage FolderKind = "image"
	FolderKindAudio FolderKind = "audio"
	FolderKindVideo FolderKind = "video"
	FolderKindOther FolderKind = "other"
)

func (k FolderKind) IsValid() bool {
	switch k {
	case FolderKindAll, FolderKindImage, FolderKindAudio, FolderKindVideo, FolderKindOther:
		return true
	}
	return false
}

// Status 是文件夹与附件共用的启用状态
type Status string

const (
	StatusEnabled  Status = "enabled"
	StatusDisabled Status = "disabled"
)

func (s Status) IsValid() bool {
	return s == StatusEnabled || s == StatusDisabled
}

// StorageType 标识附件字节实际所在的存储后端
type StorageType string

const (
	StorageLocal     StorageType = "local"
	StorageAliyunOSS StorageType = "aliyun_oss"
	StorageAWSS3     StorageType = "aws_s3"
)

func (s StorageType) IsValid() bool {
	switch s {
	case StorageLocal, StorageAliyunOSS, StorageAWSS3:
		return true
	}
	return false
}

// IsCloud 云存储以 object_key 作为权威定位符，本地存储以 path 为准
func (s StorageType) IsCloud() bool {
	return s == StorageAliyunOSS || s == StorageAWSS3
}

const (
	// FolderNameMaxLength 文件夹名称的最大字符数
	FolderNameMaxLength = 100
	// DefaultPageSize 列表默认分页大小
	DefaultPageSize = 20
	// MaxPageSize 列表分页大小上限
	MaxPageSize = 100
)
