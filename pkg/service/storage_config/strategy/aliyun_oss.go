/*
 * @Description: 阿里云OSS配置校验策略
 * @Author: 安知鱼
 * @Date: 2025-09-28 12:00:00
 * @LastEditTime: 2026-01-15 14:18:44
 * @LastEditors: 安知鱼
 */
package strategy

import (
	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/model"
)

// AliOSSRegions 是阿里云 OSS 公共云地域
var AliOSSRegions = map[string]struct{}{
	"oss-cn-hangzhou":      {},
	"oss-cn-shanghai":      {},
	"oss-cn-nanjing":       {},
	"oss-cn-fuzhou":        {},
	"oss-cn-wuhan-lr":      {},
	"oss-cn-qingdao":       {},
	"oss-cn-beijing":       {},
	"oss-cn-zhangjiakou":   {},
	"oss-cn-huhehaote":     {},
	"oss-cn-wulanchabu":    {},
	"oss-cn-shenzhen":      {},
	"oss-cn-heyuan":        {},
	"oss-cn-guangzhou":     {},
	"oss-cn-chengdu":       {},
	"oss-cn-hongkong":      {},
	"oss-us-west-1":        {},
	"oss-us-east-1":        {},
	"oss-ap-northeast-1":   {},
	"oss-ap-northeast-2":   {},
	"oss-ap-southeast-1":   {},
	"oss-ap-southeast-3":   {},
	"oss-ap-southeast-5":   {},
	"oss-ap-southeast-6":   {},
	"oss-ap-southeast-7":   {},
	"oss-eu-central-1":     {},
	"oss-eu-west-1":        {},
	"oss-me-east-1":        {},
	"oss-rus-west-1":       {},

	// 金融云
	"oss-cn-shanghai-finance-1": {},
}

// AliOSSStrategy 校验阿里云 OSS 配置
type AliOSSStrategy struct{}

// NewAliOSSStrategy 是 AliOSSStrategy 的构造函数
func NewAliOSSStrategy() IProviderStrategy {
	return &AliOSSStrategy{}
}

// ValidateSettings 身份、密钥、存储桶、地域均为必填，地域必须在公共云地域列表中
func (s *AliOSSStrategy) ValidateSettings(selection model.ProviderSelection) error {
	sel, ok := selection.(model.AliOSSSelection)
	if !ok {
		return constant.ErrInvalidParameter.WithMessage("阿里云OSS策略收到了不匹配的配置: %s", selection.Provider())
	}
	cfg := sel.Settings
	if err := requireFields("阿里云OSS",
		[2]string{"access_key_id", cfg.AccessKeyID},
		[2]string{"access_key_secret", cfg.AccessKeySecret},
		[2]string{"bucket", cfg.Bucket},
		[2]string{"region", cfg.Region},
	); err != nil {
		return err
	}
	if _, ok := AliOSSRegions[cfg.Region]; !ok {
		return constant.ErrInvalidParameter.WithMessage("无效的阿里云OSS地域: %s", cfg.Region)
	}
	return nil
}
