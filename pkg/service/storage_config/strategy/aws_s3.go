/*
 * @Description: AWS S3配置校验策略
 * @Author: 安知鱼
 * @Date: 2025-09-28 12:00:00
 * @LastEditTime: 2026-01-15 14:18:44
 * @LastEditors: 安知鱼
 */
package strategy

import (
	"net/url"
	"strings"

	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/model"
)

// AWSS3Strategy 校验 AWS S3 及兼容存储的配置
type AWSS3Strategy struct{}

// NewAWSS3Strategy 是 AWSS3Strategy 的构造函数
func NewAWSS3Strategy() IProviderStrategy {
	return &AWSS3Strategy{}
}

// ValidateSettings 校验AWS S3配置。
// 未配置自定义端点时地域必须是 AWS 地域格式；配置了端点时地域可以是兼容存储自己的取值（如 auto）。
func (s *AWSS3Strategy) ValidateSettings(selection model.ProviderSelection) error {
	sel, ok := selection.(model.S3Selection)
	if !ok {
		return constant.ErrInvalidParameter.WithMessage("AWS S3策略收到了不匹配的配置: %s", selection.Provider())
	}
	cfg := sel.Settings
	if err := requireFields("AWS S3",
		[2]string{"access_key_id", cfg.AccessKeyID},
		[2]string{"secret_access_key", cfg.SecretAccessKey},
		[2]string{"bucket", cfg.Bucket},
		[2]string{"region", cfg.Region},
	); err != nil {
		return err
	}

	if cfg.Endpoint == "" {
		if !s.isValidAWSRegion(cfg.Region) {
			return constant.ErrInvalidParameter.WithMessage("无效的AWS区域格式: %s", cfg.Region)
		}
		return nil
	}
	endpoint := cfg.Endpoint
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}
	if u, err := url.Parse(endpoint); err != nil || u.Host == "" {
		return constant.ErrInvalidParameter.WithMessage("无效的S3端点: %s", cfg.Endpoint)
	}
	return nil
}

// isValidAWSRegion 验证AWS区域格式是否正确
func (s *AWSS3Strategy) isValidAWSRegion(region string) bool {
	// AWS区域格式通常是: us-east-1, eu-west-1, ap-southeast-1 等
	if len(region) < 8 || len(region) > 20 {
		return false
	}
	if !strings.Contains(region, "-") {
		return false
	}
	for _, r := range region {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}
	return true
}
