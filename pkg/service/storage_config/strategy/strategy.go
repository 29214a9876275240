/*
 * @Description: 定义了存储提供方校验策略的核心接口
 * @Author: 安知鱼
 * @Date: 2025-07-15 16:00:00
 * @LastEditTime: 2026-01-15 14:20:09
 * @LastEditors: 安知鱼
 */
package strategy

import (
	"strings"

	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/model"
)

// IProviderStrategy 定义了每种存储提供方必须实现的校验策略。
type IProviderStrategy interface {
	// ValidateSettings 在激活该提供方之前校验其配置，失败时返回 INVALID_PARAMETER
	ValidateSettings(selection model.ProviderSelection) error
}

// requireFields 检查必填字段，按传入顺序报告第一个缺失的字段
func requireFields(provider string, fields ...[2]string) error {
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			return constant.ErrInvalidParameter.WithMessage("%s 配置缺少必填字段: %s", provider, f[0])
		}
	}
	return nil
}
