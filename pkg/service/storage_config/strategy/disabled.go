/*
 * @Description: 未启用云存储时的策略
 * @Author: 安知鱼
 * @Date: 2026-01-15 14:02:31
 * @LastEditTime: 2026-01-15 14:02:31
 * @LastEditors: 安知鱼
 */
package strategy

import "github.com/anzhiyu-c/anheyu-attachment/pkg/domain/model"

// DisabledStrategy 上传写入本地，没有需要校验的配置
type DisabledStrategy struct{}

func NewDisabledStrategy() IProviderStrategy {
	return &DisabledStrategy{}
}

func (s *DisabledStrategy) ValidateSettings(selection model.ProviderSelection) error {
	return nil
}
