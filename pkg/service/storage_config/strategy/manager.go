/*
 * @Description: 存储提供方策略管理器的实现
 * @Author: 安知鱼
 * @Date: 2025-07-15 16:05:00
 * @LastEditTime: 2026-01-15 14:20:09
 * @LastEditors: 安知鱼
 */
package strategy

import (
	"sync"

	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/model"
)

// Manager 负责管理所有 IProviderStrategy 的实例。
// 在应用启动时创建并注册所有策略。
type Manager struct {
	strategies map[constant.ProviderType]IProviderStrategy
	mu         sync.RWMutex
}

// NewManager 创建一个新的策略管理器
func NewManager() *Manager {
	return &Manager{
		strategies: make(map[constant.ProviderType]IProviderStrategy),
	}
}

// NewDefaultManager 创建已注册全部内置策略的管理器
func NewDefaultManager() *Manager {
	m := NewManager()
	m.Register(constant.ProviderDisabled, NewDisabledStrategy())
	m.Register(constant.ProviderAliyunOSS, NewAliOSSStrategy())
	m.Register(constant.ProviderAWSS3, NewAWSS3Strategy())
	return m
}

// Register 注册一个具体策略处理器
func (m *Manager) Register(provider constant.ProviderType, strategy IProviderStrategy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strategies[provider] = strategy
}

// Get 获取指定提供方的策略处理器
func (m *Manager) Get(provider constant.ProviderType) (IProviderStrategy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	strategy, ok := m.strategies[provider]
	if !ok {
		return nil, constant.ErrInvalidParameter.WithMessage("不支持的存储提供方: %s", provider)
	}
	return strategy, nil
}

// Validate 只校验被激活的那个提供方
func (m *Manager) Validate(selection model.ProviderSelection) error {
	strategy, err := m.Get(selection.Provider())
	if err != nil {
		return err
	}
	return strategy.ValidateSettings(selection)
}
