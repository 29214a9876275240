/*
 * @Description: 存储驱动管理器，按存储类型解析并缓存驱动
 * @Author: 安知鱼
 * @Date: 2026-01-16 13:45:31
 * @LastEditTime: 2026-01-21 10:17:05
 * @LastEditors: 安知鱼
 */
package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/model"
	"go.uber.org/zap"
)

// ConfigSource 提供当前的存储配置（含密钥）
type ConfigSource interface {
	GetConfig(ctx context.Context) (*model.StorageConfig, error)
}

// Factory 根据存储配置构造某一类云存储驱动
type Factory func(ctx context.Context, cfg *model.StorageConfig, logger *zap.Logger) (Driver, error)

// Manager 负责根据存储类型返回对应的驱动。
// 云存储驱动按需创建并缓存，配置变更后通过 Invalidate 丢弃缓存。
type Manager struct {
	mu        sync.RWMutex
	local     Driver
	source    ConfigSource
	logger    *zap.Logger
	factories map[constant.StorageType]Factory
	fixed     map[constant.StorageType]Driver
	cached    map[constant.StorageType]Driver

	// generation 每次 Invalidate 加一，构建期间发生变化的驱动不会进入缓存
	generation uint64
}

// NewManager 创建管理器，并注册阿里云 OSS 与 AWS S3 的默认工厂
func NewManager(local Driver, source ConfigSource, logger *zap.Logger) *Manager {
	m := &Manager{
		local:     local,
		source:    source,
		logger:    logger,
		factories: make(map[constant.StorageType]Factory),
		fixed:     make(map[constant.StorageType]Driver),
		cached:    make(map[constant.StorageType]Driver),
	}
	m.RegisterFactory(constant.StorageAliyunOSS, func(ctx context.Context, cfg *model.StorageConfig, logger *zap.Logger) (Driver, error) {
		return NewAliOSSDriver(cfg.AliyunOSS, logger)
	})
	m.RegisterFactory(constant.StorageAWSS3, func(ctx context.Context, cfg *model.StorageConfig, logger *zap.Logger) (Driver, error) {
		return NewS3Driver(ctx, cfg.AWSS3, logger)
	})
	return m
}

// RegisterFactory 注册或替换某种存储类型的驱动工厂
func (m *Manager) RegisterFactory(t constant.StorageType, f Factory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.factories[t] = f
	delete(m.cached, t)
}

// Register 注册一个固定的驱动实例，优先于工厂，且不受 Invalidate 影响
func (m *Manager) Register(d Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fixed[d.Type()] = d
}

// Driver 返回指定存储类型的驱动
func (m *Manager) Driver(ctx context.Context, t constant.StorageType) (Driver, error) {
	if !t.IsValid() {
		return nil, constant.ErrInvalidParameter.WithMessage("不支持的存储类型: %s", t)
	}

	m.mu.RLock()
	if d, ok := m.fixed[t]; ok {
		m.mu.RUnlock()
		return d, nil
	}
	if t == constant.StorageLocal {
		m.mu.RUnlock()
		return m.local, nil
	}
	if d, ok := m.cached[t]; ok {
		m.mu.RUnlock()
		return d, nil
	}
	factory, ok := m.factories[t]
	gen := m.generation
	m.mu.RUnlock()
	if !ok {
		return nil, constant.ErrInvalidParameter.WithMessage("不支持的存储类型: %s", t)
	}

	cfg, err := m.source.GetConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取存储配置失败: %w", err)
	}
	d, err := factory(ctx, cfg, m.logger)
	if err != nil {
		return nil, constant.ErrInvalidParameter.WithMessage("存储 %s 不可用: %v", t, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation != gen {
		m.logger.Debug("存储配置在构建驱动期间发生变更，本次驱动不缓存", zap.String("storage", string(t)))
		return d, nil
	}
	if existing, ok := m.cached[t]; ok {
		return existing, nil
	}
	m.cached[t] = d
	return d, nil
}

// ActiveStorage 返回当前激活提供方对应的存储类型，未启用云存储时为 local
func (m *Manager) ActiveStorage(ctx context.Context) (constant.StorageType, error) {
	cfg, err := m.source.GetConfig(ctx)
	if err != nil {
		return "", fmt.Errorf("读取存储配置失败: %w", err)
	}
	return cfg.ActiveProvider.StorageType(), nil
}

// Invalidate 丢弃已缓存的云存储驱动，下次使用时按最新配置重建
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.cached) > 0 {
		m.logger.Info("存储配置已变更，清空云存储驱动缓存", zap.Int("count", len(m.cached)))
	}
	m.cached = make(map[constant.StorageType]Driver)
	m.generation++
}
