/*
 * @Description: 存储提供方配置服务，负责校验、合并密钥、导入导出
 * @Author: 安知鱼
 * @Date: 2026-01-15 15:02:18
 * @LastEditTime: 2026-01-21 10:32:40
 * @LastEditors: 安知鱼
 */
package storage_config

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/service/setting"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/service/storage_config/strategy"
)

var storageKeys = []string{
	constant.KeyStorageActiveProvider.String(),
	constant.KeyStorageAliyunOSS.String(),
	constant.KeyStorageAWSS3.String(),
}

// Service 定义了存储配置服务的接口。
// GetConfig 与 ExportConfig 会返回密钥，只允许管理员调用。
type Service interface {
	GetConfig(ctx context.Context) (*model.StorageConfig, error)
	UpsertConfig(ctx context.Context, input *model.StorageConfigInput, actorID uint) (*model.StorageConfig, error)
	ExportConfig(ctx context.Context) (*model.StorageConfigSnapshot, error)
	ImportConfig(ctx context.Context, payload *model.StorageConfigImport, actorID uint) (*model.ImportResult, error)
	// SetDriverInvalidator 设置写入成功后需要同步失效的驱动缓存
	SetDriverInvalidator(inv DriverInvalidator)
}

// DriverInvalidator 由 storage.Manager 实现
type DriverInvalidator interface {
	Invalidate()
}

type service struct {
	settings   setting.SettingService
	strategies *strategy.Manager
	logger     *zap.Logger
	now        func() time.Time

	mu      sync.RWMutex
	drivers DriverInvalidator
}

// NewService 创建存储配置服务
func NewService(settings setting.SettingService, strategies *strategy.Manager, logger *zap.Logger) Service {
	return &service{
		settings:   settings,
		strategies: strategies,
		logger:     logger.Named("storage_config"),
		now:        time.Now,
	}
}

func (s *service) GetConfig(ctx context.Context) (*model.StorageConfig, error) {
	values, err := s.settings.GetRawByKeys(ctx, storageKeys)
	if err != nil {
		return nil, err
	}

	cfg := &model.StorageConfig{}
	active, ok := constant.ParseProviderType(values[constant.KeyStorageActiveProvider.String()])
	if !ok {
		s.logger.Warn("stored active provider is invalid, treating as disabled",
			zap.String("value", values[constant.KeyStorageActiveProvider.String()]))
		active = constant.ProviderDisabled
	}
	cfg.ActiveProvider = active

	if err := decodeSettings(values[constant.KeyStorageAliyunOSS.String()], &cfg.AliyunOSS); err != nil {
		return nil, fmt.Errorf("解析阿里云OSS配置失败: %w", err)
	}
	if err := decodeSettings(values[constant.KeyStorageAWSS3.String()], &cfg.AWSS3); err != nil {
		return nil, fmt.Errorf("解析AWS S3配置失败: %w", err)
	}
	return cfg, nil
}

// UpsertConfig 把输入合并到已存储的配置上，只校验将被激活的提供方，校验通过后一次性写入。
func (s *service) UpsertConfig(ctx context.Context, input *model.StorageConfigInput, actorID uint) (*model.StorageConfig, error) {
	if input == nil {
		return nil, constant.ErrInvalidParameter.WithMessage("存储配置不能为空")
	}
	current, err := s.GetConfig(ctx)
	if err != nil {
		return nil, err
	}

	next := &model.StorageConfig{
		ActiveProvider: current.ActiveProvider,
		AliyunOSS:      input.AliyunOSS.ApplyTo(current.AliyunOSS),
		AWSS3:          input.AWSS3.ApplyTo(current.AWSS3),
	}
	if raw := strings.TrimSpace(input.ActiveProvider); raw != "" {
		provider, ok := constant.ParseProviderType(raw)
		if !ok {
			return nil, constant.ErrInvalidParameter.WithMessage("未知的存储提供方: %s", raw)
		}
		next.ActiveProvider = provider
	}

	if err := s.strategies.Validate(next.Selection()); err != nil {
		return nil, err
	}

	ossJSON, err := json.Marshal(next.AliyunOSS)
	if err != nil {
		return nil, fmt.Errorf("序列化阿里云OSS配置失败: %w", err)
	}
	s3JSON, err := json.Marshal(next.AWSS3)
	if err != nil {
		return nil, fmt.Errorf("序列化AWS S3配置失败: %w", err)
	}
	values := map[string]string{
		constant.KeyStorageActiveProvider.String(): string(next.ActiveProvider),
		constant.KeyStorageAliyunOSS.String():      string(ossJSON),
		constant.KeyStorageAWSS3.String():          string(s3JSON),
	}
	if err := s.settings.Update(ctx, values, actorID); err != nil {
		return nil, err
	}
	// 事件总线是异步的，这里先同步丢弃旧驱动，保证返回后的上传使用新配置
	s.invalidateDrivers()

	s.logger.Info("storage config saved",
		zap.String("active_provider", string(next.ActiveProvider)),
		zap.Uint("actor_id", actorID))
	return next, nil
}

func (s *service) SetDriverInvalidator(inv DriverInvalidator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drivers = inv
}

func (s *service) invalidateDrivers() {
	s.mu.RLock()
	inv := s.drivers
	s.mu.RUnlock()
	if inv != nil {
		inv.Invalidate()
	}
}

func (s *service) ExportConfig(ctx context.Context) (*model.StorageConfigSnapshot, error) {
	cfg, err := s.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &model.StorageConfigSnapshot{
		Format:         model.StorageConfigFormat,
		Version:        model.StorageConfigVersion,
		ExportedAt:     s.now().UTC(),
		ActiveProvider: cfg.ActiveProvider,
		AliyunOSS:      cfg.AliyunOSS,
		AWSS3:          cfg.AWSS3,
	}, nil
}

// ImportConfig 只接受本系统导出的、版本不高于当前版本的快照，其余规则与 UpsertConfig 一致。
func (s *service) ImportConfig(ctx context.Context, payload *model.StorageConfigImport, actorID uint) (*model.ImportResult, error) {
	if payload == nil {
		return nil, constant.ErrInvalidParameter.WithMessage("导入内容不能为空")
	}
	if payload.Format != model.StorageConfigFormat {
		return nil, constant.ErrInvalidParameter.WithMessage("不支持的配置格式: %q", payload.Format)
	}
	if payload.Version < 1 || payload.Version > model.StorageConfigVersion {
		return nil, constant.ErrInvalidParameter.WithMessage("不支持的配置版本: %d", payload.Version)
	}

	cfg, err := s.UpsertConfig(ctx, &payload.StorageConfigInput, actorID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("storage config imported", zap.Int("version", payload.Version), zap.Uint("actor_id", actorID))
	return &model.ImportResult{ActiveProvider: cfg.ActiveProvider}, nil
}

func decodeSettings(raw string, dst interface{}) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), dst)
}
