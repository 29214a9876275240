/*
 * @Description: 启动引导：写入默认配置，准备 JWT 密钥和 ID 种子
 * @Author: 安知鱼
 * @Date: 2025-06-20 15:12:40
 * @LastEditTime: 2026-01-18 20:21:35
 * @LastEditors: 安知鱼
 */
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/anzhiyu-c/anheyu-attachment/internal/pkg/utils"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/config"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/repository"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/idgen"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/service/setting"
)

// 系统内部配置项，不在 configdef 中注册，因此不会通过配置接口暴露
const (
	keyJWTSecret = "SYSTEM_JWT_SECRET"
	keyIDSeed    = "SYSTEM_ID_SEED"
)

// Secrets 是启动时确定下来的密钥材料
type Secrets struct {
	JWTSecret string
	IDSeed    string
}

type Bootstrapper struct {
	settingSvc  setting.SettingService
	settingRepo repository.SettingRepository
	cfg         *config.Config
	logger      *zap.Logger
}

func NewBootstrapper(settingSvc setting.SettingService, settingRepo repository.SettingRepository, cfg *config.Config, logger *zap.Logger) *Bootstrapper {
	return &Bootstrapper{
		settingSvc:  settingSvc,
		settingRepo: settingRepo,
		cfg:         cfg,
		logger:      logger,
	}
}

// InitializeDatabase 确保所有已定义的配置项都存在于数据库中
func (b *Bootstrapper) InitializeDatabase(ctx context.Context) error {
	b.logger.Info("--- 开始同步配置 (Setting 表)... ---")
	if err := b.settingSvc.InitDefaults(ctx); err != nil {
		return fmt.Errorf("同步默认配置失败: %w", err)
	}
	b.logger.Info("--- 配置同步完成 ---")
	return nil
}

// LoadSecrets 读取 JWT 密钥和 ID 种子。
// 配置文件或环境变量中提供的值优先，否则首次启动时随机生成并保存到数据库，之后一直复用。
func (b *Bootstrapper) LoadSecrets(ctx context.Context) (*Secrets, error) {
	jwtSecret, err := b.getOrCreate(ctx, keyJWTSecret, b.cfg.GetString(config.KeyJWTSecret),
		"系统自动生成的 JWT 签名密钥，修改后所有登录状态失效",
		func() (string, error) { return utils.GenerateRandomString(32) })
	if err != nil {
		return nil, err
	}
	idSeed, err := b.getOrCreate(ctx, keyIDSeed, b.cfg.GetString(config.KeyIDSeed),
		"系统自动生成的ID种子，用于生成唯一的公共ID，请勿修改",
		idgen.GenerateRandomSeed)
	if err != nil {
		return nil, err
	}
	return &Secrets{JWTSecret: jwtSecret, IDSeed: idSeed}, nil
}

func (b *Bootstrapper) getOrCreate(ctx context.Context, key, configured, comment string, generate func() (string, error)) (string, error) {
	if configured != "" {
		return configured, nil
	}

	existing, err := b.settingRepo.FindByKey(ctx, key)
	if err != nil {
		return "", fmt.Errorf("读取 %s 失败: %w", key, err)
	}
	if existing != nil && existing.Value != "" {
		return existing.Value, nil
	}

	value, err := generate()
	if err != nil {
		return "", fmt.Errorf("生成 %s 失败: %w", key, err)
	}
	created, err := b.settingRepo.CreateIfNotExists(ctx, &model.Setting{ConfigKey: key, Value: value, Comment: comment})
	if err != nil {
		return "", fmt.Errorf("保存 %s 失败: %w", key, err)
	}
	if created {
		b.logger.Info("✅ 已生成并保存新的密钥材料", zap.String("key", key))
		return value, nil
	}

	// 并发启动的另一个实例抢先写入了，以数据库中的为准
	existing, err = b.settingRepo.FindByKey(ctx, key)
	if err != nil {
		return "", fmt.Errorf("读取 %s 失败: %w", key, err)
	}
	if existing == nil || existing.Value == "" {
		return "", fmt.Errorf("%s 写入后仍无法读取", key)
	}
	return existing.Value, nil
}
