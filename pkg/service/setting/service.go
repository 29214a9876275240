/*
 * @Description: 系统配置服务，区分脱敏读取与特权读取
 * @Author: 安知鱼
 * @Date: 2025-06-20 14:27:36
 * @LastEditTime: 2026-01-17 11:05:52
 * @LastEditors: 安知鱼
 */
package setting

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/anzhiyu-c/anheyu-attachment/internal/configdef"
	"github.com/anzhiyu-c/anheyu-attachment/internal/pkg/event"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/repository"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/service/utility"
)

const (
	cacheKeyPrefix = "setting:"
	cacheTTL       = 5 * time.Minute
)

// SettingService 定义了配置服务的接口
type SettingService interface {
	// Get 与 GetByKeys 是面向普通调用方的读取，密钥字段会被移除
	Get(ctx context.Context, key string) (string, error)
	GetByKeys(ctx context.Context, keys []string) (map[string]string, error)
	// GetRaw 与 GetRawByKeys 返回原始值，只允许服务内部的特权路径使用
	GetRaw(ctx context.Context, key string) (string, error)
	GetRawByKeys(ctx context.Context, keys []string) (map[string]string, error)
	// Update 写入配置并记录操作人，写入后清理缓存并发布 setting:updated
	Update(ctx context.Context, values map[string]string, actorID uint) error
	// InitDefaults 把未落库的配置项按默认值写入
	InitDefaults(ctx context.Context) error
}

type settingService struct {
	repo     repository.SettingRepository
	cache    utility.CacheService
	eventBus *event.EventBus
	logger   *zap.Logger
}

// NewSettingService 是 settingService 的构造函数
func NewSettingService(repo repository.SettingRepository, cache utility.CacheService, bus *event.EventBus, logger *zap.Logger) SettingService {
	return &settingService{
		repo:     repo,
		cache:    cache,
		eventBus: bus,
		logger:   logger.Named("setting"),
	}
}

func (s *settingService) Get(ctx context.Context, key string) (string, error) {
	values, err := s.GetByKeys(ctx, []string{key})
	if err != nil {
		return "", err
	}
	return values[key], nil
}

func (s *settingService) GetByKeys(ctx context.Context, keys []string) (map[string]string, error) {
	raw, err := s.GetRawByKeys(ctx, keys)
	if err != nil {
		return nil, err
	}
	for key, value := range raw {
		def, _ := configdef.Lookup(key)
		raw[key] = def.Redact(value)
	}
	return raw, nil
}

func (s *settingService) GetRaw(ctx context.Context, key string) (string, error) {
	values, err := s.GetRawByKeys(ctx, []string{key})
	if err != nil {
		return "", err
	}
	return values[key], nil
}

func (s *settingService) GetRawByKeys(ctx context.Context, keys []string) (map[string]string, error) {
	if err := checkKeys(keys); err != nil {
		return nil, err
	}

	result := make(map[string]string, len(keys))
	var missing []string
	for _, key := range keys {
		if _, done := result[key]; done {
			continue
		}
		value, ok, err := s.cache.Get(ctx, cacheKeyPrefix+key)
		if err != nil {
			s.logger.Warn("read setting cache failed", zap.String("key", key), zap.Error(err))
			ok = false
		}
		if ok {
			result[key] = value
			continue
		}
		missing = append(missing, key)
	}
	if len(missing) == 0 {
		return result, nil
	}

	stored, err := s.repo.FindByKeys(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}
	found := make(map[string]string, len(stored))
	for _, st := range stored {
		found[st.ConfigKey] = st.Value
	}
	for _, key := range missing {
		value, ok := found[key]
		if !ok {
			def, _ := configdef.Lookup(key)
			value = def.Value
		}
		result[key] = value
		if err := s.cache.Set(ctx, cacheKeyPrefix+key, value, cacheTTL); err != nil {
			s.logger.Warn("write setting cache failed", zap.String("key", key), zap.Error(err))
		}
	}
	return result, nil
}

func (s *settingService) Update(ctx context.Context, values map[string]string, actorID uint) error {
	if len(values) == 0 {
		return nil
	}
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if err := checkKeys(keys); err != nil {
		return err
	}

	if err := s.repo.Upsert(ctx, values, actorID); err != nil {
		return fmt.Errorf("更新配置失败: %w", err)
	}

	cacheKeys := make([]string, len(keys))
	for i, key := range keys {
		cacheKeys[i] = cacheKeyPrefix + key
	}
	if err := s.cache.Delete(ctx, cacheKeys...); err != nil {
		s.logger.Error("invalidate setting cache failed", zap.Strings("keys", keys), zap.Error(err))
	}

	s.logger.Info("settings updated", zap.Strings("keys", keys), zap.Uint("actor_id", actorID))
	s.eventBus.Publish(event.SettingUpdated, event.SettingUpdatedPayload{Keys: keys, ActorID: actorID})
	return nil
}

func (s *settingService) InitDefaults(ctx context.Context) error {
	created := 0
	for _, def := range configdef.AllSettings {
		ok, err := s.repo.CreateIfNotExists(ctx, &model.Setting{
			ConfigKey: def.Key.String(),
			Value:     def.Value,
			Comment:   def.Comment,
		})
		if err != nil {
			return fmt.Errorf("初始化配置 %s 失败: %w", def.Key, err)
		}
		if ok {
			created++
		}
	}
	if created > 0 {
		s.logger.Info("default settings created", zap.Int("count", created))
	}
	return nil
}

// checkKeys 只允许读写已定义的配置项
func checkKeys(keys []string) error {
	var unknown []string
	for _, key := range keys {
		if _, ok := configdef.Lookup(key); !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		return constant.ErrInvalidParameter.WithMessage("未知的配置项: %s", strings.Join(unknown, ", "))
	}
	return nil
}
