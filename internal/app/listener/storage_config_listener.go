/*
 * @Description: 监听配置变更，存储相关配置被修改时丢弃已缓存的云存储驱动。
 * @Author: 安知鱼
 * @Date: 2026-01-18 19:40:12
 * @LastEditTime: 2026-01-18 19:40:12
 * @LastEditors: 安知鱼
 */
package listener

import (
	"go.uber.org/zap"

	"github.com/anzhiyu-c/anheyu-attachment/internal/pkg/event"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
)

// DriverInvalidator 由 storage.Manager 实现
type DriverInvalidator interface {
	Invalidate()
}

var storageKeys = map[string]struct{}{
	constant.KeyStorageActiveProvider.String(): {},
	constant.KeyStorageAliyunOSS.String():      {},
	constant.KeyStorageAWSS3.String():          {},
}

// StorageConfigListener 订阅 SettingUpdated 事件
type StorageConfigListener struct {
	drivers DriverInvalidator
	logger  *zap.Logger
}

func NewStorageConfigListener(eventBus *event.EventBus, drivers DriverInvalidator, logger *zap.Logger) *StorageConfigListener {
	l := &StorageConfigListener{drivers: drivers, logger: logger}
	eventBus.Subscribe(event.SettingUpdated, l.handleSettingUpdated)
	return l
}

func (l *StorageConfigListener) handleSettingUpdated(payload interface{}) {
	p, ok := payload.(event.SettingUpdatedPayload)
	if !ok {
		l.logger.Error("[StorageConfigListener] 收到的 SettingUpdated 事件负载类型不正确")
		return
	}
	for _, key := range p.Keys {
		if _, hit := storageKeys[key]; hit {
			l.logger.Info("[StorageConfigListener] 存储配置已变更",
				zap.Strings("keys", p.Keys), zap.Uint("actor_id", p.ActorID))
			l.drivers.Invalidate()
			return
		}
	}
}
