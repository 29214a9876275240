/*
 * @Description: 配置数据操作的契约
 * @Author: 安知鱼
 * @Date: 2025-06-20 13:07:49
 * @LastEditTime: 2026-01-15 10:08:40
 * @LastEditors: 安知鱼
 */
package repository

import (
	"context"

	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/model"
)

// SettingRepository 定义了配置数据操作的契约
type SettingRepository interface {
	// FindByKey 未找到时返回 (nil, nil)
	FindByKey(ctx context.Context, key string) (*model.Setting, error)
	FindByKeys(ctx context.Context, keys []string) ([]*model.Setting, error)
	FindAll(ctx context.Context) ([]*model.Setting, error)
	// Upsert 在一个事务中写入全部键值，不存在的键会被创建，并记录操作人
	Upsert(ctx context.Context, values map[string]string, actorID uint) error
	// CreateIfNotExists 只在键不存在时写入，返回是否新建
	CreateIfNotExists(ctx context.Context, setting *model.Setting) (bool, error)
}
