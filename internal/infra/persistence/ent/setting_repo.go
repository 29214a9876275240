/*
 * @Description: 系统配置仓储实现
 * @Author: 安知鱼
 * @Date: 2025-06-20 13:10:02
 * @LastEditTime: 2026-01-16 10:44:38
 * @LastEditors: 安知鱼
 */
package ent

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/anzhiyu-c/anheyu-attachment/internal/infra/persistence/database"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/repository"

	entsql "entgo.io/ent/dialect/sql"
)

var settingColumns = []string{"id", "config_key", "value", "comment", "updater_id", "created_at", "updated_at"}

// settingRepo 是 SettingRepository 接口的实现
type settingRepo struct {
	c conn
}

// NewSettingRepo 是 settingRepo 的构造函数
func NewSettingRepo(drv *entsql.Driver) repository.SettingRepository {
	return &settingRepo{c: newConn(drv)}
}

func (r *settingRepo) live(c conn) *entsql.Selector {
	b := c.builder()
	return b.Select(settingColumns...).
		From(b.Table(database.TableSettings)).
		Where(entsql.IsNull("deleted_at"))
}

// FindByKey 实现按键查找配置的接口，未找到时不返回错误
func (r *settingRepo) FindByKey(ctx context.Context, key string) (*model.Setting, error) {
	return r.findByKey(ctx, r.c, key)
}

func (r *settingRepo) findByKey(ctx context.Context, c conn, key string) (*model.Setting, error) {
	items, err := r.all(ctx, c, r.live(c).Where(entsql.EQ("config_key", key)).Limit(1))
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return items[0], nil
}

func (r *settingRepo) FindByKeys(ctx context.Context, keys []string) ([]*model.Setting, error) {
	if len(keys) == 0 {
		return []*model.Setting{}, nil
	}
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	return r.all(ctx, r.c, r.live(r.c).Where(entsql.In("config_key", args...)).OrderBy("id"))
}

// FindAll 实现获取所有配置的接口
func (r *settingRepo) FindAll(ctx context.Context) ([]*model.Setting, error) {
	return r.all(ctx, r.c, r.live(r.c).OrderBy("id"))
}

// Upsert 实现了批量写入配置项的接口。
// 为了保证原子性，整个更新过程在一个事务中执行。
func (r *settingRepo) Upsert(ctx context.Context, values map[string]string, actorID uint) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return r.c.withTx(ctx, func(tx conn) error {
		now := time.Now()
		for _, key := range keys {
			existing, err := r.findByKey(ctx, tx, key)
			if err != nil {
				return err
			}
			if existing == nil {
				ib := tx.builder().Insert(database.TableSettings).
					Columns("config_key", "value", "comment", "updater_id", "created_at", "updated_at").
					Values(key, values[key], "", i64(actorID), now, now)
				if _, err := tx.insert(ctx, ib); err != nil {
					return fmt.Errorf("创建配置 %s 失败: %w", key, err)
				}
				continue
			}
			query, args := tx.builder().Update(database.TableSettings).
				Set("value", values[key]).
				Set("updater_id", i64(actorID)).
				Set("updated_at", now).
				Where(entsql.EQ("id", i64(existing.ID))).
				Query()
			if _, err := tx.exec(ctx, query, args); err != nil {
				return fmt.Errorf("更新配置 %s 失败: %w", key, err)
			}
		}
		return nil
	})
}

func (r *settingRepo) CreateIfNotExists(ctx context.Context, s *model.Setting) (bool, error) {
	existing, err := r.FindByKey(ctx, s.ConfigKey)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	now := time.Now()
	ib := r.c.builder().Insert(database.TableSettings).
		Columns("config_key", "value", "comment", "updater_id", "created_at", "updated_at").
		Values(s.ConfigKey, s.Value, s.Comment, int64(0), now, now)
	id, err := r.c.insert(ctx, ib)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	s.ID = id
	s.CreatedAt = now
	s.UpdatedAt = now
	return true, nil
}

func (r *settingRepo) all(ctx context.Context, c conn, s *entsql.Selector) ([]*model.Setting, error) {
	query, args := s.Query()
	items := make([]*model.Setting, 0)
	err := c.query(ctx, query, args, func(rows *entsql.Rows) error {
		var (
			st                   model.Setting
			id, updaterID        int64
			createdAt, updatedAt nullTime
		)
		if err := rows.Scan(&id, &st.ConfigKey, &st.Value, &st.Comment, &updaterID, &createdAt, &updatedAt); err != nil {
			return err
		}
		st.ID = uint(id)
		st.UpdaterID = uint(updaterID)
		st.CreatedAt = createdAt.Time
		st.UpdatedAt = updatedAt.Time
		items = append(items, &st)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("查询配置失败: %w", err)
	}
	return items, nil
}
