/*
 * @Description: 附件仓储实现
 * @Author: 安知鱼
 * @Date: 2026-01-15 14:22:09
 * @LastEditTime: 2026-01-16 10:31:17
 * @LastEditors: 安知鱼
 */
package ent

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/anzhiyu-c/anheyu-attachment/internal/infra/persistence/database"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/repository"

	entsql "entgo.io/ent/dialect/sql"
)

var attachmentColumns = []string{
	"id", "folder_id", "kind", "name", "original_name", "filename", "ext", "mime_type", "size",
	"storage", "path", "url", "object_key", "hash", "width", "height", "duration", "status",
	"creator_id", "updater_id", "created_at", "updated_at",
}

type attachmentRepo struct {
	c conn
}

// NewAttachmentRepo 是 AttachmentRepository 的构造函数
func NewAttachmentRepo(drv *entsql.Driver) repository.AttachmentRepository {
	return &attachmentRepo{c: newConn(drv)}
}

func (r *attachmentRepo) live(columns ...string) *entsql.Selector {
	b := r.c.builder()
	return b.Select(columns...).
		From(b.Table(database.TableAttachments)).
		Where(entsql.IsNull("deleted_at"))
}

func (r *attachmentRepo) Create(ctx context.Context, a *model.Attachment) (*model.Attachment, error) {
	now := time.Now()
	ib := r.c.builder().Insert(database.TableAttachments).
		Columns("folder_id", "kind", "name", "original_name", "filename", "ext", "mime_type", "size",
			"storage", "path", "url", "object_key", "hash", "width", "height", "duration", "status",
			"creator_id", "updater_id", "created_at", "updated_at", "deleted_mark").
		Values(i64(a.FolderID), string(a.Kind), a.Name, a.OriginalName, a.Filename, a.Ext, a.MimeType, a.Size,
			string(a.Storage), a.Path, a.URL, a.ObjectKey, nullableString(a.Hash),
			nullableInt(a.Width), nullableInt(a.Height), nullableFloat(a.Duration), string(a.Status),
			i64(a.CreatorID), i64(a.UpdaterID), now, now, int64(0))
	id, err := r.c.insert(ctx, ib)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, constant.ErrAttachmentHashConflict
		}
		return nil, fmt.Errorf("创建附件记录失败: %w", err)
	}
	return r.FindByID(ctx, id)
}

func (r *attachmentRepo) Update(ctx context.Context, id uint, params *model.UpdateAttachmentParams) (*model.Attachment, error) {
	ub := r.c.builder().Update(database.TableAttachments).
		Set("updater_id", i64(params.ActorID)).
		Set("updated_at", time.Now())
	if params.Name != nil {
		ub.Set("name", *params.Name)
	}
	if params.FolderID != nil {
		ub.Set("folder_id", i64(*params.FolderID))
	}
	if params.Kind != nil {
		ub.Set("kind", string(*params.Kind))
	}
	if params.Status != nil {
		ub.Set("status", string(*params.Status))
	}
	query, args := ub.Where(entsql.And(entsql.EQ("id", i64(id)), entsql.IsNull("deleted_at"))).Query()
	if _, err := r.c.exec(ctx, query, args); err != nil {
		return nil, fmt.Errorf("更新附件失败: %w", err)
	}
	// MySQL 在值未变化时影响行数为 0，因此以回读结果判断是否存在
	updated, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, constant.ErrAttachmentNotFound
	}
	return updated, nil
}

func (r *attachmentRepo) FindByID(ctx context.Context, id uint) (*model.Attachment, error) {
	return r.one(ctx, r.live(attachmentColumns...).Where(entsql.EQ("id", i64(id))))
}

func (r *attachmentRepo) FindByHash(ctx context.Context, hash string, storage constant.StorageType) (*model.Attachment, error) {
	if hash == "" {
		return nil, nil
	}
	s := r.live(attachmentColumns...).Where(entsql.EQ("hash", hash))
	if storage != "" {
		s.Where(entsql.EQ("storage", string(storage)))
	}
	return r.one(ctx, s.OrderBy("id"))
}

func (r *attachmentRepo) ListPage(ctx context.Context, query *model.AttachmentQuery) ([]*model.Attachment, int64, error) {
	page := query.PageQuery.Normalize()

	total, err := r.c.count(ctx, r.applyFilters(r.live(entsql.Count("*")), query))
	if err != nil {
		return nil, 0, fmt.Errorf("统计附件数量失败: %w", err)
	}
	if total == 0 {
		return []*model.Attachment{}, 0, nil
	}

	s := r.applyFilters(r.live(attachmentColumns...), query).
		OrderBy(entsql.Desc("id")).
		Limit(page.PageSize).
		Offset(page.Offset())
	items, err := r.all(ctx, s)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *attachmentRepo) applyFilters(s *entsql.Selector, query *model.AttachmentQuery) *entsql.Selector {
	if query.FolderID != nil {
		s.Where(entsql.EQ("folder_id", i64(*query.FolderID)))
	}
	if query.Kind != "" {
		s.Where(entsql.EQ("kind", string(query.Kind)))
	}
	if query.Status != "" {
		s.Where(entsql.EQ("status", string(query.Status)))
	}
	if query.Storage != "" {
		s.Where(entsql.EQ("storage", string(query.Storage)))
	}
	if kw := strings.TrimSpace(query.Keyword); kw != "" {
		s.Where(entsql.Or(entsql.Contains("name", kw), entsql.Contains("original_name", kw)))
	}
	if mt := strings.TrimSpace(query.MimeType); mt != "" {
		s.Where(entsql.HasPrefix("mime_type", mt))
	}
	return s
}

func (r *attachmentRepo) SoftDelete(ctx context.Context, id uint, actorID uint) (bool, error) {
	n, err := r.softDelete(ctx, r.c, id, actorID, time.Now())
	if err != nil {
		return false, fmt.Errorf("删除附件失败: %w", err)
	}
	return n > 0, nil
}

func (r *attachmentRepo) SoftDeleteMany(ctx context.Context, ids []uint, actorID uint) ([]uint, error) {
	deleted := make([]uint, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	now := time.Now()

	err := r.c.withTx(ctx, func(tx conn) error {
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}

			n, err := r.softDelete(ctx, tx, id, actorID, now)
			if err != nil {
				return err
			}
			if n > 0 {
				deleted = append(deleted, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("批量删除附件失败: %w", err)
	}
	return deleted, nil
}

func (r *attachmentRepo) softDelete(ctx context.Context, c conn, id uint, actorID uint, now time.Time) (int64, error) {
	query, args := c.builder().Update(database.TableAttachments).
		Set("deleted_at", now).
		Set("deleted_mark", i64(id)).
		Set("updater_id", i64(actorID)).
		Where(entsql.And(entsql.EQ("id", i64(id)), entsql.IsNull("deleted_at"))).
		Query()
	return c.affected(ctx, query, args)
}

func (r *attachmentRepo) one(ctx context.Context, s *entsql.Selector) (*model.Attachment, error) {
	items, err := r.all(ctx, s.Limit(1))
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return items[0], nil
}

func (r *attachmentRepo) all(ctx context.Context, s *entsql.Selector) ([]*model.Attachment, error) {
	query, args := s.Query()
	items := make([]*model.Attachment, 0)
	err := r.c.query(ctx, query, args, func(rows *entsql.Rows) error {
		a, err := scanAttachment(rows)
		if err != nil {
			return err
		}
		items = append(items, a)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("查询附件失败: %w", err)
	}
	return items, nil
}

func scanAttachment(rows *entsql.Rows) (*model.Attachment, error) {
	var (
		a                        model.Attachment
		id, folderID             int64
		creatorID, updaterID     int64
		kind, storage, status    string
		hash                     sql.NullString
		width, height            sql.NullInt64
		duration                 sql.NullFloat64
		createdAt, updatedAt     nullTime
		name, ext, path, url     sql.NullString
		objectKey                sql.NullString
	)
	if err := rows.Scan(&id, &folderID, &kind, &name, &a.OriginalName, &a.Filename, &ext, &a.MimeType, &a.Size,
		&storage, &path, &url, &objectKey, &hash, &width, &height, &duration, &status,
		&creatorID, &updaterID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	a.ID = uint(id)
	a.FolderID = uint(folderID)
	a.Kind = constant.AttachmentKind(kind)
	a.Name = name.String
	a.Ext = ext.String
	a.Storage = constant.StorageType(storage)
	a.Path = path.String
	a.URL = url.String
	a.ObjectKey = objectKey.String
	a.Hash = hash.String
	a.Width = intPtr(width)
	a.Height = intPtr(height)
	a.Duration = floatPtr(duration)
	a.Status = constant.Status(status)
	a.CreatorID = uint(creatorID)
	a.UpdaterID = uint(updaterID)
	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time
	return &a, nil
}
