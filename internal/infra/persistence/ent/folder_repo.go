/*
 * @Description: 附件文件夹仓储实现
 * @Author: 安知鱼
 * @Date: 2026-01-15 13:40:27
 * @LastEditTime: 2026-01-21 14:20:37
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

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

var folderColumns = []string{
	"id", "name", "parent_id", "kind", "status", "sort_order", "remark",
	"creator_id", "updater_id", "created_at", "updated_at",
}

type folderRepo struct {
	c conn
}

// NewFolderRepo 是 FolderRepository 的构造函数
func NewFolderRepo(drv *entsql.Driver) repository.FolderRepository {
	return &folderRepo{c: newConn(drv)}
}

// live 返回只包含未删除记录的查询
func (r *folderRepo) live(c conn, columns ...string) *entsql.Selector {
	b := c.builder()
	return b.Select(columns...).
		From(b.Table(database.TableFolders)).
		Where(entsql.IsNull("deleted_at"))
}

func (r *folderRepo) Create(ctx context.Context, params *model.CreateFolderParams) (*model.Folder, error) {
	var id uint
	err := r.c.withTx(ctx, func(tx conn) error {
		if err := r.checkParent(ctx, tx, params.ParentID); err != nil {
			return err
		}
		if err := r.checkSibling(ctx, tx, params.ParentID, params.Name, 0); err != nil {
			return err
		}

		now := time.Now()
		ib := tx.builder().Insert(database.TableFolders).
			Columns("name", "parent_id", "kind", "status", "sort_order", "remark",
				"creator_id", "updater_id", "created_at", "updated_at", "deleted_mark").
			Values(params.Name, i64(params.ParentID), string(params.Kind), string(params.Status), int64(params.SortOrder), params.Remark,
				i64(params.ActorID), i64(params.ActorID), now, now, int64(0))
		newID, err := tx.insert(ctx, ib)
		if err != nil {
			return err
		}
		id = newID
		return nil
	})
	if err != nil {
		return nil, r.translateWriteError(ctx, err, params.ParentID, params.Name)
	}
	return r.FindByID(ctx, id)
}

func (r *folderRepo) Update(ctx context.Context, id uint, params *model.UpdateFolderParams) (*model.Folder, error) {
	var parentID uint
	var name string
	err := r.c.withTx(ctx, func(tx conn) error {
		current, err := r.findForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return constant.ErrFolderNotFound
		}

		parentID, name = current.ParentID, current.Name
		if params.ParentID != nil {
			parentID = *params.ParentID
		}
		if params.Name != nil {
			name = *params.Name
		}
		if parentID != current.ParentID {
			if err := r.checkParent(ctx, tx, parentID); err != nil {
				return err
			}
			if err := r.checkNotDescendant(ctx, tx, id, parentID); err != nil {
				return err
			}
		}
		if parentID != current.ParentID || name != current.Name {
			if err := r.checkSibling(ctx, tx, parentID, name, id); err != nil {
				return err
			}
		}

		ub := tx.builder().Update(database.TableFolders).
			Set("name", name).
			Set("parent_id", i64(parentID)).
			Set("updater_id", i64(params.ActorID)).
			Set("updated_at", time.Now())
		if params.Kind != nil {
			ub.Set("kind", string(*params.Kind))
		}
		if params.Status != nil {
			ub.Set("status", string(*params.Status))
		}
		if params.SortOrder != nil {
			ub.Set("sort_order", int64(*params.SortOrder))
		}
		if params.Remark != nil {
			ub.Set("remark", *params.Remark)
		}
		query, args := ub.Where(entsql.And(entsql.EQ("id", i64(id)), entsql.IsNull("deleted_at"))).Query()
		_, err = tx.exec(ctx, query, args)
		return err
	})
	if err != nil {
		return nil, r.translateWriteError(ctx, err, parentID, name)
	}
	return r.FindByID(ctx, id)
}

// translateWriteError 把提交时的唯一索引冲突转换为重名错误
func (r *folderRepo) translateWriteError(ctx context.Context, err error, parentID uint, name string) error {
	if !isUniqueViolation(err) {
		return err
	}
	if existing, lookupErr := r.FindByParentAndName(ctx, parentID, name); lookupErr == nil && existing != nil {
		return constant.ErrFolderAlreadyExists.WithMessage("同级目录下已存在名为 %q 的文件夹 (id=%d)", name, existing.ID)
	}
	return constant.ErrFolderAlreadyExists
}

func (r *folderRepo) checkParent(ctx context.Context, c conn, parentID uint) error {
	if parentID == 0 {
		return nil
	}
	parent, err := r.findByID(ctx, c, parentID)
	if err != nil {
		return err
	}
	if parent == nil {
		return constant.ErrFolderNotFound.WithMessage("父文件夹 %d 不存在", parentID)
	}
	return nil
}

// checkNotDescendant 在事务内沿 parentID 的祖先链向上查找，链上出现 id 说明移动会形成环。
// 链上的行会被加锁，两个相互交叉的移动不会同时通过。
func (r *folderRepo) checkNotDescendant(ctx context.Context, c conn, id, parentID uint) error {
	seen := make(map[uint]struct{})
	for cur := parentID; cur != 0; {
		if cur == id {
			return constant.ErrInvalidParameter.WithMessage("不能将文件夹移动到它的子文件夹下")
		}
		if _, ok := seen[cur]; ok {
			return nil
		}
		seen[cur] = struct{}{}
		f, err := r.findForUpdate(ctx, c, cur)
		if err != nil {
			return err
		}
		if f == nil {
			return nil
		}
		cur = f.ParentID
	}
	return nil
}

func (r *folderRepo) checkSibling(ctx context.Context, c conn, parentID uint, name string, excludeID uint) error {
	existing, err := r.findByParentAndName(ctx, c, parentID, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != excludeID {
		return constant.ErrFolderAlreadyExists.WithMessage("同级目录下已存在名为 %q 的文件夹", name)
	}
	return nil
}

func (r *folderRepo) FindByID(ctx context.Context, id uint) (*model.Folder, error) {
	return r.findByID(ctx, r.c, id)
}

func (r *folderRepo) findByID(ctx context.Context, c conn, id uint) (*model.Folder, error) {
	return r.one(ctx, c, r.live(c, folderColumns...).Where(entsql.EQ("id", i64(id))))
}

// findForUpdate 读取并锁定一行；SQLite 不支持 FOR UPDATE，依赖 _txlock=immediate 串行化写事务
func (r *folderRepo) findForUpdate(ctx context.Context, c conn, id uint) (*model.Folder, error) {
	s := r.live(c, folderColumns...).Where(entsql.EQ("id", i64(id)))
	if c.dialect != dialect.SQLite {
		s.ForUpdate()
	}
	return r.one(ctx, c, s)
}

func (r *folderRepo) FindByParentAndName(ctx context.Context, parentID uint, name string) (*model.Folder, error) {
	return r.findByParentAndName(ctx, r.c, parentID, name)
}

func (r *folderRepo) findByParentAndName(ctx context.Context, c conn, parentID uint, name string) (*model.Folder, error) {
	s := r.live(c, folderColumns...).
		Where(entsql.EQ("parent_id", i64(parentID))).
		Where(entsql.EQ("name", name))
	return r.one(ctx, c, s)
}

func (r *folderRepo) ListPage(ctx context.Context, query *model.FolderQuery) ([]*model.Folder, int64, error) {
	page := query.PageQuery.Normalize()

	total, err := r.c.count(ctx, r.applyFilters(r.live(r.c, entsql.Count("*")), query))
	if err != nil {
		return nil, 0, fmt.Errorf("统计文件夹数量失败: %w", err)
	}
	if total == 0 {
		return []*model.Folder{}, 0, nil
	}

	s := r.applyFilters(r.live(r.c, folderColumns...), query).
		OrderBy("sort_order", "id").
		Limit(page.PageSize).
		Offset(page.Offset())
	items, err := r.all(ctx, r.c, s)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *folderRepo) applyFilters(s *entsql.Selector, query *model.FolderQuery) *entsql.Selector {
	if name := strings.TrimSpace(query.Name); name != "" {
		s.Where(entsql.Contains("name", name))
	}
	if query.ParentID != nil {
		s.Where(entsql.EQ("parent_id", i64(*query.ParentID)))
	}
	if query.Kind != "" {
		s.Where(entsql.EQ("kind", string(query.Kind)))
	}
	if query.Status != "" {
		s.Where(entsql.EQ("status", string(query.Status)))
	}
	return s
}

func (r *folderRepo) ListAll(ctx context.Context) ([]*model.Folder, error) {
	return r.all(ctx, r.c, r.live(r.c, folderColumns...).OrderBy("sort_order", "id"))
}

func (r *folderRepo) CountChildren(ctx context.Context, id uint) (int64, error) {
	return r.c.count(ctx, r.live(r.c, entsql.Count("*")).Where(entsql.EQ("parent_id", i64(id))))
}

func (r *folderRepo) CountAttachments(ctx context.Context, id uint) (int64, error) {
	b := r.c.builder()
	s := b.Select(entsql.Count("*")).
		From(b.Table(database.TableAttachments)).
		Where(entsql.IsNull("deleted_at")).
		Where(entsql.EQ("folder_id", i64(id)))
	return r.c.count(ctx, s)
}

func (r *folderRepo) SoftDelete(ctx context.Context, id uint, actorID uint) (bool, error) {
	query, args := r.c.builder().Update(database.TableFolders).
		Set("deleted_at", time.Now()).
		Set("deleted_mark", i64(id)).
		Set("updater_id", i64(actorID)).
		Where(entsql.And(entsql.EQ("id", i64(id)), entsql.IsNull("deleted_at"))).
		Query()
	n, err := r.c.affected(ctx, query, args)
	if err != nil {
		return false, fmt.Errorf("删除文件夹失败: %w", err)
	}
	return n > 0, nil
}

func (r *folderRepo) one(ctx context.Context, c conn, s *entsql.Selector) (*model.Folder, error) {
	items, err := r.all(ctx, c, s.Limit(1))
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return items[0], nil
}

func (r *folderRepo) all(ctx context.Context, c conn, s *entsql.Selector) ([]*model.Folder, error) {
	query, args := s.Query()
	items := make([]*model.Folder, 0)
	err := c.query(ctx, query, args, func(rows *entsql.Rows) error {
		f, err := scanFolder(rows)
		if err != nil {
			return err
		}
		items = append(items, f)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("查询文件夹失败: %w", err)
	}
	return items, nil
}

func scanFolder(rows *entsql.Rows) (*model.Folder, error) {
	var (
		f                    model.Folder
		id, parentID         int64
		creatorID, updaterID int64
		kind, status         string
		remark               sql.NullString
		createdAt, updatedAt nullTime
	)
	if err := rows.Scan(&id, &f.Name, &parentID, &kind, &status, &f.SortOrder, &remark,
		&creatorID, &updaterID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	f.ID = uint(id)
	f.ParentID = uint(parentID)
	f.Kind = constant.FolderKind(kind)
	f.Status = constant.Status(status)
	f.Remark = remark.String
	f.CreatorID = uint(creatorID)
	f.UpdaterID = uint(updaterID)
	f.CreatedAt = createdAt.Time
	f.UpdatedAt = updatedAt.Time
	return &f, nil
}
