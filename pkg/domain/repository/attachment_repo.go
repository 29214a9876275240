/*
 * @Description: 附件数据操作的契约
 * @Author: 安知鱼
 * @Date: 2026-01-14 14:16:09
 * @LastEditTime: 2026-01-15 10:05:33
 * @LastEditors: 安知鱼
 */
package repository

import (
	"context"

	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/model"
)

// AttachmentRepository 定义了附件元数据的数据操作契约。
// 查询方法在记录不存在或已软删除时返回 (nil, nil)。
type AttachmentRepository interface {
	// Create 插入一条新附件；同一存储下内容哈希冲突时返回 constant.ErrAttachmentHashConflict
	Create(ctx context.Context, a *model.Attachment) (*model.Attachment, error)
	// Update 附件不存在时返回 constant.ErrAttachmentNotFound
	Update(ctx context.Context, id uint, params *model.UpdateAttachmentParams) (*model.Attachment, error)
	FindByID(ctx context.Context, id uint) (*model.Attachment, error)
	// FindByHash 只匹配未删除的记录，storage 为空时不限存储
	FindByHash(ctx context.Context, hash string, storage constant.StorageType) (*model.Attachment, error)
	ListPage(ctx context.Context, query *model.AttachmentQuery) ([]*model.Attachment, int64, error)
	SoftDelete(ctx context.Context, id uint, actorID uint) (bool, error)
	// SoftDeleteMany 去重后逐个软删除，返回调用前仍存活、本次被删除的 id（保持输入顺序）
	SoftDeleteMany(ctx context.Context, ids []uint, actorID uint) ([]uint, error)
}
