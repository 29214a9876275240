/*
 * @Description: 附件文件夹数据操作的契约
 * @Author: 安知鱼
 * @Date: 2026-01-14 14:10:26
 * @LastEditTime: 2026-01-15 10:02:51
 * @LastEditors: 安知鱼
 */
package repository

import (
	"context"

	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/model"
)

// FolderRepository 定义了文件夹树的数据操作契约。
// 查询方法在记录不存在或已软删除时返回 (nil, nil)。
type FolderRepository interface {
	// Create 在同一事务内复核父文件夹存在性与同级重名，然后写入。
	// 父文件夹不存在返回 constant.ErrFolderNotFound，重名返回 constant.ErrFolderAlreadyExists。
	Create(ctx context.Context, params *model.CreateFolderParams) (*model.Folder, error)
	// Update 的复核规则与 Create 相同，文件夹本身不存在时返回 constant.ErrFolderNotFound
	Update(ctx context.Context, id uint, params *model.UpdateFolderParams) (*model.Folder, error)
	FindByID(ctx context.Context, id uint) (*model.Folder, error)
	FindByParentAndName(ctx context.Context, parentID uint, name string) (*model.Folder, error)
	ListPage(ctx context.Context, query *model.FolderQuery) ([]*model.Folder, int64, error)
	// ListAll 返回全部未删除的文件夹，按 sort_order、id 升序
	ListAll(ctx context.Context) ([]*model.Folder, error)
	CountChildren(ctx context.Context, id uint) (int64, error)
	CountAttachments(ctx context.Context, id uint) (int64, error)
	// SoftDelete 返回是否真的删除了一条未删除的记录
	SoftDelete(ctx context.Context, id uint, actorID uint) (bool, error)
}
