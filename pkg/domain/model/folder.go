/*
 * @Description: 附件文件夹模型
 * @Author: 安知鱼
 * @Date: 2026-01-14 11:35:18
 * @LastEditTime: 2026-01-14 11:35:18
 * @LastEditors: 安知鱼
 */
package model

import (
	"time"

	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
)

// Folder 是附件文件夹，ParentID 为 0 表示根目录
type Folder struct {
	ID        uint                `json:"id"`
	Name      string              `json:"name"`
	ParentID  uint                `json:"parent_id"`
	Kind      constant.FolderKind `json:"kind"`
	Status    constant.Status     `json:"status"`
	SortOrder int                 `json:"sort_order"`
	Remark    string              `json:"remark"`
	CreatorID uint                `json:"creator_id"`
	UpdaterID uint                `json:"updater_id"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// FolderNode 是树形结构中的一个节点
type FolderNode struct {
	Folder
	Children []*FolderNode `json:"children,omitempty"`
}

// CreateFolderParams 创建文件夹的参数
type CreateFolderParams struct {
	Name      string              `json:"name"`
	ParentID  uint                `json:"parent_id"`
	Kind      constant.FolderKind `json:"kind"`
	Status    constant.Status     `json:"status"`
	SortOrder int                 `json:"sort_order"`
	Remark    string              `json:"remark"`
	ActorID   uint                `json:"-"`
}

// UpdateFolderParams 更新文件夹的参数，nil 字段保持不变
type UpdateFolderParams struct {
	Name      *string              `json:"name"`
	ParentID  *uint                `json:"parent_id"`
	Kind      *constant.FolderKind `json:"kind"`
	Status    *constant.Status     `json:"status"`
	SortOrder *int                 `json:"sort_order"`
	Remark    *string              `json:"remark"`
	ActorID   uint                 `json:"-"`
}

// FolderQuery 文件夹列表的过滤条件
type FolderQuery struct {
	PageQuery
	Name     string              `form:"name"`
	ParentID *uint               `form:"parent_id"`
	Kind     constant.FolderKind `form:"kind"`
	Status   constant.Status     `form:"status"`
}
