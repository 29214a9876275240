/*
 * @Description: 数据表结构定义与自动迁移
 * @Author: 安知鱼
 * @Date: 2025-12-08 00:00:00
 * @LastEditTime: 2026-01-21 11:05:52
 * @LastEditors: 安知鱼
 *
 * 软删除与唯一索引的配合方式：deleted_mark 在记录存活时为 0，软删除时写入记录自身 id。
 * 这样存活记录之间会命中唯一索引，而已删除的记录永远不会互相冲突。
 */
package database

import (
	"context"
	"fmt"
	"log"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	TableFolders     = "attachment_folders"
	TableAttachments = "attachments"
	TableSettings    = "settings"

	textSize = 2147483647

	// mysqlBinaryCollation 让 MySQL 上的比较与唯一索引区分大小写
	mysqlBinaryCollation = "utf8mb4_bin"
)

func idColumn() *schema.Column {
	return &schema.Column{Name: "id", Type: field.TypeInt, Increment: true}
}

func auditColumns() []*schema.Column {
	return []*schema.Column{
		{Name: "creator_id", Type: field.TypeInt, Default: 0},
		{Name: "updater_id", Type: field.TypeInt, Default: 0},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
		{Name: "deleted_at", Type: field.TypeTime, Nullable: true},
		{Name: "deleted_mark", Type: field.TypeInt, Default: 0},
	}
}

func column(cols []*schema.Column, name string) *schema.Column {
	for _, c := range cols {
		if c.Name == name {
			return c
		}
	}
	panic(fmt.Sprintf("未定义的列: %s", name))
}

// FoldersTable 附件文件夹表
func FoldersTable() *schema.Table {
	cols := append([]*schema.Column{
		idColumn(),
		{Name: "name", Type: field.TypeString, Size: 100},
		{Name: "parent_id", Type: field.TypeInt, Default: 0},
		{Name: "kind", Type: field.TypeString, Size: 20, Default: "all"},
		{Name: "status", Type: field.TypeString, Size: 20, Default: "enabled"},
		{Name: "sort_order", Type: field.TypeInt, Default: 0},
		{Name: "remark", Type: field.TypeString, Size: textSize, Nullable: true},
	}, auditColumns()...)

	return &schema.Table{
		Name:       TableFolders,
		Columns:    cols,
		PrimaryKey: []*schema.Column{cols[0]},
		Indexes: []*schema.Index{
			{
				Name:    "attachmentfolder_parent_id_name_deleted_mark",
				Unique:  true,
				Columns: []*schema.Column{column(cols, "parent_id"), column(cols, "name"), column(cols, "deleted_mark")},
			},
		},
	}
}

// AttachmentsTable 附件表
func AttachmentsTable() *schema.Table {
	cols := append([]*schema.Column{
		idColumn(),
		{Name: "folder_id", Type: field.TypeInt, Default: 0},
		{Name: "kind", Type: field.TypeString, Size: 20},
		{Name: "name", Type: field.TypeString, Size: 255, Default: ""},
		{Name: "original_name", Type: field.TypeString, Size: 255},
		{Name: "filename", Type: field.TypeString, Size: 255},
		{Name: "ext", Type: field.TypeString, Size: 32, Default: ""},
		{Name: "mime_type", Type: field.TypeString, Size: 255},
		{Name: "size", Type: field.TypeInt64, Default: 0},
		{Name: "storage", Type: field.TypeString, Size: 20},
		{Name: "path", Type: field.TypeString, Size: 1024, Default: ""},
		{Name: "url", Type: field.TypeString, Size: 2048, Default: ""},
		{Name: "object_key", Type: field.TypeString, Size: 1024, Default: ""},
		{Name: "hash", Type: field.TypeString, Size: 64, Nullable: true},
		{Name: "width", Type: field.TypeInt, Nullable: true},
		{Name: "height", Type: field.TypeInt, Nullable: true},
		{Name: "duration", Type: field.TypeFloat64, Nullable: true},
		{Name: "status", Type: field.TypeString, Size: 20, Default: "enabled"},
	}, auditColumns()...)

	return &schema.Table{
		Name:       TableAttachments,
		Columns:    cols,
		PrimaryKey: []*schema.Column{cols[0]},
		Indexes: []*schema.Index{
			{
				Name:    "attachment_hash_storage_deleted_mark",
				Unique:  true,
				Columns: []*schema.Column{column(cols, "hash"), column(cols, "storage"), column(cols, "deleted_mark")},
			},
			{
				Name:    "attachment_folder_id_deleted_mark",
				Columns: []*schema.Column{column(cols, "folder_id"), column(cols, "deleted_mark")},
			},
		},
	}
}

// SettingsTable 系统配置表
func SettingsTable() *schema.Table {
	cols := []*schema.Column{
		idColumn(),
		{Name: "config_key", Type: field.TypeString, Size: 191, Unique: true},
		{Name: "value", Type: field.TypeString, Size: textSize},
		{Name: "comment", Type: field.TypeString, Size: 255, Default: ""},
		{Name: "updater_id", Type: field.TypeInt, Default: 0},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
		{Name: "deleted_at", Type: field.TypeTime, Nullable: true},
	}
	return &schema.Table{
		Name:       TableSettings,
		Columns:    cols,
		PrimaryKey: []*schema.Column{cols[0]},
	}
}

// Tables 返回全部需要迁移的表
func Tables() []*schema.Table {
	return []*schema.Table{FoldersTable(), AttachmentsTable(), SettingsTable()}
}

// TablesFor 返回针对指定方言调整后的表结构。
// MySQL 默认的 _ci 排序规则不区分大小写，文件夹名需要精确匹配，因此改用二进制排序。
// SQLite 与 PostgreSQL 的默认比较本身区分大小写。
func TablesFor(dialectName string) []*schema.Table {
	tables := Tables()
	if dialectName != dialect.MySQL {
		return tables
	}
	for _, t := range tables {
		if t.Name == TableFolders {
			column(t.Columns, "name").Collation = mysqlBinaryCollation
		}
	}
	return tables
}

// Migrate 在启动时自动迁移数据库结构
func Migrate(ctx context.Context, drv dialect.Driver) error {
	log.Println("⚡ 开始数据库表结构迁移...")
	m, err := schema.NewMigrate(drv,
		schema.WithDropIndex(true),  // 允许删除旧索引（包括唯一约束）
		schema.WithDropColumn(true), // 允许删除旧列
	)
	if err != nil {
		return fmt.Errorf("创建迁移器失败: %w", err)
	}
	if err := m.Create(ctx, TablesFor(drv.Dialect())...); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	log.Println("✅ 数据库表结构迁移成功")
	return nil
}
