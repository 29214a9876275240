/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-07-13 23:40:12
 * @LastEditTime: 2026-01-16 10:50:03
 * @LastEditors: 安知鱼
 */
package ent

import (
	"context"

	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/repository"

	entsql "entgo.io/ent/dialect/sql"
)

// transactionManager 是基于 ent SQL 驱动的事务管理器实现。
type transactionManager struct {
	c conn
}

// NewTransactionManager 是 transactionManager 的构造函数。
func NewTransactionManager(drv *entsql.Driver) repository.TransactionManager {
	return &transactionManager{c: newConn(drv)}
}

// Do 实现了 TransactionManager 接口。
// 它会开启一个事务，并将 Repositories 中的所有仓储绑定到这个事务上。
func (tm *transactionManager) Do(ctx context.Context, fn func(repos repository.Repositories) error) error {
	return tm.c.withTx(ctx, func(tx conn) error {
		return fn(repository.Repositories{
			Folder:     &folderRepo{c: tx},
			Attachment: &attachmentRepo{c: tx},
			Setting:    &settingRepo{c: tx},
		})
	})
}
