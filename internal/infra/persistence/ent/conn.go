/*
 * @Description: 基于 ent SQL 构建器的仓储公共工具
 * @Author: 安知鱼
 * @Date: 2026-01-15 13:02:11
 * @LastEditTime: 2026-01-16 09:48:35
 * @LastEditors: 安知鱼
 */
package ent

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/sqlgraph"
)

// conn 包装了一个可执行 SQL 的对象。
// drv 为 nil 表示已经处于事务中，withTx 会直接复用当前事务。
type conn struct {
	drv     *entsql.Driver
	eq      dialect.ExecQuerier
	dialect string
}

func newConn(drv *entsql.Driver) conn {
	return conn{drv: drv, eq: drv, dialect: drv.Dialect()}
}

func txConn(tx dialect.Tx, dialectName string) conn {
	return conn{eq: tx, dialect: dialectName}
}

func (c conn) builder() *entsql.DialectBuilder {
	return entsql.Dialect(c.dialect)
}

// withTx 在事务中执行 fn，fn 返回错误时回滚
func (c conn) withTx(ctx context.Context, fn func(tx conn) error) error {
	if c.drv == nil {
		return fn(c)
	}
	tx, err := c.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer func() {
		if v := recover(); v != nil {
			tx.Rollback()
			panic(v)
		}
	}()
	if err := fn(txConn(tx, c.dialect)); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("事务执行失败: %w, 回滚事务也失败: %v", err, rerr)
		}
		return err
	}
	return tx.Commit()
}

func (c conn) exec(ctx context.Context, query string, args []any) (sql.Result, error) {
	var res sql.Result
	if err := c.eq.Exec(ctx, query, args, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// query 执行查询并对每一行调用 scan
func (c conn) query(ctx context.Context, query string, args []any, scan func(rows *entsql.Rows) error) error {
	rows := &entsql.Rows{}
	if err := c.eq.Query(ctx, query, args, rows); err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// insert 执行插入并返回自增 id。PostgreSQL 不支持 LastInsertId，改用 RETURNING。
func (c conn) insert(ctx context.Context, ib *entsql.InsertBuilder) (uint, error) {
	if c.dialect == dialect.Postgres {
		query, args := ib.Returning("id").Query()
		var id int64
		err := c.query(ctx, query, args, func(rows *entsql.Rows) error {
			return rows.Scan(&id)
		})
		if err != nil {
			return 0, err
		}
		return uint(id), nil
	}
	query, args := ib.Query()
	res, err := c.exec(ctx, query, args)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// count 执行一条 SELECT COUNT(*) 查询
func (c conn) count(ctx context.Context, s *entsql.Selector) (int64, error) {
	query, args := s.Query()
	var n int64
	err := c.query(ctx, query, args, func(rows *entsql.Rows) error {
		return rows.Scan(&n)
	})
	return n, err
}

// affected 执行写操作并返回受影响的行数
func (c conn) affected(ctx context.Context, query string, args []any) (int64, error) {
	res, err := c.exec(ctx, query, args)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func isUniqueViolation(err error) bool {
	return err != nil && sqlgraph.IsUniqueConstraintError(err)
}

// nullTime 兼容不同驱动对时间列的返回形式（time.Time、文本或 Unix 时间戳）
type nullTime struct {
	Time  time.Time
	Valid bool
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

func (t *nullTime) Scan(v any) error {
	switch x := v.(type) {
	case nil:
		t.Time, t.Valid = time.Time{}, false
		return nil
	case time.Time:
		t.Time, t.Valid = x, true
		return nil
	case int64:
		t.Time, t.Valid = time.Unix(x, 0), true
		return nil
	case []byte:
		return t.parse(string(x))
	case string:
		return t.parse(x)
	}
	return fmt.Errorf("不支持的时间类型: %T", v)
}

func (t *nullTime) parse(s string) error {
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time, t.Valid = parsed, true
			return nil
		}
	}
	return fmt.Errorf("无法解析时间: %q", s)
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullableFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// i64 统一把 id 转为 int64 作为查询参数，部分驱动不接受 uint
func i64(v uint) int64 {
	return int64(v)
}
