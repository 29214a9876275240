// Package testutil 提供测试共用的数据库与驱动工具
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/anzhiyu-c/anheyu-attachment/internal/infra/persistence/database"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/stretchr/testify/require"
)

// NewDriver 在临时目录中创建一个已迁移的 SQLite 数据库
func NewDriver(t *testing.T) *entsql.Driver {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", database.SQLiteDSN(path))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	drv := entsql.OpenDB(dialect.SQLite, db)
	require.NoError(t, database.Migrate(context.Background(), drv))
	return drv
}
