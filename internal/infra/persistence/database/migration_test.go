package database

import (
	"testing"

	"entgo.io/ent/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func folderNameCollation(t *testing.T, dialectName string) string {
	t.Helper()
	for _, tbl := range TablesFor(dialectName) {
		if tbl.Name == TableFolders {
			return column(tbl.Columns, "name").Collation
		}
	}
	require.FailNow(t, "folders table missing")
	return ""
}

func TestTablesFor_FolderNameCollation(t *testing.T) {
	assert.Equal(t, "utf8mb4_bin", folderNameCollation(t, dialect.MySQL))
	assert.Empty(t, folderNameCollation(t, dialect.SQLite))
	assert.Empty(t, folderNameCollation(t, dialect.Postgres))
}

func TestTablesFor_DoesNotMutateSharedDefinitions(t *testing.T) {
	_ = TablesFor(dialect.MySQL)
	for _, tbl := range Tables() {
		for _, c := range tbl.Columns {
			assert.Empty(t, c.Collation, "%s.%s", tbl.Name, c.Name)
		}
	}
}
