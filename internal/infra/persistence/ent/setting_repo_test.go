package ent

import (
	"context"
	"errors"
	"testing"

	"github.com/anzhiyu-c/anheyu-attachment/internal/testutil"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingRepo_UpsertAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingRepo(testutil.NewDriver(t))

	created, err := repo.CreateIfNotExists(ctx, &model.Setting{ConfigKey: "A", Value: "1", Comment: "默认"})
	require.NoError(t, err)
	assert.True(t, created)
	created, err = repo.CreateIfNotExists(ctx, &model.Setting{ConfigKey: "A", Value: "2"})
	require.NoError(t, err)
	assert.False(t, created)

	require.NoError(t, repo.Upsert(ctx, map[string]string{"A": "10", "B": "20"}, 5))

	a, err := repo.FindByKey(ctx, "A")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "10", a.Value)
	assert.Equal(t, "默认", a.Comment)
	assert.Equal(t, uint(5), a.UpdaterID)

	items, err := repo.FindByKeys(ctx, []string{"B", "missing"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "20", items[0].Value)

	missing, err := repo.FindByKey(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestTransactionManager_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	drv := testutil.NewDriver(t)
	tm := NewTransactionManager(drv)
	folders := NewFolderRepo(drv)

	boom := errors.New("boom")
	err := tm.Do(ctx, func(repos repository.Repositories) error {
		_, err := repos.Folder.Create(ctx, newFolderParams("Rolled", 0))
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	f, err := folders.FindByParentAndName(ctx, 0, "Rolled")
	require.NoError(t, err)
	assert.Nil(t, f)

	err = tm.Do(ctx, func(repos repository.Repositories) error {
		_, err := repos.Folder.Create(ctx, newFolderParams("Kept", 0))
		return err
	})
	require.NoError(t, err)
	f, err = folders.FindByParentAndName(ctx, 0, "Kept")
	require.NoError(t, err)
	assert.NotNil(t, f)
}
