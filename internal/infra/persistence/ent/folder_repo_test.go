package ent

import (
	"context"
	"sync"
	"testing"

	"github.com/anzhiyu-c/anheyu-attachment/internal/testutil"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFolderParams(name string, parentID uint) *model.CreateFolderParams {
	return &model.CreateFolderParams{
		Name:     name,
		ParentID: parentID,
		Kind:     constant.FolderKindAll,
		Status:   constant.StatusEnabled,
		ActorID:  1,
	}
}

func TestFolderRepo_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewFolderRepo(testutil.NewDriver(t))

	media, err := repo.Create(ctx, newFolderParams("Media", 0))
	require.NoError(t, err)
	assert.NotZero(t, media.ID)
	assert.Equal(t, uint(0), media.ParentID)
	assert.Equal(t, uint(1), media.CreatorID)
	assert.False(t, media.CreatedAt.IsZero())

	photos, err := repo.Create(ctx, newFolderParams("Photos", media.ID))
	require.NoError(t, err)
	assert.Equal(t, media.ID, photos.ParentID)

	found, err := repo.FindByParentAndName(ctx, media.ID, "Photos")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, photos.ID, found.ID)

	missing, err := repo.FindByID(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	n, err := repo.CountChildren(ctx, media.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestFolderRepo_SiblingUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewFolderRepo(testutil.NewDriver(t))

	_, err := repo.Create(ctx, newFolderParams("Docs", 0))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newFolderParams("Docs", 0))
	assert.ErrorIs(t, err, constant.ErrFolderAlreadyExists)

	// 大小写敏感
	_, err = repo.Create(ctx, newFolderParams("docs", 0))
	assert.NoError(t, err)
}

func TestFolderRepo_SiblingNamesAreCaseSensitive(t *testing.T) {
	ctx := context.Background()
	repo := NewFolderRepo(testutil.NewDriver(t))

	upper, err := repo.Create(ctx, newFolderParams("Photos", 0))
	require.NoError(t, err)
	lower, err := repo.Create(ctx, newFolderParams("photos", 0))
	require.NoError(t, err)
	assert.NotEqual(t, upper.ID, lower.ID)

	found, err := repo.FindByParentAndName(ctx, 0, "photos")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, lower.ID, found.ID)
}

func TestFolderRepo_ConcurrentCreateOnlyOneWins(t *testing.T) {
	ctx := context.Background()
	repo := NewFolderRepo(testutil.NewDriver(t))

	const workers = 6
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Create(ctx, newFolderParams("Race", 0))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, constant.ErrFolderAlreadyExists)
	}
	assert.Equal(t, 1, succeeded)
}

func TestFolderRepo_CreateWithMissingParent(t *testing.T) {
	repo := NewFolderRepo(testutil.NewDriver(t))
	_, err := repo.Create(context.Background(), newFolderParams("Orphan", 42))
	assert.ErrorIs(t, err, constant.ErrFolderNotFound)
}

func TestFolderRepo_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewFolderRepo(testutil.NewDriver(t))

	a, err := repo.Create(ctx, newFolderParams("A", 0))
	require.NoError(t, err)
	b, err := repo.Create(ctx, newFolderParams("B", 0))
	require.NoError(t, err)

	name := "A"
	_, err = repo.Update(ctx, b.ID, &model.UpdateFolderParams{Name: &name, ActorID: 2})
	assert.ErrorIs(t, err, constant.ErrFolderAlreadyExists)

	parent := a.ID
	sort := 5
	remark := "moved"
	moved, err := repo.Update(ctx, b.ID, &model.UpdateFolderParams{ParentID: &parent, SortOrder: &sort, Remark: &remark, ActorID: 2})
	require.NoError(t, err)
	assert.Equal(t, a.ID, moved.ParentID)
	assert.Equal(t, 5, moved.SortOrder)
	assert.Equal(t, "moved", moved.Remark)
	assert.Equal(t, uint(2), moved.UpdaterID)

	missingParent := uint(777)
	_, err = repo.Update(ctx, b.ID, &model.UpdateFolderParams{ParentID: &missingParent})
	assert.ErrorIs(t, err, constant.ErrFolderNotFound)

	_, err = repo.Update(ctx, 999, &model.UpdateFolderParams{Name: &name})
	assert.ErrorIs(t, err, constant.ErrFolderNotFound)
}

func TestFolderRepo_UpdateRejectsMoveUnderDescendant(t *testing.T) {
	ctx := context.Background()
	repo := NewFolderRepo(testutil.NewDriver(t))

	a, err := repo.Create(ctx, newFolderParams("A", 0))
	require.NoError(t, err)
	b, err := repo.Create(ctx, newFolderParams("B", a.ID))
	require.NoError(t, err)
	c, err := repo.Create(ctx, newFolderParams("C", b.ID))
	require.NoError(t, err)

	target := c.ID
	_, err = repo.Update(ctx, a.ID, &model.UpdateFolderParams{ParentID: &target})
	assert.ErrorIs(t, err, constant.ErrInvalidParameter)

	got, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(0), got.ParentID)
}

func TestFolderRepo_CrossingMovesNeverFormCycle(t *testing.T) {
	ctx := context.Background()
	repo := NewFolderRepo(testutil.NewDriver(t))

	a, err := repo.Create(ctx, newFolderParams("A", 0))
	require.NoError(t, err)
	b, err := repo.Create(ctx, newFolderParams("B", 0))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	move := func(i int, id, parent uint) {
		defer wg.Done()
		_, errs[i] = repo.Update(ctx, id, &model.UpdateFolderParams{ParentID: &parent})
	}
	wg.Add(2)
	go move(0, a.ID, b.ID)
	go move(1, b.ID, a.ID)
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, constant.ErrInvalidParameter)
	}
	assert.Equal(t, 1, succeeded)

	gotA, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	gotB, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, gotA.ParentID == b.ID && gotB.ParentID == a.ID, "A and B must not be each other's parent")
}

func TestFolderRepo_SoftDeleteFreesName(t *testing.T) {
	ctx := context.Background()
	repo := NewFolderRepo(testutil.NewDriver(t))

	f, err := repo.Create(ctx, newFolderParams("Tmp", 0))
	require.NoError(t, err)

	ok, err := repo.SoftDelete(ctx, f.ID, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.SoftDelete(ctx, f.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	gone, err := repo.FindByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	again, err := repo.Create(ctx, newFolderParams("Tmp", 0))
	require.NoError(t, err)
	assert.NotEqual(t, f.ID, again.ID)
}

func TestFolderRepo_ListPageAndListAll(t *testing.T) {
	ctx := context.Background()
	repo := NewFolderRepo(testutil.NewDriver(t))

	root, err := repo.Create(ctx, newFolderParams("Root", 0))
	require.NoError(t, err)
	for _, name := range []string{"c-music", "a-music", "b-video"} {
		p := newFolderParams(name, root.ID)
		if name == "b-video" {
			p.Kind = constant.FolderKindVideo
		}
		_, err := repo.Create(ctx, p)
		require.NoError(t, err)
	}

	parentID := root.ID
	items, total, err := repo.ListPage(ctx, &model.FolderQuery{ParentID: &parentID, Name: "music"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	assert.Equal(t, "c-music", items[0].Name, "同 sort_order 时按 id 排序")

	items, total, err = repo.ListPage(ctx, &model.FolderQuery{Kind: constant.FolderKindVideo})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "b-video", items[0].Name)

	items, total, err = repo.ListPage(ctx, &model.FolderQuery{PageQuery: model.PageQuery{Page: 2, PageSize: 3}})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, items, 1)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
