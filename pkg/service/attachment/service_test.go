package attachment

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/anzhiyu-c/anheyu-attachment/internal/infra/persistence/ent"
	"github.com/anzhiyu-c/anheyu-attachment/internal/infra/storage"
	"github.com/anzhiyu-c/anheyu-attachment/internal/pkg/event"
	"github.com/anzhiyu-c/anheyu-attachment/internal/testutil"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/service/upload"
)

func newTestService(t *testing.T, opts Options) IAttachmentService {
	t.Helper()
	drv := testutil.NewDriver(t)
	folders := ent.NewFolderRepo(drv)
	attachments := ent.NewAttachmentRepo(drv)

	local, err := storage.NewLocalDriver(t.TempDir(), "/static/attachments/")
	require.NoError(t, err)
	manager := storage.NewManager(local, testutil.NewStaticConfigSource(constant.ProviderDisabled), zap.NewNop())
	manager.Register(testutil.NewMemoryDriver(constant.StorageAliyunOSS))

	bus := event.NewEventBus(zap.NewNop())
	t.Cleanup(bus.Shutdown)
	uploader := upload.NewUploadService(attachments, manager, bus, zap.NewNop(), upload.Options{
		TempDir:     filepath.Join(t.TempDir(), "temp"),
		Concurrency: 2,
	})
	return NewAttachmentService(folders, attachments, ent.NewTransactionManager(drv), uploader, bus, zap.NewNop(), opts)
}

func mustFolder(t *testing.T, svc IAttachmentService, name string, parentID uint) *model.Folder {
	t.Helper()
	f, err := svc.CreateFolder(context.Background(), &model.CreateFolderParams{Name: name, ParentID: parentID, ActorID: 1})
	require.NoError(t, err)
	return f
}

func uploadOne(t *testing.T, svc IAttachmentService, folderID uint, name, mimeType string, content []byte) *model.UploadItemResult {
	t.Helper()
	results, err := svc.Upload(context.Background(), &UploadRequest{FolderID: folderID, ActorID: 1},
		[]*upload.FileInput{upload.FromReader(name, mimeType, bytes.NewReader(content))})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Nil(t, results[0].Error)
	return results[0]
}

func TestMediaPhotosScenario(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Options{MaxFolderDepth: 3})

	media := mustFolder(t, svc, "Media", 0)
	photos := mustFolder(t, svc, "Photos", media.ID)
	assert.Equal(t, media.ID, photos.ParentID)
	assert.Equal(t, constant.FolderKindAll, photos.Kind)
	assert.Equal(t, constant.StatusEnabled, photos.Status)

	up := uploadOne(t, svc, photos.ID, "cat.png", "image/png", testutil.PNG(t, 4, 4, 9))
	assert.False(t, up.Reused)

	folderID := photos.ID
	list, err := svc.ListAttachments(ctx, &model.AttachmentQuery{FolderID: &folderID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
	require.Len(t, list.List, 1)
	assert.Equal(t, constant.AttachmentKindImage, list.List[0].Kind)

	_, err = svc.DeleteFolder(ctx, media.ID, 1)
	assert.True(t, errors.Is(err, constant.ErrFolderDeleteForbidden))

	_, err = svc.DeleteFolder(ctx, photos.ID, 1)
	assert.True(t, errors.Is(err, constant.ErrFolderDeleteForbidden))

	id, err := svc.DeleteAttachment(ctx, up.Attachment.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, up.Attachment.ID, id)

	id, err = svc.DeleteFolder(ctx, photos.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, photos.ID, id)

	_, err = svc.DeleteFolder(ctx, media.ID, 1)
	require.NoError(t, err)

	_, err = svc.GetFolder(ctx, media.ID)
	assert.True(t, errors.Is(err, constant.ErrFolderNotFound))
}

func TestCreateFolder_Rules(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Options{MaxFolderDepth: 3})

	root := mustFolder(t, svc, "Docs", 0)
	_, err := svc.CreateFolder(ctx, &model.CreateFolderParams{Name: " Docs "})
	assert.True(t, errors.Is(err, constant.ErrFolderAlreadyExists))

	// 大小写不同视为不同名称，不同父级下允许同名
	mustFolder(t, svc, "docs", 0)
	l2 := mustFolder(t, svc, "Docs", root.ID)
	l3 := mustFolder(t, svc, "L3", l2.ID)

	_, err = svc.CreateFolder(ctx, &model.CreateFolderParams{Name: "L4", ParentID: l3.ID})
	assert.True(t, errors.Is(err, constant.ErrInvalidParameter))

	_, err = svc.CreateFolder(ctx, &model.CreateFolderParams{Name: "orphan", ParentID: 9999})
	assert.True(t, errors.Is(err, constant.ErrFolderNotFound))

	_, err = svc.CreateFolder(ctx, &model.CreateFolderParams{Name: "   "})
	assert.True(t, errors.Is(err, constant.ErrInvalidParameter))

	_, err = svc.CreateFolder(ctx, &model.CreateFolderParams{Name: strings.Repeat("名", constant.FolderNameMaxLength+1)})
	assert.True(t, errors.Is(err, constant.ErrInvalidParameter))

	_, err = svc.CreateFolder(ctx, &model.CreateFolderParams{Name: strings.Repeat("名", constant.FolderNameMaxLength)})
	assert.NoError(t, err)

	_, err = svc.CreateFolder(ctx, &model.CreateFolderParams{Name: "bad kind", Kind: "document"})
	assert.True(t, errors.Is(err, constant.ErrInvalidParameter))
}

func TestCreateFolder_UnlimitedDepth(t *testing.T) {
	svc := newTestService(t, Options{})
	parent := uint(0)
	for i := 0; i < 6; i++ {
		parent = mustFolder(t, svc, "level", parent).ID
	}
}

func TestUpdateFolder_ParentRules(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Options{})

	a := mustFolder(t, svc, "A", 0)
	b := mustFolder(t, svc, "B", a.ID)
	c := mustFolder(t, svc, "C", b.ID)
	other := mustFolder(t, svc, "Other", 0)

	self := a.ID
	_, err := svc.UpdateFolder(ctx, a.ID, &model.UpdateFolderParams{ParentID: &self})
	assert.True(t, errors.Is(err, constant.ErrInvalidParameter))

	descendant := c.ID
	_, err = svc.UpdateFolder(ctx, a.ID, &model.UpdateFolderParams{ParentID: &descendant})
	assert.True(t, errors.Is(err, constant.ErrInvalidParameter))

	missing := uint(9999)
	_, err = svc.UpdateFolder(ctx, b.ID, &model.UpdateFolderParams{ParentID: &missing})
	assert.True(t, errors.Is(err, constant.ErrFolderNotFound))

	_, err = svc.UpdateFolder(ctx, missing, &model.UpdateFolderParams{})
	assert.True(t, errors.Is(err, constant.ErrFolderNotFound))

	target := other.ID
	moved, err := svc.UpdateFolder(ctx, c.ID, &model.UpdateFolderParams{ParentID: &target})
	require.NoError(t, err)
	assert.Equal(t, other.ID, moved.ParentID)

	clash := "Other"
	_, err = svc.UpdateFolder(ctx, a.ID, &model.UpdateFolderParams{Name: &clash})
	assert.True(t, errors.Is(err, constant.ErrFolderAlreadyExists))

	toRoot := uint(0)
	moved, err = svc.UpdateFolder(ctx, b.ID, &model.UpdateFolderParams{ParentID: &toRoot})
	require.NoError(t, err)
	assert.Equal(t, uint(0), moved.ParentID)
}

func TestFolderTree(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Options{})

	a := mustFolder(t, svc, "A", 0)
	sortFirst := -1
	z, err := svc.CreateFolder(ctx, &model.CreateFolderParams{Name: "Z", SortOrder: sortFirst})
	require.NoError(t, err)
	a1 := mustFolder(t, svc, "A1", a.ID)
	a2 := mustFolder(t, svc, "A2", a.ID)
	a11 := mustFolder(t, svc, "A11", a1.ID)

	roots, err := svc.FolderTree(ctx, 0)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, z.ID, roots[0].ID)
	assert.Empty(t, roots[0].Children)
	require.Len(t, roots[1].Children, 2)
	assert.Equal(t, a1.ID, roots[1].Children[0].ID)
	assert.Equal(t, a2.ID, roots[1].Children[1].ID)
	require.Len(t, roots[1].Children[0].Children, 1)
	assert.Equal(t, a11.ID, roots[1].Children[0].Children[0].ID)

	sub, err := svc.FolderTree(ctx, a1.ID)
	require.NoError(t, err)
	require.Len(t, sub, 1)
	assert.Equal(t, a1.ID, sub[0].ID)
	require.Len(t, sub[0].Children, 1)

	_, err = svc.FolderTree(ctx, 9999)
	assert.True(t, errors.Is(err, constant.ErrFolderNotFound))
}

func TestListFolders(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Options{})
	root := mustFolder(t, svc, "Root", 0)
	for _, n := range []string{"x1", "x2", "x3"} {
		mustFolder(t, svc, n, root.ID)
	}

	parentID := root.ID
	page, err := svc.ListFolders(ctx, &model.FolderQuery{ParentID: &parentID, PageQuery: model.PageQuery{Page: 2, PageSize: 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.List, 1)
	assert.Equal(t, 2, page.Page)

	all, err := svc.ListFolders(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), all.Total)
	assert.Equal(t, constant.DefaultPageSize, all.PageSize)
}

func TestAttachmentOperations(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Options{})
	folder := mustFolder(t, svc, "Inbox", 0)

	a := uploadOne(t, svc, 0, "a.zip", "application/zip", []byte("zip-a")).Attachment
	b := uploadOne(t, svc, 0, "b.txt", "text/plain", []byte("txt-b")).Attachment
	assert.Equal(t, constant.AttachmentKindOther, a.Kind)

	missing := uint(9999)
	_, err := svc.UpdateAttachment(ctx, a.ID, &model.UpdateAttachmentParams{FolderID: &missing})
	assert.True(t, errors.Is(err, constant.ErrFolderNotFound))

	folderID := folder.ID
	name := "  归档  "
	updated, err := svc.UpdateAttachment(ctx, a.ID, &model.UpdateAttachmentParams{FolderID: &folderID, Name: &name, ActorID: 2})
	require.NoError(t, err)
	assert.Equal(t, folder.ID, updated.FolderID)
	assert.Equal(t, "归档", updated.Name)
	assert.Equal(t, uint(2), updated.UpdaterID)

	unfiled := uint(0)
	updated, err = svc.UpdateAttachment(ctx, a.ID, &model.UpdateAttachmentParams{FolderID: &unfiled})
	require.NoError(t, err)
	assert.Equal(t, uint(0), updated.FolderID)

	_, err = svc.UpdateAttachment(ctx, missing, &model.UpdateAttachmentParams{Name: &name})
	assert.True(t, errors.Is(err, constant.ErrAttachmentNotFound))

	ids, err := svc.BatchDeleteAttachments(ctx, []uint{a.ID, a.ID, 999}, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID}, ids)

	ids, err = svc.BatchDeleteAttachments(ctx, []uint{a.ID}, 1)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = svc.BatchDeleteAttachments(ctx, nil, 1)
	assert.True(t, errors.Is(err, constant.ErrInvalidParameter))

	_, err = svc.GetAttachment(ctx, a.ID)
	assert.True(t, errors.Is(err, constant.ErrAttachmentNotFound))
	got, err := svc.GetAttachment(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "b.txt", got.OriginalName)

	_, err = svc.DeleteAttachment(ctx, a.ID, 1)
	assert.True(t, errors.Is(err, constant.ErrAttachmentNotFound))
}

func TestUpload_EntryRules(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, Options{})

	files := []*upload.FileInput{upload.FromReader("a.txt", "text/plain", bytes.NewReader([]byte("a")))}
	_, err := svc.Upload(ctx, &UploadRequest{FolderID: 9999}, files)
	assert.True(t, errors.Is(err, constant.ErrFolderNotFound))

	_, err = svc.Upload(ctx, &UploadRequest{}, nil)
	assert.True(t, errors.Is(err, constant.ErrInvalidParameter))

	list, err := svc.ListAttachments(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), list.Total)

	// 显示名称只在单文件上传时生效
	results, err := svc.Upload(ctx, &UploadRequest{Name: "封面"}, []*upload.FileInput{
		upload.FromReader("x.txt", "text/plain", bytes.NewReader([]byte("x"))),
		upload.FromReader("y.txt", "text/plain", bytes.NewReader([]byte("y"))),
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "x.txt", results[0].Attachment.Name)
	assert.Equal(t, "y.txt", results[1].Attachment.Name)

	results, err = svc.Upload(ctx, &UploadRequest{Name: "封面", Storage: constant.StorageAliyunOSS}, []*upload.FileInput{
		upload.FromReader("x.txt", "text/plain", bytes.NewReader([]byte("x"))),
	})
	require.NoError(t, err)
	assert.Equal(t, "封面", results[0].Attachment.Name)
	assert.False(t, results[0].Reused)
}
