package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "upload-*")
	require.NoError(t, err)
	_, err = f.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

func TestLocalDriver_PutAndDelete(t *testing.T) {
	root := t.TempDir()
	d, err := NewLocalDriver(root, "/static/attachments")
	require.NoError(t, err)

	src := writeTemp(t, "hello")
	res, err := d.Put(context.Background(), &PutInput{Key: "2026/01/a b.txt", SourcePath: src, Size: 5})
	require.NoError(t, err)
	assert.Equal(t, "2026/01/a b.txt", res.Path)
	assert.Equal(t, "/static/attachments/2026/01/a%20b.txt", res.URL)
	assert.Empty(t, res.ObjectKey)

	data, err := os.ReadFile(filepath.Join(root, "2026", "01", "a b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, d.Delete(context.Background(), res.Path))
	assert.NoFileExists(t, filepath.Join(root, "2026", "01", "a b.txt"))
	// 重复删除不报错
	require.NoError(t, d.Delete(context.Background(), res.Path))
}

func TestLocalDriver_KeyStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	d, err := NewLocalDriver(root, "/")
	require.NoError(t, err)

	src := writeTemp(t, "x")
	res, err := d.Put(context.Background(), &PutInput{Key: "../../escape.txt", SourcePath: src})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "escape.txt"))
	assert.NotContains(t, res.URL, "..")

	_, err = d.resolve("")
	assert.Error(t, err)
}

func TestObjectURLs(t *testing.T) {
	oss := &AliOSSDriver{settings: model.AliOSSSettings{Bucket: "bkt", Region: "oss-cn-hangzhou", UseHTTPS: true}}
	oss.endpoint = AliOSSEndpoint(oss.settings)
	assert.Equal(t, "https://oss-cn-hangzhou.aliyuncs.com", oss.endpoint)
	assert.Equal(t, "https://bkt.oss-cn-hangzhou.aliyuncs.com/2026/01/x.png", oss.objectURL("2026/01/x.png"))

	oss.settings.Domain = "cdn.example.com"
	assert.Equal(t, "https://cdn.example.com/k.png", oss.objectURL("k.png"))

	s3d := &S3Driver{settings: model.S3Settings{Bucket: "b", Region: "eu-west-1"}}
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com/k", s3d.objectURL("k"))

	s3d.settings.Endpoint = "minio.local:9000"
	s3d.settings.ForcePathStyle = true
	assert.Equal(t, "http://minio.local:9000/b/k", s3d.objectURL("k"))
}

type stubSource struct {
	cfg *model.StorageConfig
}

func (s *stubSource) GetConfig(ctx context.Context) (*model.StorageConfig, error) {
	return s.cfg, nil
}

type namedDriver struct {
	t constant.StorageType
}

func (d *namedDriver) Type() constant.StorageType { return d.t }
func (d *namedDriver) Put(ctx context.Context, in *PutInput) (*PutResult, error) {
	return &PutResult{ObjectKey: in.Key}, nil
}
func (d *namedDriver) Delete(ctx context.Context, locator string) error { return nil }

func TestManager_CachesAndInvalidates(t *testing.T) {
	local, err := NewLocalDriver(t.TempDir(), "/")
	require.NoError(t, err)
	src := &stubSource{cfg: &model.StorageConfig{ActiveProvider: constant.ProviderAliyunOSS}}
	m := NewManager(local, src, zap.NewNop())

	var built int32
	m.RegisterFactory(constant.StorageAliyunOSS, func(ctx context.Context, cfg *model.StorageConfig, logger *zap.Logger) (Driver, error) {
		atomic.AddInt32(&built, 1)
		return &namedDriver{t: constant.StorageAliyunOSS}, nil
	})

	ctx := context.Background()
	active, err := m.ActiveStorage(ctx)
	require.NoError(t, err)
	assert.Equal(t, constant.StorageAliyunOSS, active)

	d1, err := m.Driver(ctx, constant.StorageAliyunOSS)
	require.NoError(t, err)
	d2, err := m.Driver(ctx, constant.StorageAliyunOSS)
	require.NoError(t, err)
	assert.Same(t, d1, d2)
	assert.Equal(t, int32(1), atomic.LoadInt32(&built))

	m.Invalidate()
	_, err = m.Driver(ctx, constant.StorageAliyunOSS)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&built))

	ld, err := m.Driver(ctx, constant.StorageLocal)
	require.NoError(t, err)
	assert.Equal(t, constant.StorageLocal, ld.Type())
}

func TestManager_Errors(t *testing.T) {
	local, err := NewLocalDriver(t.TempDir(), "/")
	require.NoError(t, err)
	m := NewManager(local, &stubSource{cfg: &model.StorageConfig{}}, zap.NewNop())

	_, err = m.Driver(context.Background(), "ftp")
	assert.ErrorIs(t, err, constant.ErrInvalidParameter)

	m.RegisterFactory(constant.StorageAWSS3, func(ctx context.Context, cfg *model.StorageConfig, logger *zap.Logger) (Driver, error) {
		return nil, errors.New("missing bucket")
	})
	_, err = m.Driver(context.Background(), constant.StorageAWSS3)
	assert.ErrorIs(t, err, constant.ErrInvalidParameter)

	fixed := &namedDriver{t: constant.StorageAWSS3}
	m.Register(fixed)
	d, err := m.Driver(context.Background(), constant.StorageAWSS3)
	require.NoError(t, err)
	assert.Same(t, fixed, d)

	active, err := m.ActiveStorage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, constant.StorageLocal, active)
}

// gatedSource 在 gate 打开前阻塞第一次 GetConfig，模拟读取配置与配置更新交错
type gatedSource struct {
	mu      sync.Mutex
	bucket  string
	entered chan struct{}
	gate    chan struct{}
	once    sync.Once
}

func (s *gatedSource) GetConfig(ctx context.Context) (*model.StorageConfig, error) {
	s.mu.Lock()
	cfg := &model.StorageConfig{ActiveProvider: constant.ProviderAliyunOSS}
	cfg.AliyunOSS.Bucket = s.bucket
	s.mu.Unlock()
	s.once.Do(func() {
		close(s.entered)
		<-s.gate
	})
	return cfg, nil
}

func (s *gatedSource) setBucket(b string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bucket = b
}

type bucketDriver struct {
	namedDriver
	bucket string
}

func TestManager_InvalidateDuringBuildIsNotCached(t *testing.T) {
	local, err := NewLocalDriver(t.TempDir(), "/")
	require.NoError(t, err)
	src := &gatedSource{bucket: "old", entered: make(chan struct{}), gate: make(chan struct{})}
	m := NewManager(local, src, zap.NewNop())
	m.RegisterFactory(constant.StorageAliyunOSS, func(ctx context.Context, cfg *model.StorageConfig, logger *zap.Logger) (Driver, error) {
		return &bucketDriver{namedDriver: namedDriver{t: constant.StorageAliyunOSS}, bucket: cfg.AliyunOSS.Bucket}, nil
	})

	ctx := context.Background()
	done := make(chan Driver, 1)
	go func() {
		d, err := m.Driver(ctx, constant.StorageAliyunOSS)
		assert.NoError(t, err)
		done <- d
	}()

	<-src.entered
	src.setBucket("new")
	m.Invalidate()
	close(src.gate)

	inflight := <-done
	require.NotNil(t, inflight)
	assert.Equal(t, "old", inflight.(*bucketDriver).bucket)

	d, err := m.Driver(ctx, constant.StorageAliyunOSS)
	require.NoError(t, err)
	assert.Equal(t, "new", d.(*bucketDriver).bucket)
}
