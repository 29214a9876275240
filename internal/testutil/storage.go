package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/anzhiyu-c/anheyu-attachment/internal/infra/storage"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/model"
)

// MemoryDriver 是一个把对象保存在内存里的云存储驱动，用于模拟阿里云 OSS / AWS S3
type MemoryDriver struct {
	typ     constant.StorageType
	mu      sync.Mutex
	objects map[string][]byte
	puts    int
}

func NewMemoryDriver(t constant.StorageType) *MemoryDriver {
	return &MemoryDriver{typ: t, objects: make(map[string][]byte)}
}

func (d *MemoryDriver) Type() constant.StorageType { return d.typ }

func (d *MemoryDriver) Put(ctx context.Context, in *storage.PutInput) (*storage.PutResult, error) {
	data, err := os.ReadFile(in.SourcePath)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.objects[in.Key] = data
	d.puts++
	return &storage.PutResult{
		ObjectKey: in.Key,
		URL:       fmt.Sprintf("https://%s.example.com/%s", d.typ, in.Key),
	}, nil
}

func (d *MemoryDriver) Delete(ctx context.Context, locator string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.objects, locator)
	return nil
}

// Objects 返回当前保存的对象数量
func (d *MemoryDriver) Objects() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.objects)
}

// Puts 返回累计写入次数
func (d *MemoryDriver) Puts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.puts
}

// StaticConfigSource 返回固定的存储配置
type StaticConfigSource struct {
	mu  sync.Mutex
	cfg model.StorageConfig
}

func NewStaticConfigSource(active constant.ProviderType) *StaticConfigSource {
	return &StaticConfigSource{cfg: model.StorageConfig{ActiveProvider: active}}
}

func (s *StaticConfigSource) GetConfig(ctx context.Context) (*model.StorageConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.cfg
	return &cfg, nil
}

func (s *StaticConfigSource) SetActive(active constant.ProviderType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.ActiveProvider = active
}
