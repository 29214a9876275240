/*
 * @Description: 附件上传流水线：落盘、计算摘要、去重、写入存储、入库
 * @Author: 安知鱼
 * @Date: 2025-07-02 18:21:07
 * @LastEditTime: 2026-01-18 11:26:40
 * @LastEditors: 安知鱼
 */
package upload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anzhiyu-c/anheyu-attachment/internal/infra/storage"
	"github.com/anzhiyu-c/anheyu-attachment/internal/pkg/event"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/repository"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/service/utility"
)

const (
	tempFilePattern = "upload-*"
	tempFilePrefix  = "upload-"
	sniffLen        = 512
	octetStream     = "application/octet-stream"
)

// DriverResolver 按存储类型提供驱动，由 storage.Manager 实现
type DriverResolver interface {
	Driver(ctx context.Context, t constant.StorageType) (storage.Driver, error)
	ActiveStorage(ctx context.Context) (constant.StorageType, error)
}

// Options 流水线参数
type Options struct {
	TempDir     string
	MaxSize     int64 // 单文件大小上限，0 表示不限制
	Concurrency int   // 批量上传时同时处理的文件数
}

// FileInput 是一个待上传的文件，Open 在真正处理时才被调用
type FileInput struct {
	OriginalName string
	MimeType     string
	Open         func() (io.ReadCloser, error)
}

// FromReader 用一个已打开的 Reader 构造 FileInput
func FromReader(name, mimeType string, r io.Reader) *FileInput {
	return &FileInput{
		OriginalName: name,
		MimeType:     mimeType,
		Open:         func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
	}
}

// Request 是一次上传共享的参数，目标文件夹应由调用方事先校验
type Request struct {
	FolderID uint
	Kind     constant.AttachmentKind // 为空时按 MIME 推断
	Name     string                  // 为空时使用原始文件名
	Storage  constant.StorageType    // 为空时使用当前激活的存储
	ActorID  uint
}

// IUploadService 定义了附件上传流水线的接口
type IUploadService interface {
	// Upload 处理单个文件，内容已存在时返回已有附件并标记 Reused
	Upload(ctx context.Context, req *Request, file *FileInput) (*model.UploadResult, error)
	// UploadBatch 并发处理多个文件，结果与输入顺序一致，单个文件失败不影响其它文件
	UploadBatch(ctx context.Context, req *Request, files []*FileInput) ([]*model.UploadItemResult, error)
	// CleanupAbandonedUploads 清理超过 olderThan 仍残留的临时文件
	CleanupAbandonedUploads(ctx context.Context, olderThan time.Duration) (int, error)
}

type uploadService struct {
	attachments repository.AttachmentRepository
	drivers     DriverResolver
	locker      *utility.KeyLocker
	eventBus    *event.EventBus
	logger      *zap.Logger
	opts        Options
	now         func() time.Time
}

// NewUploadService 是 uploadService 的构造函数
func NewUploadService(
	attachments repository.AttachmentRepository,
	drivers DriverResolver,
	bus *event.EventBus,
	logger *zap.Logger,
	opts Options,
) IUploadService {
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &uploadService{
		attachments: attachments,
		drivers:     drivers,
		locker:      utility.NewKeyLocker(),
		eventBus:    bus,
		logger:      logger.Named("upload"),
		opts:        opts,
		now:         time.Now,
	}
}

// spooled 是已经完整落盘的上传内容
type spooled struct {
	path string
	size int64
	hash string
	head []byte
}

// headWriter 只保留写入内容的前 n 个字节
type headWriter struct {
	buf []byte
	n   int
}

func (w *headWriter) Write(p []byte) (int, error) {
	if room := w.n - len(w.buf); room > 0 {
		if len(p) < room {
			room = len(p)
		}
		w.buf = append(w.buf, p[:room]...)
	}
	return len(p), nil
}

func (s *uploadService) resolveStorage(ctx context.Context, requested constant.StorageType) (constant.StorageType, error) {
	if requested == "" {
		return s.drivers.ActiveStorage(ctx)
	}
	if !requested.IsValid() {
		return "", constant.ErrInvalidParameter.WithMessage("不支持的存储类型: %s", requested)
	}
	return requested, nil
}

func (s *uploadService) Upload(ctx context.Context, req *Request, file *FileInput) (*model.UploadResult, error) {
	if err := validateRequest(req, file); err != nil {
		return nil, err
	}
	st, err := s.resolveStorage(ctx, req.Storage)
	if err != nil {
		return nil, err
	}
	return s.upload(ctx, req, st, file)
}

func (s *uploadService) UploadBatch(ctx context.Context, req *Request, files []*FileInput) ([]*model.UploadItemResult, error) {
	if req == nil || len(files) == 0 {
		return nil, constant.ErrInvalidParameter.WithMessage("没有需要上传的文件")
	}
	if req.Kind != "" && !req.Kind.IsValid() {
		return nil, constant.ErrInvalidParameter.WithMessage("无效的附件类型: %s", req.Kind)
	}
	st, err := s.resolveStorage(ctx, req.Storage)
	if err != nil {
		return nil, err
	}

	results := make([]*model.UploadItemResult, len(files))
	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for i, f := range files {
		g.Go(func() error {
			item := &model.UploadItemResult{Index: i}
			if f != nil {
				item.OriginalName = f.OriginalName
			}
			var res *model.UploadResult
			err := validateRequest(req, f)
			if err == nil {
				res, err = s.upload(ctx, req, st, f)
			}
			if err != nil {
				item.Error = s.itemError(err, item.OriginalName)
			} else {
				item.Attachment = res.Attachment
				item.Reused = res.Reused
			}
			results[i] = item
			// 单个文件的错误只记录在结果中，不中断其它文件
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

func (s *uploadService) upload(ctx context.Context, req *Request, st constant.StorageType, file *FileInput) (*model.UploadResult, error) {
	driver, err := s.drivers.Driver(ctx, st)
	if err != nil {
		return nil, err
	}

	sp, err := s.spool(file)
	if err != nil {
		return nil, err
	}
	// 本地驱动会直接移动临时文件，此时删除会返回不存在，忽略即可
	defer os.Remove(sp.path)

	mimeType := resolveMimeType(file.MimeType, sp.head)
	kind := req.Kind
	if kind == "" {
		kind = model.InferKind(mimeType)
	}

	lockKey := string(st) + ":" + sp.hash
	s.locker.Lock(lockKey)
	defer s.locker.Unlock(lockKey)

	existing, err := s.attachments.FindByHash(ctx, sp.hash, st)
	if err != nil {
		return nil, fmt.Errorf("按摘要查询附件失败: %w", err)
	}
	if existing != nil {
		s.logger.Debug("upload deduplicated", zap.Uint("attachment_id", existing.ID), zap.String("storage", string(st)))
		return &model.UploadResult{Attachment: existing, Reused: true}, nil
	}

	originalName := cleanName(file.OriginalName)
	ext := resolveExt(originalName, sp.head)
	key := path.Join(s.now().Format("2006/01"), uuid.NewString()+ext)

	att := &model.Attachment{
		FolderID:     req.FolderID,
		Kind:         kind,
		Name:         originalName,
		OriginalName: originalName,
		Filename:     path.Base(key),
		Ext:          strings.TrimPrefix(ext, "."),
		MimeType:     mimeType,
		Size:         sp.size,
		Storage:      st,
		Hash:         sp.hash,
		Status:       constant.StatusEnabled,
		CreatorID:    req.ActorID,
		UpdaterID:    req.ActorID,
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		att.Name = name
	}
	if kind == constant.AttachmentKindImage {
		if w, h, ok := imageSize(sp.path); ok {
			att.Width, att.Height = &w, &h
		}
	}

	put, err := driver.Put(ctx, &storage.PutInput{
		Key:        key,
		SourcePath: sp.path,
		Size:       sp.size,
		MimeType:   mimeType,
	})
	if err != nil {
		return nil, constant.ErrUploadIO.Wrap(err)
	}
	att.Path, att.URL, att.ObjectKey = put.Path, put.URL, put.ObjectKey

	created, err := s.attachments.Create(ctx, att)
	if err != nil {
		s.discard(driver, att)
		if !errors.Is(err, constant.ErrAttachmentHashConflict) {
			return nil, fmt.Errorf("保存附件记录失败: %w", err)
		}
		// 另一个请求先写入了相同内容，复用它的记录
		winner, findErr := s.attachments.FindByHash(ctx, sp.hash, st)
		if findErr != nil {
			return nil, fmt.Errorf("按摘要查询附件失败: %w", findErr)
		}
		if winner == nil {
			return nil, fmt.Errorf("附件摘要冲突但未找到已存在的记录: %w", err)
		}
		return &model.UploadResult{Attachment: winner, Reused: true}, nil
	}

	s.logger.Info("attachment uploaded",
		zap.Uint("attachment_id", created.ID),
		zap.String("storage", string(st)),
		zap.Int64("size", created.Size),
		zap.Uint("actor_id", req.ActorID))
	s.eventBus.Publish(event.AttachmentCreated, event.AttachmentCreatedPayload{
		AttachmentID: created.ID,
		Storage:      string(st),
		Size:         created.Size,
		ActorID:      req.ActorID,
	})
	return &model.UploadResult{Attachment: created}, nil
}

// spool 把上传流写入临时文件，同时计算 sha256 并保留文件头用于类型识别
func (s *uploadService) spool(file *FileInput) (*spooled, error) {
	src, err := file.Open()
	if err != nil {
		return nil, constant.ErrUploadIO.Wrap(err)
	}
	defer src.Close()

	if err := os.MkdirAll(s.opts.TempDir, 0o755); err != nil {
		return nil, constant.ErrUploadIO.Wrap(err)
	}
	tmp, err := os.CreateTemp(s.opts.TempDir, tempFilePattern)
	if err != nil {
		return nil, constant.ErrUploadIO.Wrap(err)
	}
	ok := false
	defer func() {
		if !ok {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	var reader io.Reader = src
	if s.opts.MaxSize > 0 {
		reader = io.LimitReader(src, s.opts.MaxSize+1)
	}
	hasher := sha256.New()
	head := &headWriter{n: sniffLen}
	n, err := io.Copy(io.MultiWriter(tmp, hasher, head), reader)
	if err != nil {
		return nil, constant.ErrUploadIO.Wrap(err)
	}
	if s.opts.MaxSize > 0 && n > s.opts.MaxSize {
		return nil, constant.ErrInvalidParameter.WithMessage("文件大小超过限制 (%d 字节)", s.opts.MaxSize)
	}
	if err := tmp.Close(); err != nil {
		return nil, constant.ErrUploadIO.Wrap(err)
	}
	ok = true
	return &spooled{
		path: tmp.Name(),
		size: n,
		hash: hex.EncodeToString(hasher.Sum(nil)),
		head: head.buf,
	}, nil
}

// discard 尽力删除已写入存储但未能入库的对象
func (s *uploadService) discard(driver storage.Driver, att *model.Attachment) {
	locator := att.Locator()
	if locator == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := driver.Delete(ctx, locator); err != nil {
		s.logger.Warn("discard stored object failed", zap.String("storage", string(att.Storage)), zap.String("locator", locator), zap.Error(err))
	}
}

func (s *uploadService) itemError(err error, name string) *model.ItemError {
	biz := constant.AsBizError(err)
	if biz.Kind == constant.KindInternal || biz.Kind == constant.KindIOError {
		s.logger.Error("upload failed", zap.String("original_name", name), zap.Error(err))
	}
	return &model.ItemError{Kind: biz.Kind, Code: biz.Code, Message: biz.Message}
}

func (s *uploadService) CleanupAbandonedUploads(ctx context.Context, olderThan time.Duration) (int, error) {
	entries, err := os.ReadDir(s.opts.TempDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("读取临时目录失败: %w", err)
	}

	deadline := s.now().Add(-olderThan)
	removed := 0
	for _, e := range entries {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		if e.IsDir() || !strings.HasPrefix(e.Name(), tempFilePrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(deadline) {
			continue
		}
		if err := os.Remove(filepath.Join(s.opts.TempDir, e.Name())); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("remove abandoned temp file failed", zap.String("name", e.Name()), zap.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}

func validateRequest(req *Request, file *FileInput) error {
	if req == nil || file == nil || file.Open == nil {
		return constant.ErrInvalidParameter.WithMessage("上传文件不能为空")
	}
	if req.Kind != "" && !req.Kind.IsValid() {
		return constant.ErrInvalidParameter.WithMessage("无效的附件类型: %s", req.Kind)
	}
	return nil
}

// resolveMimeType 声明的类型优先，缺失或为通用二进制时按内容识别
func resolveMimeType(declared string, head []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && !strings.EqualFold(declared, octetStream) {
		return declared
	}
	return mimetype.Detect(head).String()
}

// cleanName 去掉客户端传来的路径部分
func cleanName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	name = path.Base(name)
	if name == "." || name == "/" || name == "" {
		return "unnamed"
	}
	return name
}

// resolveExt 优先使用原始文件名的扩展名，只保留小写字母和数字
func resolveExt(name string, head []byte) string {
	ext := strings.ToLower(path.Ext(name))
	if !validExt(ext) {
		ext = mimetype.Detect(head).Extension()
	}
	if !validExt(ext) {
		return ""
	}
	return ext
}

func validExt(ext string) bool {
	if len(ext) < 2 || len(ext) > 16 || ext[0] != '.' {
		return false
	}
	for _, r := range ext[1:] {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}
