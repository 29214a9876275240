/*
 * @Description: 附件与文件夹的业务编排
 * @Author: 安知鱼
 * @Date: 2026-01-16 09:12:44
 * @LastEditTime: 2026-01-18 15:37:02
 * @LastEditors: 安知鱼
 */
package attachment

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/anzhiyu-c/anheyu-attachment/internal/pkg/event"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/domain/repository"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/service/upload"
)

// attachmentNameMaxLength 附件显示名称的最大长度
const attachmentNameMaxLength = 255

// Options 业务策略
type Options struct {
	// MaxFolderDepth 新建文件夹允许的最大层级，0 表示不限制，只在创建时检查
	MaxFolderDepth int
}

// UploadRequest 是上传入口的参数
type UploadRequest struct {
	FolderID uint
	Kind     constant.AttachmentKind
	Name     string // 只在单文件上传时生效
	Storage  constant.StorageType
	ActorID  uint
}

// IAttachmentService 定义了附件模块对外提供的全部操作
type IAttachmentService interface {
	CreateFolder(ctx context.Context, params *model.CreateFolderParams) (*model.Folder, error)
	UpdateFolder(ctx context.Context, id uint, params *model.UpdateFolderParams) (*model.Folder, error)
	// DeleteFolder 只允许删除没有子文件夹和附件的文件夹
	DeleteFolder(ctx context.Context, id uint, actorID uint) (uint, error)
	GetFolder(ctx context.Context, id uint) (*model.Folder, error)
	ListFolders(ctx context.Context, query *model.FolderQuery) (*model.ListResult[*model.Folder], error)
	// FolderTree 返回完整的文件夹森林，rootID 不为 0 时只返回以它为根的子树
	FolderTree(ctx context.Context, rootID uint) ([]*model.FolderNode, error)

	GetAttachment(ctx context.Context, id uint) (*model.Attachment, error)
	ListAttachments(ctx context.Context, query *model.AttachmentQuery) (*model.ListResult[*model.Attachment], error)
	UpdateAttachment(ctx context.Context, id uint, params *model.UpdateAttachmentParams) (*model.Attachment, error)
	DeleteAttachment(ctx context.Context, id uint, actorID uint) (uint, error)
	// BatchDeleteAttachments 返回本次真正被删除的 id，重复与不存在的 id 会被忽略
	BatchDeleteAttachments(ctx context.Context, ids []uint, actorID uint) ([]uint, error)

	Upload(ctx context.Context, req *UploadRequest, files []*upload.FileInput) ([]*model.UploadItemResult, error)
}

type attachmentService struct {
	folders     repository.FolderRepository
	attachments repository.AttachmentRepository
	txManager   repository.TransactionManager
	uploader    upload.IUploadService
	eventBus    *event.EventBus
	logger      *zap.Logger
	opts        Options
}

// NewAttachmentService 是 attachmentService 的构造函数
func NewAttachmentService(
	folders repository.FolderRepository,
	attachments repository.AttachmentRepository,
	txManager repository.TransactionManager,
	uploader upload.IUploadService,
	bus *event.EventBus,
	logger *zap.Logger,
	opts Options,
) IAttachmentService {
	return &attachmentService{
		folders:     folders,
		attachments: attachments,
		txManager:   txManager,
		uploader:    uploader,
		eventBus:    bus,
		logger:      logger.Named("attachment"),
		opts:        opts,
	}
}

// --- 文件夹 ---

func (s *attachmentService) CreateFolder(ctx context.Context, params *model.CreateFolderParams) (*model.Folder, error) {
	if params == nil {
		return nil, constant.ErrInvalidParameter.WithMessage("参数不能为空")
	}
	p := *params
	name, err := normalizeFolderName(p.Name)
	if err != nil {
		return nil, err
	}
	p.Name = name
	if p.Kind == "" {
		p.Kind = constant.FolderKindAll
	}
	if !p.Kind.IsValid() {
		return nil, constant.ErrInvalidParameter.WithMessage("无效的文件夹类型: %s", p.Kind)
	}
	if p.Status == "" {
		p.Status = constant.StatusEnabled
	}
	if !p.Status.IsValid() {
		return nil, constant.ErrInvalidParameter.WithMessage("无效的状态: %s", p.Status)
	}

	if p.ParentID > 0 {
		parents, err := s.parentIndex(ctx)
		if err != nil {
			return nil, err
		}
		if _, ok := parents[p.ParentID]; !ok {
			return nil, constant.ErrFolderNotFound.WithMessage("父文件夹不存在")
		}
		if limit := s.opts.MaxFolderDepth; limit > 0 {
			if depth := depthOf(parents, p.ParentID) + 1; depth > limit {
				return nil, constant.ErrInvalidParameter.WithMessage("文件夹层级不能超过 %d 层", limit)
			}
		}
	}

	folder, err := s.folders.Create(ctx, &p)
	if err != nil {
		return nil, err
	}
	s.logger.Info("folder created", zap.Uint("folder_id", folder.ID), zap.Uint("parent_id", folder.ParentID), zap.Uint("actor_id", p.ActorID))
	return folder, nil
}

func (s *attachmentService) UpdateFolder(ctx context.Context, id uint, params *model.UpdateFolderParams) (*model.Folder, error) {
	if params == nil {
		return nil, constant.ErrInvalidParameter.WithMessage("参数不能为空")
	}
	p := *params
	if p.Name != nil {
		name, err := normalizeFolderName(*p.Name)
		if err != nil {
			return nil, err
		}
		p.Name = &name
	}
	if p.Kind != nil && !p.Kind.IsValid() {
		return nil, constant.ErrInvalidParameter.WithMessage("无效的文件夹类型: %s", *p.Kind)
	}
	if p.Status != nil && !p.Status.IsValid() {
		return nil, constant.ErrInvalidParameter.WithMessage("无效的状态: %s", *p.Status)
	}
	if p.ParentID != nil && *p.ParentID == id {
		return nil, constant.ErrInvalidParameter.WithMessage("不能将文件夹移动到自身下")
	}

	current, err := s.folders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, constant.ErrFolderNotFound
	}

	if p.ParentID != nil && *p.ParentID > 0 && *p.ParentID != current.ParentID {
		parents, err := s.parentIndex(ctx)
		if err != nil {
			return nil, err
		}
		if _, ok := parents[*p.ParentID]; !ok {
			return nil, constant.ErrFolderNotFound.WithMessage("父文件夹不存在")
		}
		if isAncestor(parents, id, *p.ParentID) {
			return nil, constant.ErrInvalidParameter.WithMessage("不能将文件夹移动到它的子文件夹下")
		}
	}

	folder, err := s.folders.Update(ctx, id, &p)
	if err != nil {
		return nil, err
	}
	s.logger.Info("folder updated", zap.Uint("folder_id", id), zap.Uint("actor_id", p.ActorID))
	return folder, nil
}

func (s *attachmentService) DeleteFolder(ctx context.Context, id uint, actorID uint) (uint, error) {
	err := s.txManager.Do(ctx, func(repos repository.Repositories) error {
		folder, err := repos.Folder.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if folder == nil {
			return constant.ErrFolderNotFound
		}
		children, err := repos.Folder.CountChildren(ctx, id)
		if err != nil {
			return err
		}
		files, err := repos.Folder.CountAttachments(ctx, id)
		if err != nil {
			return err
		}
		if children > 0 || files > 0 {
			return constant.ErrFolderDeleteForbidden.WithMessage("文件夹下还有 %d 个子文件夹和 %d 个附件，无法删除", children, files)
		}
		deleted, err := repos.Folder.SoftDelete(ctx, id, actorID)
		if err != nil {
			return err
		}
		if !deleted {
			return constant.ErrFolderNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("folder deleted", zap.Uint("folder_id", id), zap.Uint("actor_id", actorID))
	return id, nil
}

func (s *attachmentService) GetFolder(ctx context.Context, id uint) (*model.Folder, error) {
	folder, err := s.folders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if folder == nil {
		return nil, constant.ErrFolderNotFound
	}
	return folder, nil
}

func (s *attachmentService) ListFolders(ctx context.Context, query *model.FolderQuery) (*model.ListResult[*model.Folder], error) {
	q := model.FolderQuery{}
	if query != nil {
		q = *query
	}
	q.PageQuery = q.PageQuery.Normalize()
	items, total, err := s.folders.ListPage(ctx, &q)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*model.Folder{}
	}
	return &model.ListResult[*model.Folder]{List: items, Total: total, Page: q.Page, PageSize: q.PageSize}, nil
}

func (s *attachmentService) FolderTree(ctx context.Context, rootID uint) ([]*model.FolderNode, error) {
	folders, err := s.folders.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	roots, nodes := buildTree(folders)
	if rootID == 0 {
		return roots, nil
	}
	node, ok := nodes[rootID]
	if !ok {
		return nil, constant.ErrFolderNotFound
	}
	return []*model.FolderNode{node}, nil
}

// --- 附件 ---

func (s *attachmentService) GetAttachment(ctx context.Context, id uint) (*model.Attachment, error) {
	a, err := s.attachments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, constant.ErrAttachmentNotFound
	}
	return a, nil
}

func (s *attachmentService) ListAttachments(ctx context.Context, query *model.AttachmentQuery) (*model.ListResult[*model.Attachment], error) {
	q := model.AttachmentQuery{}
	if query != nil {
		q = *query
	}
	q.PageQuery = q.PageQuery.Normalize()
	if q.Kind != "" && !q.Kind.IsValid() {
		return nil, constant.ErrInvalidParameter.WithMessage("无效的附件类型: %s", q.Kind)
	}
	if q.Storage != "" && !q.Storage.IsValid() {
		return nil, constant.ErrInvalidParameter.WithMessage("不支持的存储类型: %s", q.Storage)
	}
	items, total, err := s.attachments.ListPage(ctx, &q)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*model.Attachment{}
	}
	return &model.ListResult[*model.Attachment]{List: items, Total: total, Page: q.Page, PageSize: q.PageSize}, nil
}

func (s *attachmentService) UpdateAttachment(ctx context.Context, id uint, params *model.UpdateAttachmentParams) (*model.Attachment, error) {
	if params == nil {
		return nil, constant.ErrInvalidParameter.WithMessage("参数不能为空")
	}
	p := *params
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" || utf8.RuneCountInString(name) > attachmentNameMaxLength {
			return nil, constant.ErrInvalidParameter.WithMessage("附件名称不能为空且不能超过 %d 个字符", attachmentNameMaxLength)
		}
		p.Name = &name
	}
	if p.Kind != nil && !p.Kind.IsValid() {
		return nil, constant.ErrInvalidParameter.WithMessage("无效的附件类型: %s", *p.Kind)
	}
	if p.Status != nil && !p.Status.IsValid() {
		return nil, constant.ErrInvalidParameter.WithMessage("无效的状态: %s", *p.Status)
	}
	if p.FolderID != nil && *p.FolderID > 0 {
		if err := s.ensureFolder(ctx, *p.FolderID); err != nil {
			return nil, err
		}
	}

	a, err := s.attachments.Update(ctx, id, &p)
	if err != nil {
		return nil, err
	}
	s.logger.Info("attachment updated", zap.Uint("attachment_id", id), zap.Uint("actor_id", p.ActorID))
	return a, nil
}

func (s *attachmentService) DeleteAttachment(ctx context.Context, id uint, actorID uint) (uint, error) {
	deleted, err := s.attachments.SoftDelete(ctx, id, actorID)
	if err != nil {
		return 0, err
	}
	if !deleted {
		return 0, constant.ErrAttachmentNotFound
	}
	s.logger.Info("attachment deleted", zap.Uint("attachment_id", id), zap.Uint("actor_id", actorID))
	s.eventBus.Publish(event.AttachmentDeleted, event.AttachmentDeletedPayload{IDs: []uint{id}, ActorID: actorID})
	return id, nil
}

func (s *attachmentService) BatchDeleteAttachments(ctx context.Context, ids []uint, actorID uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, constant.ErrInvalidParameter.WithMessage("请选择要删除的附件")
	}
	deleted, err := s.attachments.SoftDeleteMany(ctx, ids, actorID)
	if err != nil {
		return nil, err
	}
	if deleted == nil {
		deleted = []uint{}
	}
	if len(deleted) > 0 {
		s.logger.Info("attachments deleted", zap.Int("count", len(deleted)), zap.Uint("actor_id", actorID))
		s.eventBus.Publish(event.AttachmentDeleted, event.AttachmentDeletedPayload{IDs: deleted, ActorID: actorID})
	}
	return deleted, nil
}

// Upload 在读取任何文件内容之前校验目标文件夹
func (s *attachmentService) Upload(ctx context.Context, req *UploadRequest, files []*upload.FileInput) ([]*model.UploadItemResult, error) {
	if req == nil || len(files) == 0 {
		return nil, constant.ErrInvalidParameter.WithMessage("没有需要上传的文件")
	}
	if req.Kind != "" && !req.Kind.IsValid() {
		return nil, constant.ErrInvalidParameter.WithMessage("无效的附件类型: %s", req.Kind)
	}
	if req.FolderID > 0 {
		if err := s.ensureFolder(ctx, req.FolderID); err != nil {
			return nil, err
		}
	}

	ureq := &upload.Request{
		FolderID: req.FolderID,
		Kind:     req.Kind,
		Storage:  req.Storage,
		ActorID:  req.ActorID,
	}
	if len(files) == 1 {
		ureq.Name = req.Name
	}
	results, err := s.uploader.UploadBatch(ctx, ureq, files)
	if err != nil {
		return nil, err
	}

	created, reused, failed := 0, 0, 0
	for _, r := range results {
		switch {
		case r.Error != nil:
			failed++
		case r.Reused:
			reused++
		default:
			created++
		}
	}
	s.logger.Info("upload finished",
		zap.Int("created", created), zap.Int("reused", reused), zap.Int("failed", failed),
		zap.Uint("folder_id", req.FolderID), zap.Uint("actor_id", req.ActorID))
	return results, nil
}

func (s *attachmentService) ensureFolder(ctx context.Context, id uint) error {
	folder, err := s.folders.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("查询文件夹失败: %w", err)
	}
	if folder == nil {
		return constant.ErrFolderNotFound
	}
	return nil
}

// parentIndex 返回 id -> parentID 的映射，只包含未删除的文件夹
func (s *attachmentService) parentIndex(ctx context.Context) (map[uint]uint, error) {
	folders, err := s.folders.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	parents := make(map[uint]uint, len(folders))
	for _, f := range folders {
		parents[f.ID] = f.ParentID
	}
	return parents, nil
}

func normalizeFolderName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", constant.ErrInvalidParameter.WithMessage("文件夹名称不能为空")
	}
	if utf8.RuneCountInString(name) > constant.FolderNameMaxLength {
		return "", constant.ErrInvalidParameter.WithMessage("文件夹名称不能超过 %d 个字符", constant.FolderNameMaxLength)
	}
	return name, nil
}
