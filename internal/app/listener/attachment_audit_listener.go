/*
 * @Description: 记录附件的新增与删除
 * @Author: 安知鱼
 * @Date: 2026-01-18 19:46:30
 * @LastEditTime: 2026-01-18 19:46:30
 * @LastEditors: 安知鱼
 */
package listener

import (
	"go.uber.org/zap"

	"github.com/anzhiyu-c/anheyu-attachment/internal/pkg/event"
)

type AttachmentAuditListener struct {
	logger *zap.Logger
}

func NewAttachmentAuditListener(eventBus *event.EventBus, logger *zap.Logger) *AttachmentAuditListener {
	l := &AttachmentAuditListener{logger: logger.Named("audit")}
	eventBus.Subscribe(event.AttachmentCreated, l.handleCreated)
	eventBus.Subscribe(event.AttachmentDeleted, l.handleDeleted)
	return l
}

func (l *AttachmentAuditListener) handleCreated(payload interface{}) {
	p, ok := payload.(event.AttachmentCreatedPayload)
	if !ok {
		return
	}
	l.logger.Info("attachment created",
		zap.Uint("attachment_id", p.AttachmentID),
		zap.String("storage", p.Storage),
		zap.Int64("size", p.Size),
		zap.Uint("actor_id", p.ActorID))
}

func (l *AttachmentAuditListener) handleDeleted(payload interface{}) {
	p, ok := payload.(event.AttachmentDeletedPayload)
	if !ok {
		return
	}
	l.logger.Info("attachments deleted",
		zap.Uints("attachment_ids", p.IDs),
		zap.Uint("actor_id", p.ActorID))
}
