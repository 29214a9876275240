package listener

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/anzhiyu-c/anheyu-attachment/internal/pkg/event"
	"github.com/anzhiyu-c/anheyu-attachment/pkg/constant"
)

type countingInvalidator struct {
	calls atomic.Int32
}

func (c *countingInvalidator) Invalidate() { c.calls.Add(1) }

func TestStorageConfigListener(t *testing.T) {
	bus := event.NewEventBus(zap.NewNop())
	defer bus.Shutdown()
	inv := &countingInvalidator{}
	NewStorageConfigListener(bus, inv, zap.NewNop())

	bus.Publish(event.SettingUpdated, event.SettingUpdatedPayload{Keys: []string{"SITE_NAME"}})
	bus.Publish(event.SettingUpdated, event.SettingUpdatedPayload{
		Keys: []string{constant.KeyStorageAWSS3.String(), constant.KeyStorageActiveProvider.String()},
	})
	bus.Publish(event.SettingUpdated, "bad payload")

	assert.Eventually(t, func() bool { return inv.calls.Load() == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), inv.calls.Load())
}

func TestAttachmentAuditListener(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	bus := event.NewEventBus(zap.NewNop())
	defer bus.Shutdown()
	NewAttachmentAuditListener(bus, zap.New(core))

	bus.Publish(event.AttachmentCreated, event.AttachmentCreatedPayload{AttachmentID: 3, Storage: "local", Size: 10, ActorID: 1})
	bus.Publish(event.AttachmentDeleted, event.AttachmentDeletedPayload{IDs: []uint{3}, ActorID: 1})

	assert.Eventually(t, func() bool { return logs.Len() == 2 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, logs.FilterMessage("attachment created").Len())
	assert.Equal(t, 1, logs.FilterMessage("attachments deleted").Len())
}
