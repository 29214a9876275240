/*
 * @Description: 一个带固定Worker池的异步事件总线
 * @Author: 安知鱼
 * @Date: 2025-07-10 19:06:12
 * @LastEditTime: 2026-01-21 15:40:12
 * @LastEditors: 安知鱼
 */
package event

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// 定义事件类型
type Topic string

const (
	// SettingUpdated 系统配置被写入，payload 为 SettingUpdatedPayload
	SettingUpdated Topic = "setting:updated"
	// 附件事件，payload 分别为 AttachmentCreatedPayload、AttachmentDeletedPayload
	AttachmentCreated Topic = "attachment:created"
	AttachmentDeleted Topic = "attachment:deleted"
)

type SettingUpdatedPayload struct {
	Keys    []string
	ActorID uint
}

type AttachmentCreatedPayload struct {
	AttachmentID uint
	Storage      string
	Size         int64
	ActorID      uint
}

type AttachmentDeletedPayload struct {
	IDs     []uint
	ActorID uint
}

// 事件处理器函数类型
type Handler func(payload interface{})

// Event 是在通道中传递的事件结构
type Event struct {
	Topic   Topic
	Payload interface{}
}

// EventBus 实现了基于Worker池的异步事件总线
type EventBus struct {
	mu        sync.RWMutex
	handlers  map[Topic][]Handler
	eventChan chan Event     // 带缓冲的事件通道
	wg        sync.WaitGroup // 用于优雅关闭
	logger    *zap.Logger
	closed    bool // 受 mu 保护，关闭后的 Publish 直接丢弃
}

// 定义Worker池和通道的配置
const (
	DefaultWorkerCount = 4    // 默认启动4个后台Worker
	DefaultChannelSize = 1024 // 默认事件通道缓冲区大小
)

// NewEventBus 创建并启动一个新的事件总线
func NewEventBus(logger *zap.Logger) *EventBus {
	bus := &EventBus{
		handlers:  make(map[Topic][]Handler),
		eventChan: make(chan Event, DefaultChannelSize),
		logger:    logger.Named("event_bus"),
	}
	bus.startWorkers(DefaultWorkerCount)
	return bus
}

// startWorkers 启动固定数量的后台worker
func (b *EventBus) startWorkers(count int) {
	for i := 0; i < count; i++ {
		b.wg.Add(1)
		go b.worker(i + 1)
	}
}

// worker 是消费者，不断从通道中读取并处理事件
func (b *EventBus) worker(workerID int) {
	defer b.wg.Done()
	b.logger.Debug("worker started", zap.Int("worker", workerID))

	for event := range b.eventChan {
		b.mu.RLock()
		handlers := append([]Handler(nil), b.handlers[event.Topic]...)
		b.mu.RUnlock()
		for _, handler := range handlers {
			b.dispatch(event, handler)
		}
	}
	b.logger.Debug("worker stopped", zap.Int("worker", workerID))
}

// dispatch 执行单个处理器，处理器 panic 不会带走 worker
func (b *EventBus) dispatch(event Event, handler Handler) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked", zap.String("topic", string(event.Topic)), zap.String("panic", fmt.Sprint(r)))
		}
	}()
	handler(event.Payload)
}

// Subscribe 订阅一个事件
func (b *EventBus) Subscribe(topic Topic, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], handler)
}

// Publish 发布一个事件，非阻塞
func (b *EventBus) Publish(topic Topic, payload interface{}) {
	event := Event{Topic: topic, Payload: payload}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		b.logger.Warn("event bus is shut down, dropping event", zap.String("topic", string(topic)))
		return
	}
	select {
	case b.eventChan <- event:
	default:
		// 通道已满，说明后台处理不过来了
		b.logger.Warn("event channel is full, dropping event", zap.String("topic", string(topic)))
	}
}

// Shutdown 优雅地关闭事件总线，等待已入队的事件处理完毕
func (b *EventBus) Shutdown() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	close(b.eventChan)
	b.mu.Unlock()

	b.logger.Info("shutting down")
	b.wg.Wait()
	b.logger.Info("all workers have stopped")
}
