// Package event 领域事件：事务内登记，事务提交后统一发布
package event

import (
	"context"
	"sync"
	"time"
)

// 事件类型（同时用作MQ routing key / Kafka topic 后缀）
const (
	TypeInventoryChanged = "inventory.changed"
	TypeStockLow         = "stock.low"
	TypeOrderPlaced      = "order.placed"
	TypeReturnRestocked  = "return.restocked"
)

// Event 领域事件
type Event struct {
	Type       string      `json:"type"`
	Key        string      `json:"key"` // 分区键，一般是聚合ID
	Payload    interface{} `json:"payload"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// New 创建事件
func New(eventType, key string, payload interface{}) Event {
	return Event{Type: eventType, Key: key, Payload: payload, OccurredAt: time.Now()}
}

// Publisher 事件发布者（RabbitMQ / Kafka / 空实现）
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// Buffer 一个事务内登记的事件
type Buffer struct {
	mu     sync.Mutex
	events []Event
}

// Events 返回已登记事件的副本
func (b *Buffer) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Event(nil), b.events...)
}

type bufferKey struct{}

// WithBuffer 在ctx上挂一个新的事件缓冲
func WithBuffer(ctx context.Context) (context.Context, *Buffer) {
	b := &Buffer{}
	return context.WithValue(ctx, bufferKey{}, b), b
}

// BufferFrom 取出ctx上的事件缓冲
func BufferFrom(ctx context.Context) (*Buffer, bool) {
	b, ok := ctx.Value(bufferKey{}).(*Buffer)
	return b, ok
}

// Record 登记事件；ctx上没有缓冲时直接丢弃
func Record(ctx context.Context, events ...Event) {
	b, ok := BufferFrom(ctx)
	if !ok {
		return
	}
	b.mu.Lock()
	b.events = append(b.events, events...)
	b.mu.Unlock()
}
