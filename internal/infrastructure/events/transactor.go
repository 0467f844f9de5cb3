// Package events 领域事件的投递：事务提交后发布到 RabbitMQ 或 Kafka
package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/shoptrack/internal/domain/event"
)

// txRunner 被装饰的事务管理器
type txRunner interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Transactor 在事务外层挂事件缓冲，提交成功后统一发布
// 回滚的事务不会发出任何事件；发布失败只记日志，不影响已提交的业务
type Transactor struct {
	inner     txRunner
	publisher event.Publisher
	log       *zap.Logger
}

// NewTransactor 创建带事件发布的事务管理器
func NewTransactor(inner txRunner, publisher event.Publisher, log *zap.Logger) *Transactor {
	return &Transactor{inner: inner, publisher: publisher, log: log}
}

// Transaction 嵌套调用时复用外层的事件缓冲
func (t *Transactor) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := event.BufferFrom(ctx); ok {
		return t.inner.Transaction(ctx, fn)
	}

	ctx, buf := event.WithBuffer(ctx)
	if err := t.inner.Transaction(ctx, fn); err != nil {
		return err
	}

	events := buf.Events()
	if len(events) == 0 {
		return nil
	}
	// 请求结束不应中断已提交事务的事件投递
	if err := t.publisher.Publish(context.WithoutCancel(ctx), events...); err != nil {
		t.log.Error("publish events failed",
			zap.Int("count", len(events)),
			zap.String("first_type", events[0].Type),
			zap.Error(err),
		)
	}
	return nil
}
