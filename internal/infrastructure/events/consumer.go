package events

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/xiebiao/shoptrack/internal/domain/event"
	"github.com/xiebiao/shoptrack/internal/domain/inventory"
	"github.com/xiebiao/shoptrack/pkg/metrics"
	"github.com/xiebiao/shoptrack/pkg/mq"
)

// envelope 消费端看到的事件，payload 延迟解析
type envelope struct {
	Type    string          `json:"type"`
	Key     string          `json:"key"`
	Payload json.RawMessage `json:"payload"`
}

// LowStockAlerter 处理 stock.low 事件
type LowStockAlerter interface {
	Alert(ctx context.Context, e inventory.StockLow) error
}

// LogAlerter 只写告警日志
type LogAlerter struct {
	log *zap.Logger
}

// NewLogAlerter 创建日志告警
func NewLogAlerter(log *zap.Logger) *LogAlerter {
	return &LogAlerter{log: log}
}

func (a *LogAlerter) Alert(_ context.Context, e inventory.StockLow) error {
	a.log.Warn("stock low, reorder needed",
		zap.Uint("product_id", e.ProductID),
		zap.String("name", e.Name),
		zap.Int("stock", e.Stock),
		zap.Int("reorder_point", e.ReorderPoint),
	)
	return nil
}

// LowStockHandler 把 mq 消息解码后交给告警器
type LowStockHandler struct {
	queue   string
	alerter LowStockAlerter
	log     *zap.Logger
}

// NewLowStockHandler 创建低库存消息处理器
func NewLowStockHandler(queue string, alerter LowStockAlerter, log *zap.Logger) *LowStockHandler {
	return &LowStockHandler{queue: queue, alerter: alerter, log: log}
}

// Handle 格式错误的消息直接确认丢弃，告警失败则重新入队
func (h *LowStockHandler) Handle(ctx context.Context, d mq.Delivery) error {
	var env envelope
	if err := json.Unmarshal(d.Body, &env); err != nil {
		h.log.Error("drop malformed message", zap.String("routing_key", d.RoutingKey), zap.Error(err))
		metrics.RecordEventConsumed(h.queue, false)
		return nil
	}
	if env.Type != event.TypeStockLow {
		return nil
	}

	var payload inventory.StockLow
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		h.log.Error("drop malformed payload", zap.String("key", env.Key), zap.Error(err))
		metrics.RecordEventConsumed(h.queue, false)
		return nil
	}

	if err := h.alerter.Alert(ctx, payload); err != nil {
		metrics.RecordEventConsumed(h.queue, false)
		return fmt.Errorf("低库存告警失败: %w", err)
	}
	metrics.RecordEventConsumed(h.queue, true)
	return nil
}

// RunLowStockConsumer 消费 stock.low 直到ctx取消
func RunLowStockConsumer(ctx context.Context, consumer *mq.Consumer, handler *LowStockHandler) error {
	return consumer.Consume(ctx, handler.Handle)
}
