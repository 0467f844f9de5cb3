package inventory

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/shoptrack/internal/domain/event"
	"github.com/xiebiao/shoptrack/pkg/metrics"
	"github.com/xiebiao/shoptrack/pkg/tracing"
)

// Service 库存领域服务
// 所有库存变更只经过这里：锁行、改计数、写流水在同一个事务里完成
type Service interface {
	// GetStock 读取最新库存
	GetStock(ctx context.Context, productID uint) (int, error)

	// AdjustStock 允许结果为负
	AdjustStock(ctx context.Context, adj Adjustment) (*LogEntry, error)

	// CheckedAdjustStock 结果为负时返回 ErrInsufficientStock 并回滚
	CheckedAdjustStock(ctx context.Context, adj Adjustment) (*LogEntry, error)
}

// InventoryChanged inventory.changed 事件负载
type InventoryChanged struct {
	ProductID   uint       `json:"product_id"`
	Delta       int        `json:"delta"`
	ChangeType  ChangeType `json:"change_type"`
	BeforeStock int        `json:"before_stock"`
	AfterStock  int        `json:"after_stock"`
	Reference   string     `json:"reference,omitempty"`
}

// StockLow stock.low 事件负载
type StockLow struct {
	ProductID    uint   `json:"product_id"`
	Name         string `json:"name"`
	Stock        int    `json:"stock"`
	ReorderPoint int    `json:"reorder_point"`
}

type service struct {
	stock StockRepository
	logs  LogRepository
	tx    Transactor
	log   *zap.Logger
}

// NewService 创建库存领域服务
func NewService(stock StockRepository, logs LogRepository, tx Transactor, log *zap.Logger) Service {
	return &service{stock: stock, logs: logs, tx: tx, log: log}
}

func (s *service) GetStock(ctx context.Context, productID uint) (int, error) {
	row, err := s.stock.GetStock(ctx, productID)
	if err != nil {
		return 0, err
	}
	return row.Stock, nil
}

func (s *service) AdjustStock(ctx context.Context, adj Adjustment) (*LogEntry, error) {
	return s.apply(ctx, adj, false)
}

func (s *service) CheckedAdjustStock(ctx context.Context, adj Adjustment) (*LogEntry, error) {
	return s.apply(ctx, adj, true)
}

func (s *service) apply(ctx context.Context, adj Adjustment, checked bool) (entry *LogEntry, err error) {
	if !adj.ChangeType.Valid() {
		return nil, ErrInvalidChangeType
	}
	if !adj.ChangeType.AcceptsDelta(adj.Delta) {
		return nil, ErrInvalidDelta
	}

	ctx, span := tracing.StartSpan(ctx, "inventory", "AdjustStock")
	span.SetAttributes(
		attribute.Int64("product_id", int64(adj.ProductID)),
		attribute.Int("delta", adj.Delta),
		attribute.String("change_type", string(adj.ChangeType)),
	)
	defer func() {
		metrics.RecordStockAdjustment(string(adj.ChangeType), err == nil)
		tracing.EndSpan(span, err)
	}()

	err = s.tx.Transaction(ctx, func(txCtx context.Context) error {
		row, err := s.stock.LockForUpdate(txCtx, adj.ProductID)
		if err != nil {
			return err
		}

		after := row.Stock + adj.Delta
		if checked && after < 0 {
			return ErrInsufficientStock.WithDetail("商品%d当前库存%d，需要%d", row.ProductID, row.Stock, -adj.Delta)
		}

		if err := s.stock.AddStock(txCtx, adj.ProductID, adj.Delta); err != nil {
			return err
		}

		entry = &LogEntry{
			ProductID:   adj.ProductID,
			Delta:       adj.Delta,
			ChangeType:  adj.ChangeType,
			BeforeStock: row.Stock,
			AfterStock:  after,
			ActorID:     adj.ActorID,
			Reference:   adj.Reference,
			Note:        adj.Note,
			CreatedAt:   time.Now(),
		}
		if err := s.logs.Append(txCtx, entry); err != nil {
			return err
		}

		key := strconv.FormatUint(uint64(adj.ProductID), 10)
		event.Record(txCtx, event.New(event.TypeInventoryChanged, key, InventoryChanged{
			ProductID:   adj.ProductID,
			Delta:       adj.Delta,
			ChangeType:  adj.ChangeType,
			BeforeStock: row.Stock,
			AfterStock:  after,
			Reference:   adj.Reference,
		}))
		// 只在穿越补货点时告警一次
		if row.Stock > row.ReorderPoint && after <= row.ReorderPoint {
			metrics.RecordLowStock()
			event.Record(txCtx, event.New(event.TypeStockLow, key, StockLow{
				ProductID:    row.ProductID,
				Name:         row.Name,
				Stock:        after,
				ReorderPoint: row.ReorderPoint,
			}))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("stock adjusted",
		zap.Uint("product_id", entry.ProductID),
		zap.Int("delta", entry.Delta),
		zap.String("change_type", string(entry.ChangeType)),
		zap.Int("after", entry.AfterStock),
	)
	return entry, nil
}
