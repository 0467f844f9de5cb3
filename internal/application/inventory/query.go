package inventory

import (
	"context"
	"time"

	"github.com/xiebiao/shoptrack/internal/domain/access"
	"github.com/xiebiao/shoptrack/internal/domain/inventory"
)

const defaultLogLimit = 50

// QueryUseCase 库存查询和对账
type QueryUseCase struct {
	inventory inventory.Service
	stock     inventory.StockRepository
	logs      inventory.LogRepository
	tx        inventory.Transactor
	gate      *access.Gate
}

// NewQueryUseCase 创建库存查询用例
func NewQueryUseCase(
	svc inventory.Service,
	stock inventory.StockRepository,
	logs inventory.LogRepository,
	tx inventory.Transactor,
	gate *access.Gate,
) *QueryUseCase {
	return &QueryUseCase{inventory: svc, stock: stock, logs: logs, tx: tx, gate: gate}
}

// StockInfo 当前库存
type StockInfo struct {
	ProductID uint `json:"product_id"`
	Stock     int  `json:"stock"`
}

// LogsRequest 流水查询；ProductID 为0时返回全部商品的最近流水
type LogsRequest struct {
	ProductID uint
	Since     *time.Time
	Limit     int
}

// ReconcileResult 对账结果
type ReconcileResult struct {
	ProductID    uint `json:"product_id"`
	InitialStock int  `json:"initial_stock"`
	LoggedDelta  int  `json:"logged_delta"`
	Expected     int  `json:"expected"`
	Actual       int  `json:"actual"`
	Consistent   bool `json:"consistent"`
}

// GetStock 任何人可查
func (uc *QueryUseCase) GetStock(ctx context.Context, actor access.Actor, productID uint) (*StockInfo, error) {
	if err := uc.gate.Require(actor, access.ActionCatalogRead, access.Resource{Kind: access.KindProduct}); err != nil {
		return nil, err
	}
	stock, err := uc.inventory.GetStock(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &StockInfo{ProductID: productID, Stock: stock}, nil
}

// Logs 库存流水，按时间倒序
func (uc *QueryUseCase) Logs(ctx context.Context, actor access.Actor, req LogsRequest) ([]*LogEntryInfo, error) {
	if err := uc.gate.Require(actor, access.ActionInventoryRead, access.Resource{Kind: access.KindProduct}); err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 || limit > 500 {
		limit = defaultLogLimit
	}

	var (
		entries []*inventory.LogEntry
		err     error
	)
	if req.ProductID == 0 {
		entries, err = uc.logs.Recent(ctx, limit)
	} else {
		if _, err := uc.stock.GetStock(ctx, req.ProductID); err != nil {
			return nil, err
		}
		entries, err = uc.logs.ListByProduct(ctx, req.ProductID, req.Since, limit)
	}
	if err != nil {
		return nil, err
	}
	return toLogEntryInfos(entries), nil
}

// Reconcile 校验 stock == initial_stock + Σdelta
// 锁住商品行后再汇总流水，并发的库存调整要等对账结束
func (uc *QueryUseCase) Reconcile(ctx context.Context, actor access.Actor, productID uint) (*ReconcileResult, error) {
	if err := uc.gate.Require(actor, access.ActionInventoryRead, access.Resource{Kind: access.KindProduct}); err != nil {
		return nil, err
	}

	var (
		row *inventory.StockRow
		sum int
	)
	err := uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		var err error
		if row, err = uc.stock.LockForUpdate(txCtx, productID); err != nil {
			return err
		}
		sum, err = uc.logs.SumDeltas(txCtx, productID)
		return err
	})
	if err != nil {
		return nil, err
	}

	expected := row.InitialStock + sum
	return &ReconcileResult{
		ProductID:    productID,
		InitialStock: row.InitialStock,
		LoggedDelta:  sum,
		Expected:     expected,
		Actual:       row.Stock,
		Consistent:   expected == row.Stock,
	}, nil
}
