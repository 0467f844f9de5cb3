package inventory

import (
	"context"
	"time"
)

// StockRepository 库存计数的读写（由商品表承载）
type StockRepository interface {
	// LockForUpdate SELECT ... FOR UPDATE 锁定商品行，必须在事务内调用
	LockForUpdate(ctx context.Context, productID uint) (*StockRow, error)

	// AddStock 原子执行 stock = stock + delta，不做非负检查
	AddStock(ctx context.Context, productID uint, delta int) error

	// GetStock 读取最新已提交的库存
	GetStock(ctx context.Context, productID uint) (*StockRow, error)
}

// LogRepository 库存流水仓储，没有更新和删除
type LogRepository interface {
	Append(ctx context.Context, entry *LogEntry) error

	// ListByProduct 按时间倒序，since 为空表示不限
	ListByProduct(ctx context.Context, productID uint, since *time.Time, limit int) ([]*LogEntry, error)

	// Recent 全部商品的最近流水
	Recent(ctx context.Context, limit int) ([]*LogEntry, error)

	// SumDeltas 某商品全部流水的 delta 之和
	SumDeltas(ctx context.Context, productID uint) (int, error)

	// SumByType since 之后按变更类型汇总 delta
	SumByType(ctx context.Context, productID uint, since time.Time) (map[ChangeType]int, error)
}

// Transactor 事务边界；嵌套调用复用外层事务
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
