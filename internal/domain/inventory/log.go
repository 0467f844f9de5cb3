package inventory

import (
	"time"
)

// ChangeType 库存变更类型
type ChangeType string

const (
	ChangeSale         ChangeType = "sale"          // 结算扣减（仅兼容模式）
	ChangeReturn       ChangeType = "return"        // 退货入库
	ChangeRestock      ChangeType = "restock"       // 采购补货
	ChangeAdjustment   ChangeType = "adjustment"    // 盘点调整，可正可负
	ChangeCartReserved ChangeType = "cart_reserved" // 加入购物车预留
	ChangeCartReleased ChangeType = "cart_released" // 购物车释放
)

// Valid 是否为已知类型
func (c ChangeType) Valid() bool {
	switch c {
	case ChangeSale, ChangeReturn, ChangeRestock, ChangeAdjustment, ChangeCartReserved, ChangeCartReleased:
		return true
	}
	return false
}

// AcceptsDelta 变更方向是否与类型一致
// sale、cart_reserved 只能减；return、restock、cart_released 只能加；adjustment 任意非零
func (c ChangeType) AcceptsDelta(delta int) bool {
	if delta == 0 {
		return false
	}
	switch c {
	case ChangeSale, ChangeCartReserved:
		return delta < 0
	case ChangeReturn, ChangeRestock, ChangeCartReleased:
		return delta > 0
	case ChangeAdjustment:
		return true
	}
	return false
}

// LogEntry 库存流水（只追加）
type LogEntry struct {
	ID          uint
	ProductID   uint
	Delta       int
	ChangeType  ChangeType
	BeforeStock int
	AfterStock  int
	ActorID     *uint  // 触发人，系统任务为空
	Reference   string // 关联业务，如 cart:12、order:ORD..、return:5
	Note        string
	CreatedAt   time.Time
}

// Adjustment 一次库存变更请求
type Adjustment struct {
	ProductID  uint
	Delta      int
	ChangeType ChangeType
	ActorID    *uint
	Reference  string
	Note       string
}

// StockRow 加锁读到的库存行
type StockRow struct {
	ProductID    uint
	Name         string
	Stock        int
	InitialStock int
	ReorderPoint int
}
