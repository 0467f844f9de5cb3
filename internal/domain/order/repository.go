package order

import (
	"context"
)

// Repository 订单仓储
type Repository interface {
	// Create 创建订单（含明细），必须在事务内
	Create(ctx context.Context, o *Order) error

	// FindByID 查询订单（含明细）
	FindByID(ctx context.Context, id uint) (*Order, error)

	// LockByID 加行锁读取订单（含明细）
	LockByID(ctx context.Context, id uint) (*Order, error)

	// UpdateStatus 只更新状态
	UpdateStatus(ctx context.Context, o *Order) error

	// List 分页查询，UserID 为空表示全部用户
	List(ctx context.Context, f ListFilter) ([]*Order, int64, error)
}

// ListFilter 订单列表条件
type ListFilter struct {
	UserID   *uint
	Status   Status
	Page     int
	PageSize int
}

// PaymentRepository 支付记录仓储
type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	FindByID(ctx context.Context, id uint) (*Payment, error)
	LockByID(ctx context.Context, id uint) (*Payment, error)
	FindByOrderID(ctx context.Context, orderID uint) (*Payment, error)
	UpdateStatus(ctx context.Context, p *Payment) error
}
