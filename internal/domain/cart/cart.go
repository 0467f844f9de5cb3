// Package cart 购物车：每个(用户,商品)一行，数量至少为1
// 购物车数量就是该用户对该商品的库存预留量
package cart

import (
	"context"
	"time"

	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
)

var (
	ErrLineNotFound    = apperrors.New(apperrors.ErrCodeCartLineNotFound, "购物车中没有该商品")
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "购买数量必须大于0")
	ErrCartChanged     = apperrors.New(apperrors.ErrCodeConflict, "购物车已被修改，请重新结算")
)

// Line 购物车条目
type Line struct {
	ID        uint
	UserID    uint
	ProductID uint
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewLine 创建购物车条目
func NewLine(userID, productID uint, qty int) (*Line, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}
	now := time.Now()
	return &Line{UserID: userID, ProductID: productID, Quantity: qty, CreatedAt: now, UpdatedAt: now}, nil
}

// Repository 购物车仓储
type Repository interface {
	// Find 查找(用户,商品)条目，不存在返回 ErrLineNotFound
	Find(ctx context.Context, userID, productID uint) (*Line, error)
	Create(ctx context.Context, line *Line) error
	UpdateQuantity(ctx context.Context, id uint, qty int) error
	Delete(ctx context.Context, id uint) error
	ListByUser(ctx context.Context, userID uint) ([]*Line, error)
	// LockByUser 在事务内加行锁读取用户全部条目
	LockByUser(ctx context.Context, userID uint) ([]*Line, error)
	// DeleteByUser 返回实际删除的行数
	DeleteByUser(ctx context.Context, userID uint) (int64, error)

	// ListStale 超过 before 未更新的条目（预留过期）
	ListStale(ctx context.Context, before time.Time, limit int) ([]*Line, error)
}
