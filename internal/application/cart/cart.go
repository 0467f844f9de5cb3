// Package cart 购物车用例
//
// 购物车数量即库存预留：加入/增加时扣减库存（cart_reserved），
// 减少/移除/过期时归还（cart_released），结算时不再扣减
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xiebiao/shoptrack/internal/domain/access"
	"github.com/xiebiao/shoptrack/internal/domain/cart"
	"github.com/xiebiao/shoptrack/internal/domain/catalog"
	"github.com/xiebiao/shoptrack/internal/domain/inventory"
)

// CartUseCase 购物车用例
type CartUseCase struct {
	carts         cart.Repository
	products      catalog.ProductRepository
	inventory     inventory.Service
	tx            inventory.Transactor
	gate          *access.Gate
	allowNegative bool
	log           *zap.Logger
}

// NewCartUseCase 创建购物车用例；allowNegative 为 true 时预留不检查库存
func NewCartUseCase(
	carts cart.Repository,
	products catalog.ProductRepository,
	svc inventory.Service,
	tx inventory.Transactor,
	gate *access.Gate,
	allowNegative bool,
	log *zap.Logger,
) *CartUseCase {
	return &CartUseCase{
		carts:         carts,
		products:      products,
		inventory:     svc,
		tx:            tx,
		gate:          gate,
		allowNegative: allowNegative,
		log:           log,
	}
}

// LineInfo 购物车条目
type LineInfo struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Amount    string `json:"amount"`
	Available bool   `json:"available"` // 商品已下架时为false
}

// CartInfo 购物车
type CartInfo struct {
	Lines    []*LineInfo `json:"lines"`
	Subtotal string      `json:"subtotal"`
	Count    int         `json:"count"`
}

// AddToCart 加入购物车；已存在时数量累加，qty 为0按1处理
func (uc *CartUseCase) AddToCart(ctx context.Context, actor access.Actor, productID uint, qty int) (*LineInfo, error) {
	if err := uc.gate.Require(actor, access.ActionCartWrite, access.Owned(access.KindCart, actor.UserID)); err != nil {
		return nil, err
	}
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return nil, cart.ErrInvalidQuantity
	}

	var line *cart.Line
	err := uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		if err := uc.reserve(txCtx, actor, productID, qty); err != nil {
			return err
		}

		existing, err := uc.carts.Find(txCtx, actor.UserID, productID)
		switch {
		case errors.Is(err, cart.ErrLineNotFound):
			line, err = cart.NewLine(actor.UserID, productID, qty)
			if err != nil {
				return err
			}
			return uc.carts.Create(txCtx, line)
		case err != nil:
			return err
		}

		existing.Quantity += qty
		line = existing
		return uc.carts.UpdateQuantity(txCtx, existing.ID, existing.Quantity)
	})
	if err != nil {
		return nil, err
	}
	return uc.lineInfo(ctx, line)
}

// UpdateQuantity 改为指定数量，差额预留或归还；qty<=0 等同移除
func (uc *CartUseCase) UpdateQuantity(ctx context.Context, actor access.Actor, productID uint, qty int) (*LineInfo, error) {
	if err := uc.gate.Require(actor, access.ActionCartWrite, access.Owned(access.KindCart, actor.UserID)); err != nil {
		return nil, err
	}
	if qty <= 0 {
		return nil, uc.RemoveFromCart(ctx, actor, productID)
	}

	var line *cart.Line
	err := uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		existing, err := uc.carts.Find(txCtx, actor.UserID, productID)
		if err != nil {
			return err
		}

		delta := qty - existing.Quantity
		switch {
		case delta > 0:
			err = uc.reserve(txCtx, actor, productID, delta)
		case delta < 0:
			err = uc.release(txCtx, actor.Ref(), existing, -delta)
		}
		if err != nil {
			return err
		}

		existing.Quantity = qty
		line = existing
		if delta == 0 {
			return nil
		}
		return uc.carts.UpdateQuantity(txCtx, existing.ID, qty)
	})
	if err != nil {
		return nil, err
	}
	return uc.lineInfo(ctx, line)
}

// RemoveFromCart 移除条目并归还全部预留
func (uc *CartUseCase) RemoveFromCart(ctx context.Context, actor access.Actor, productID uint) error {
	if err := uc.gate.Require(actor, access.ActionCartWrite, access.Owned(access.KindCart, actor.UserID)); err != nil {
		return err
	}

	return uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		line, err := uc.carts.Find(txCtx, actor.UserID, productID)
		if err != nil {
			return err
		}
		if err := uc.release(txCtx, actor.Ref(), line, line.Quantity); err != nil {
			return err
		}
		return uc.carts.Delete(txCtx, line.ID)
	})
}

// ListCart 查看购物车，金额按当前价格计算
func (uc *CartUseCase) ListCart(ctx context.Context, actor access.Actor) (*CartInfo, error) {
	if err := uc.gate.Require(actor, access.ActionCartRead, access.Owned(access.KindCart, actor.UserID)); err != nil {
		return nil, err
	}

	lines, err := uc.carts.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	products, err := uc.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]*catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	info := &CartInfo{Lines: make([]*LineInfo, 0, len(lines))}
	subtotal := decimal.Zero
	for _, l := range lines {
		li := toLineInfo(l, byID[l.ProductID])
		if p, ok := byID[l.ProductID]; ok {
			subtotal = subtotal.Add(p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
		info.Lines = append(info.Lines, li)
		info.Count += l.Quantity
	}
	info.Subtotal = subtotal.StringFixed(2)
	return info, nil
}

func (uc *CartUseCase) reserve(ctx context.Context, actor access.Actor, productID uint, qty int) error {
	adj := inventory.Adjustment{
		ProductID:  productID,
		Delta:      -qty,
		ChangeType: inventory.ChangeCartReserved,
		ActorID:    actor.Ref(),
		Reference:  cartRef(actor.UserID),
	}
	var err error
	if uc.allowNegative {
		_, err = uc.inventory.AdjustStock(ctx, adj)
	} else {
		_, err = uc.inventory.CheckedAdjustStock(ctx, adj)
	}
	return err
}

// release 商品已被删除时没有库存可归还，只删条目
func (uc *CartUseCase) release(ctx context.Context, actorID *uint, line *cart.Line, qty int) error {
	_, err := uc.inventory.AdjustStock(ctx, inventory.Adjustment{
		ProductID:  line.ProductID,
		Delta:      qty,
		ChangeType: inventory.ChangeCartReleased,
		ActorID:    actorID,
		Reference:  cartRef(line.UserID),
	})
	if errors.Is(err, catalog.ErrProductNotFound) {
		uc.log.Warn("cart line references deleted product",
			zap.Uint("user_id", line.UserID), zap.Uint("product_id", line.ProductID))
		return nil
	}
	return err
}

func (uc *CartUseCase) lineInfo(ctx context.Context, line *cart.Line) (*LineInfo, error) {
	p, err := uc.products.FindByID(ctx, line.ProductID)
	if err != nil && !errors.Is(err, catalog.ErrProductNotFound) {
		return nil, err
	}
	return toLineInfo(line, p), nil
}

func toLineInfo(l *cart.Line, p *catalog.Product) *LineInfo {
	info := &LineInfo{ProductID: l.ProductID, Quantity: l.Quantity}
	if p == nil {
		return info
	}
	info.Name = p.Name
	info.Available = true
	info.UnitPrice = p.Price.StringFixed(2)
	info.Amount = p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))).StringFixed(2)
	return info
}

func cartRef(userID uint) string {
	return fmt.Sprintf("cart:%d", userID)
}
