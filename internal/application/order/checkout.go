// Package order 结算、订单状态、支付状态和订单查询用例
package order

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/shoptrack/internal/domain/access"
	"github.com/xiebiao/shoptrack/internal/domain/cart"
	"github.com/xiebiao/shoptrack/internal/domain/catalog"
	"github.com/xiebiao/shoptrack/internal/domain/event"
	"github.com/xiebiao/shoptrack/internal/domain/inventory"
	"github.com/xiebiao/shoptrack/internal/domain/order"
	"github.com/xiebiao/shoptrack/pkg/metrics"
	"github.com/xiebiao/shoptrack/pkg/tracing"
)

// CheckoutUseCase 购物车结算
//
// 库存在加入购物车时已经预留，结算默认不再扣减。
// legacyDecrement 打开时对每行额外写一条 sale 流水（兼容旧行为，会重复扣减）
type CheckoutUseCase struct {
	carts           cart.Repository
	products        catalog.ProductRepository
	orders          order.Repository
	payments        order.PaymentRepository
	inventory       inventory.Service
	tx              inventory.Transactor
	gate            *access.Gate
	legacyDecrement bool
	allowNegative   bool
	log             *zap.Logger
}

// CheckoutOptions 结算行为开关
type CheckoutOptions struct {
	LegacyDecrement bool
	AllowNegative   bool
}

// NewCheckoutUseCase 创建结算用例
func NewCheckoutUseCase(
	carts cart.Repository,
	products catalog.ProductRepository,
	orders order.Repository,
	payments order.PaymentRepository,
	svc inventory.Service,
	tx inventory.Transactor,
	gate *access.Gate,
	opts CheckoutOptions,
	log *zap.Logger,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		carts:           carts,
		products:        products,
		orders:          orders,
		payments:        payments,
		inventory:       svc,
		tx:              tx,
		gate:            gate,
		legacyDecrement: opts.LegacyDecrement,
		allowNegative:   opts.AllowNegative,
		log:             log,
	}
}

// CheckoutRequest 结算请求
type CheckoutRequest struct {
	PaymentMode string
	Notes       string
}

// Execute 一个事务内：锁定读购物车、快照价格、建订单和支付记录、清空购物车
// 任何一步失败整体回滚，购物车和库存保持原样
func (uc *CheckoutUseCase) Execute(ctx context.Context, actor access.Actor, req CheckoutRequest) (info *OrderInfo, err error) {
	if err := uc.gate.Require(actor, access.ActionOrderCreate, access.Owned(access.KindOrder, actor.UserID)); err != nil {
		return nil, err
	}
	mode, err := order.ParsePaymentMode(req.PaymentMode)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "order", "Checkout")
	span.SetAttributes(attribute.Int64("user_id", int64(actor.UserID)), attribute.Bool("legacy_decrement", uc.legacyDecrement))
	defer func() {
		metrics.RecordCheckout(err == nil, time.Since(start))
		tracing.EndSpan(span, err)
	}()

	var (
		o       *order.Order
		payment *order.Payment
	)
	err = uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		lines, err := uc.carts.LockByUser(txCtx, actor.UserID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return order.ErrEmptyCart
		}

		orderLines, err := uc.snapshot(txCtx, lines)
		if err != nil {
			return err
		}

		o, err = order.NewOrder(order.GenerateOrderNo(), actor.UserID, mode, req.Notes, orderLines)
		if err != nil {
			return err
		}
		if err := uc.orders.Create(txCtx, o); err != nil {
			return err
		}

		payment = order.NewPayment(o)
		if err := uc.payments.Create(txCtx, payment); err != nil {
			return err
		}

		if uc.legacyDecrement {
			if err := uc.decrement(txCtx, actor, o); err != nil {
				return err
			}
		}

		// 读取之后有条目被移除或被清理，说明对应预留已释放
		removed, err := uc.carts.DeleteByUser(txCtx, actor.UserID)
		if err != nil {
			return err
		}
		if removed != int64(len(lines)) {
			return cart.ErrCartChanged
		}

		event.Record(txCtx, event.New(event.TypeOrderPlaced, strconv.FormatUint(uint64(o.ID), 10), order.Placed{
			OrderID:   o.ID,
			OrderNo:   o.OrderNo,
			UserID:    o.UserID,
			Total:     o.Total.StringFixed(2),
			LineCount: len(o.Lines),
		}))
		return nil
	})
	if err != nil {
		uc.log.Info("checkout failed", zap.Uint("user_id", actor.UserID), zap.Error(err))
		return nil, err
	}

	uc.log.Info("order placed",
		zap.Uint("order_id", o.ID),
		zap.String("order_no", o.OrderNo),
		zap.Uint("user_id", o.UserID),
		zap.String("total", o.Total.StringFixed(2)),
	)
	info = ToOrderInfo(o, true)
	info.Payment = ToPaymentInfo(payment)
	return info, nil
}

// snapshot 读取商品当前价格和税率；购物车里有已删除商品时失败
func (uc *CheckoutUseCase) snapshot(ctx context.Context, lines []*cart.Line) ([]order.Line, error) {
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

	out := make([]order.Line, 0, len(lines))
	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok {
			return nil, catalog.ErrProductNotFound.WithDetail("购物车中的商品%d已下架", l.ProductID)
		}
		out = append(out, order.Line{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    l.Quantity,
			UnitPrice:   p.Price,
			GSTRate:     p.GSTRate,
		})
	}
	return out, nil
}

func (uc *CheckoutUseCase) decrement(ctx context.Context, actor access.Actor, o *order.Order) error {
	adjust := uc.inventory.CheckedAdjustStock
	if uc.allowNegative {
		adjust = uc.inventory.AdjustStock
	}
	for _, l := range o.Lines {
		_, err := adjust(ctx, inventory.Adjustment{
			ProductID:  l.ProductID,
			Delta:      -l.Quantity,
			ChangeType: inventory.ChangeSale,
			ActorID:    actor.Ref(),
			Reference:  fmt.Sprintf("order:%s", o.OrderNo),
		})
		if err != nil {
			return err
		}
	}
	return nil
}
