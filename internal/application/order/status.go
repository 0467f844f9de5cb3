package order

import (
	"context"

	"github.com/xiebiao/shoptrack/internal/domain/access"
	"github.com/xiebiao/shoptrack/internal/domain/audit"
	"github.com/xiebiao/shoptrack/internal/domain/inventory"
	"github.com/xiebiao/shoptrack/internal/domain/order"
)

// StatusUseCase 管理员修改订单和支付状态
// 取消订单不归还库存，退货入库走 returns 流程
type StatusUseCase struct {
	orders   order.Repository
	payments order.PaymentRepository
	audit    *audit.Recorder
	tx       inventory.Transactor
	gate     *access.Gate
}

// NewStatusUseCase 创建状态用例
func NewStatusUseCase(
	orders order.Repository,
	payments order.PaymentRepository,
	recorder *audit.Recorder,
	tx inventory.Transactor,
	gate *access.Gate,
) *StatusUseCase {
	return &StatusUseCase{orders: orders, payments: payments, audit: recorder, tx: tx, gate: gate}
}

// UpdateOrderStatus 订单状态流转
func (uc *StatusUseCase) UpdateOrderStatus(ctx context.Context, actor access.Actor, orderID uint, status string) (*OrderInfo, error) {
	target, err := order.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	var o *order.Order
	err = uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		o, err = uc.orders.LockByID(txCtx, orderID)
		if err != nil {
			return err
		}
		if err := uc.gate.Require(actor, access.ActionOrderStatus, access.Owned(access.KindOrder, o.UserID)); err != nil {
			return err
		}

		before := ToOrderInfo(o, false)
		if err := o.TransitionTo(target); err != nil {
			return err
		}
		if err := uc.orders.UpdateStatus(txCtx, o); err != nil {
			return err
		}
		return uc.audit.Record(txCtx, actor.Ref(), audit.ActionUpdate, audit.TableOrders, o.ID, before, ToOrderInfo(o, false))
	})
	if err != nil {
		return nil, err
	}
	return ToOrderInfo(o, true), nil
}

// UpdatePaymentStatus 支付状态流转：pending -> paid|failed，failed -> paid
func (uc *StatusUseCase) UpdatePaymentStatus(ctx context.Context, actor access.Actor, paymentID uint, status string) (*PaymentInfo, error) {
	target, err := order.ParsePaymentStatus(status)
	if err != nil {
		return nil, err
	}

	var p *order.Payment
	err = uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		p, err = uc.payments.LockByID(txCtx, paymentID)
		if err != nil {
			return err
		}
		if err := uc.gate.Require(actor, access.ActionPaymentStatus, access.Resource{Kind: access.KindPayment}); err != nil {
			return err
		}

		before := ToPaymentInfo(p)
		if err := p.TransitionTo(target); err != nil {
			return err
		}
		if err := uc.payments.UpdateStatus(txCtx, p); err != nil {
			return err
		}
		return uc.audit.Record(txCtx, actor.Ref(), audit.ActionUpdate, audit.TablePayments, p.ID, before, ToPaymentInfo(p))
	})
	if err != nil {
		return nil, err
	}
	return ToPaymentInfo(p), nil
}
