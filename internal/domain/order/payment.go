package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus 支付状态；系统只记录，不对接支付渠道
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentPaid, PaymentFailed},
	PaymentFailed:  {PaymentPaid}, // 重新支付
	PaymentPaid:    {},
}

// ParsePaymentStatus 解析支付状态
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	st := PaymentStatus(s)
	if _, ok := paymentTransitions[st]; !ok {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// Payment 支付记录
type Payment struct {
	ID        uint
	OrderID   uint
	Amount    decimal.Decimal
	Mode      PaymentMode
	Status    PaymentStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPayment 为订单创建待支付记录
func NewPayment(o *Order) *Payment {
	now := time.Now()
	return &Payment{
		OrderID:   o.ID,
		Amount:    o.Total,
		Mode:      o.PaymentMode,
		Status:    PaymentPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TransitionTo 支付状态流转
func (p *Payment) TransitionTo(target PaymentStatus) error {
	for _, allowed := range paymentTransitions[p.Status] {
		if allowed == target {
			p.Status = target
			p.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrInvalidStatusTransition.WithDetail("%s -> %s", p.Status, target)
}
