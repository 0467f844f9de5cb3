package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status 订单状态
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// 合法的状态流转，completed / cancelled 为终态
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// ParseStatus 解析订单状态
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := transitions[st]; !ok {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// PaymentMode 支付方式
type PaymentMode string

const (
	PaymentUPI  PaymentMode = "UPI"
	PaymentCard PaymentMode = "Card"
	PaymentCOD  PaymentMode = "COD"
)

// ParsePaymentMode 解析支付方式
func ParsePaymentMode(s string) (PaymentMode, error) {
	switch m := PaymentMode(s); m {
	case PaymentUPI, PaymentCard, PaymentCOD:
		return m, nil
	}
	return "", ErrInvalidPaymentMode
}

// Order 订单（聚合根）
type Order struct {
	ID          uint
	OrderNo     string
	UserID      uint
	Subtotal    decimal.Decimal // 不含税
	Tax         decimal.Decimal
	Total       decimal.Decimal // 含税合计
	Status      Status
	PaymentMode PaymentMode
	Notes       string
	Lines       []Line
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Line 订单明细，单价和税率是下单时的快照
type Line struct {
	ID          uint
	OrderID     uint
	ProductID   uint
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	GSTRate     decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Amount 不含税小计
func (l Line) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// TaxAmount 该行税额
func (l Line) TaxAmount() decimal.Decimal {
	return l.Amount().Mul(l.GSTRate).Div(hundred).Round(2)
}

// NewOrder 创建待处理订单并计算金额
func NewOrder(orderNo string, userID uint, mode PaymentMode, notes string, lines []Line) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	now := time.Now()
	o := &Order{
		OrderNo:     orderNo,
		UserID:      userID,
		Status:      StatusPending,
		PaymentMode: mode,
		Notes:       notes,
		Lines:       lines,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	o.calculate()
	if !o.Total.IsPositive() {
		return nil, ErrNonPositiveTotal
	}
	return o, nil
}

func (o *Order) calculate() {
	subtotal, tax := decimal.Zero, decimal.Zero
	for _, l := range o.Lines {
		subtotal = subtotal.Add(l.Amount())
		tax = tax.Add(l.TaxAmount())
	}
	o.Subtotal = subtotal.Round(2)
	o.Tax = tax.Round(2)
	o.Total = o.Subtotal.Add(o.Tax)
}

// CanTransitionTo 状态机校验
func (o *Order) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[o.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo 状态流转
func (o *Order) TransitionTo(target Status) error {
	if !o.CanTransitionTo(target) {
		return ErrInvalidStatusTransition.WithDetail("%s -> %s", o.Status, target)
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

// IsOwnedBy 订单是否属于该用户
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.UserID == userID
}

// QuantityOf 订单中某商品的数量，不在订单中返回0
func (o *Order) QuantityOf(productID uint) int {
	qty := 0
	for _, l := range o.Lines {
		if l.ProductID == productID {
			qty += l.Quantity
		}
	}
	return qty
}

// Placed order.placed 事件负载
type Placed struct {
	OrderID   uint   `json:"order_id"`
	OrderNo   string `json:"order_no"`
	UserID    uint   `json:"user_id"`
	Total     string `json:"total"`
	LineCount int    `json:"line_count"`
}
