package order

import (
	"time"

	"github.com/xiebiao/shoptrack/internal/domain/order"
)

// OrderInfo 订单详情，也用作审计快照
type OrderInfo struct {
	ID          uint         `json:"id"`
	OrderNo     string       `json:"order_no"`
	UserID      uint         `json:"user_id"`
	Status      string       `json:"status"`
	PaymentMode string       `json:"payment_mode"`
	Subtotal    string       `json:"subtotal"`
	Tax         string       `json:"tax"`
	Total       string       `json:"total"`
	Notes       string       `json:"notes,omitempty"`
	Lines       []LineInfo   `json:"lines,omitempty"`
	Payment     *PaymentInfo `json:"payment,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// LineInfo 订单明细
type LineInfo struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	GSTRate     string `json:"gst_rate"`
	Amount      string `json:"amount"`
}

// PaymentInfo 支付记录
type PaymentInfo struct {
	ID        uint      `json:"id"`
	OrderID   uint      `json:"order_id"`
	Amount    string    `json:"amount"`
	Mode      string    `json:"mode"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToOrderInfo 实体转DTO；审计快照不带明细
func ToOrderInfo(o *order.Order, withLines bool) *OrderInfo {
	info := &OrderInfo{
		ID:          o.ID,
		OrderNo:     o.OrderNo,
		UserID:      o.UserID,
		Status:      string(o.Status),
		PaymentMode: string(o.PaymentMode),
		Subtotal:    o.Subtotal.StringFixed(2),
		Tax:         o.Tax.StringFixed(2),
		Total:       o.Total.StringFixed(2),
		Notes:       o.Notes,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
	if withLines {
		info.Lines = make([]LineInfo, len(o.Lines))
		for i, l := range o.Lines {
			info.Lines[i] = LineInfo{
				ProductID:   l.ProductID,
				ProductName: l.ProductName,
				Quantity:    l.Quantity,
				UnitPrice:   l.UnitPrice.StringFixed(2),
				GSTRate:     l.GSTRate.StringFixed(2),
				Amount:      l.Amount().StringFixed(2),
			}
		}
	}
	return info
}

// ToPaymentInfo 实体转DTO
func ToPaymentInfo(p *order.Payment) *PaymentInfo {
	return &PaymentInfo{
		ID:        p.ID,
		OrderID:   p.OrderID,
		Amount:    p.Amount.StringFixed(2),
		Mode:      string(p.Mode),
		Status:    string(p.Status),
		UpdatedAt: p.UpdatedAt,
	}
}
