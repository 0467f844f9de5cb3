package order

import (
	"context"
	"errors"

	"github.com/xiebiao/shoptrack/internal/domain/access"
	"github.com/xiebiao/shoptrack/internal/domain/order"
)

// QueryUseCase 订单查询；客户只能看到自己的订单
type QueryUseCase struct {
	orders   order.Repository
	payments order.PaymentRepository
	gate     *access.Gate
}

// NewQueryUseCase 创建订单查询用例
func NewQueryUseCase(orders order.Repository, payments order.PaymentRepository, gate *access.Gate) *QueryUseCase {
	return &QueryUseCase{orders: orders, payments: payments, gate: gate}
}

// ListOrdersRequest 订单列表请求；UserID 只对管理员生效
type ListOrdersRequest struct {
	UserID   *uint
	Status   string
	Page     int
	PageSize int
}

// ListOrdersResponse 订单列表
type ListOrdersResponse struct {
	Orders   []*OrderInfo `json:"orders"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
}

// GetOrder 订单详情（含明细和支付记录）
func (uc *QueryUseCase) GetOrder(ctx context.Context, actor access.Actor, orderID uint) (*OrderInfo, error) {
	o, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := uc.gate.Require(actor, access.ActionOrderRead, access.Owned(access.KindOrder, o.UserID)); err != nil {
		return nil, err
	}

	info := ToOrderInfo(o, true)
	p, err := uc.payments.FindByOrderID(ctx, o.ID)
	switch {
	case err == nil:
		info.Payment = ToPaymentInfo(p)
	case !errors.Is(err, order.ErrPaymentNotFound):
		return nil, err
	}
	return info, nil
}

// ListOrders 管理员可看全部，客户只看自己的
func (uc *QueryUseCase) ListOrders(ctx context.Context, actor access.Actor, req ListOrdersRequest) (*ListOrdersResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}
	filter := order.ListFilter{Page: req.Page, PageSize: req.PageSize}
	if req.Status != "" {
		st, err := order.ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}

	owner := actor.UserID
	if actor.IsAdmin() {
		filter.UserID = req.UserID
		if req.UserID != nil {
			owner = *req.UserID
		}
	} else {
		filter.UserID = &owner
	}
	if err := uc.gate.Require(actor, access.ActionOrderRead, access.Owned(access.KindOrder, owner)); err != nil {
		return nil, err
	}

	orders, total, err := uc.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := &ListOrdersResponse{Orders: make([]*OrderInfo, len(orders)), Total: total, Page: req.Page, PageSize: req.PageSize}
	for i, o := range orders {
		resp.Orders[i] = ToOrderInfo(o, false)
	}
	return resp, nil
}
