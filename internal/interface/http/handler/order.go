package handler

import (
	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/shoptrack/internal/application/order"
	"github.com/xiebiao/shoptrack/internal/interface/http/dto"
	"github.com/xiebiao/shoptrack/pkg/response"
)

// OrderHandler 结算、订单查询、订单和支付状态
type OrderHandler struct {
	checkout *apporder.CheckoutUseCase
	query    *apporder.QueryUseCase
	status   *apporder.StatusUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	checkout *apporder.CheckoutUseCase,
	query *apporder.QueryUseCase,
	status *apporder.StatusUseCase,
) *OrderHandler {
	return &OrderHandler{checkout: checkout, query: query, status: status}
}

// Checkout 结算购物车
// @Summary      结算
// @Description  在一个事务内快照价格、创建订单和待支付记录并清空购物车；库存已在加购时预留
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CheckoutRequest true "支付方式"
// @Success      200 {object} response.Response{data=apporder.OrderInfo}
// @Failure      200 {object} response.Response "40004 购物车为空 / 40402 商品不存在"
// @Router       /api/v1/orders [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.checkout.Execute(c.Request.Context(), actor(c), apporder.CheckoutRequest{
		PaymentMode: req.PaymentMode,
		Notes:       req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetOrder 订单详情，普通用户只能看自己的
// @Summary      订单详情
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=apporder.OrderInfo}
// @Router       /api/v1/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.query.GetOrder(c.Request.Context(), actor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListOrders 订单列表
// @Summary      订单列表
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        user_id   query int    false "用户ID（管理员）"
// @Param        status    query string false "状态"
// @Param        page      query int    false "页码"
// @Param        page_size query int    false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData{list=[]apporder.OrderInfo}}
// @Router       /api/v1/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var req dto.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}
	result, err := h.query.ListOrders(c.Request.Context(), actor(c), apporder.ListOrdersRequest{
		UserID:   req.UserID,
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.Orders, result.Total, result.Page, result.PageSize)
}

// UpdateOrderStatus 修改订单状态（管理员）
// @Summary      修改订单状态
// @Description  pending → processing → completed，pending/processing 可取消；取消不回补库存
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int               true "订单ID"
// @Param        request body dto.StatusRequest true "目标状态"
// @Success      200 {object} response.Response{data=apporder.OrderInfo}
// @Failure      200 {object} response.Response "40002 状态流转非法"
// @Router       /api/v1/orders/{id}/status [put]
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	result, err := h.status.UpdateOrderStatus(c.Request.Context(), actor(c), id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdatePaymentStatus 修改支付状态（管理员）
// @Summary      修改支付状态
// @Tags         支付
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int               true "支付记录ID"
// @Param        request body dto.StatusRequest true "目标状态"
// @Success      200 {object} response.Response{data=apporder.PaymentInfo}
// @Router       /api/v1/payments/{id}/status [put]
func (h *OrderHandler) UpdatePaymentStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	result, err := h.status.UpdatePaymentStatus(c.Request.Context(), actor(c), id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
