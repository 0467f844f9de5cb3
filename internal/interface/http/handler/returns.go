package handler

import (
	"github.com/gin-gonic/gin"

	appreturns "github.com/xiebiao/shoptrack/internal/application/returns"
	"github.com/xiebiao/shoptrack/internal/interface/http/dto"
	"github.com/xiebiao/shoptrack/pkg/response"
)

// ReturnHandler 退货
type ReturnHandler struct {
	returns *appreturns.ReturnUseCase
}

// NewReturnHandler 创建退货处理器
func NewReturnHandler(returns *appreturns.ReturnUseCase) *ReturnHandler {
	return &ReturnHandler{returns: returns}
}

// RequestReturn 申请退货，数量不能超过订单行剩余可退数量
// @Summary      申请退货
// @Tags         退货
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.RequestReturnRequest true "退货申请"
// @Success      200 {object} response.Response{data=appreturns.ReturnInfo}
// @Router       /api/v1/returns [post]
func (h *ReturnHandler) RequestReturn(c *gin.Context) {
	var req dto.RequestReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	result, err := h.returns.RequestReturn(c.Request.Context(), actor(c), appreturns.RequestReturnRequest{
		OrderID:   req.OrderID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Reason:    req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateStatus 审核/入库（管理员）
// @Summary      修改退货状态
// @Description  pending → approved/rejected，approved → restocked；restocked 时库存加回且只会发生一次
// @Tags         退货
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int               true "退货单ID"
// @Param        request body dto.StatusRequest true "目标状态"
// @Success      200 {object} response.Response{data=appreturns.ReturnInfo}
// @Failure      200 {object} response.Response "40002 状态流转非法 / 40010 已入库"
// @Router       /api/v1/returns/{id}/status [put]
func (h *ReturnHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	result, err := h.returns.UpdateStatus(c.Request.Context(), actor(c), id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetReturn 退货详情
// @Summary      退货详情
// @Tags         退货
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "退货单ID"
// @Success      200 {object} response.Response{data=appreturns.ReturnInfo}
// @Router       /api/v1/returns/{id} [get]
func (h *ReturnHandler) GetReturn(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.returns.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListReturns 退货列表
// @Summary      退货列表
// @Tags         退货
// @Produce      json
// @Security     BearerAuth
// @Param        user_id   query int    false "用户ID（管理员）"
// @Param        order_id  query int    false "订单ID"
// @Param        status    query string false "状态"
// @Param        page      query int    false "页码"
// @Param        page_size query int    false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData{list=[]appreturns.ReturnInfo}}
// @Router       /api/v1/returns [get]
func (h *ReturnHandler) ListReturns(c *gin.Context) {
	var req dto.ListReturnsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}
	result, err := h.returns.List(c.Request.Context(), actor(c), appreturns.ListReturnsRequest{
		UserID:   req.UserID,
		OrderID:  req.OrderID,
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.Returns, result.Total, result.Page, result.PageSize)
}
