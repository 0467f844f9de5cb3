package handler

import (
	"github.com/gin-gonic/gin"

	appinventory "github.com/xiebiao/shoptrack/internal/application/inventory"
	"github.com/xiebiao/shoptrack/internal/interface/http/dto"
	"github.com/xiebiao/shoptrack/pkg/response"
)

// InventoryHandler 库存调整、流水、对账、补货规划
type InventoryHandler struct {
	adjust   *appinventory.AdjustStockUseCase
	query    *appinventory.QueryUseCase
	planning *appinventory.PlanningUseCase
}

// NewInventoryHandler 创建库存处理器
func NewInventoryHandler(
	adjust *appinventory.AdjustStockUseCase,
	query *appinventory.QueryUseCase,
	planning *appinventory.PlanningUseCase,
) *InventoryHandler {
	return &InventoryHandler{adjust: adjust, query: query, planning: planning}
}

// AdjustStock 手工调整库存（补货/盘点），同一事务写流水
// @Summary      库存调整
// @Tags         库存
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AdjustStockRequest true "调整量"
// @Success      200 {object} response.Response{data=appinventory.LogEntryInfo}
// @Failure      200 {object} response.Response "40001 库存不足"
// @Router       /api/v1/inventory/adjust [post]
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	var req dto.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	result, err := h.adjust.Execute(c.Request.Context(), actor(c), appinventory.AdjustStockRequest{
		ProductID:  req.ProductID,
		Delta:      req.Delta,
		ChangeType: req.ChangeType,
		Note:       req.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetStock 当前库存
// @Summary      当前库存
// @Tags         库存
// @Produce      json
// @Param        id path int true "商品ID"
// @Success      200 {object} response.Response{data=appinventory.StockInfo}
// @Router       /api/v1/inventory/{id}/stock [get]
func (h *InventoryHandler) GetStock(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.query.GetStock(c.Request.Context(), actor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Logs 库存流水（管理员）
// @Summary      库存流水
// @Tags         库存
// @Produce      json
// @Security     BearerAuth
// @Param        product_id query int    false "商品ID，不传返回全部"
// @Param        since      query string false "起始时间 RFC3339"
// @Param        limit      query int    false "条数，默认50"
// @Success      200 {object} response.Response{data=[]appinventory.LogEntryInfo}
// @Router       /api/v1/inventory/logs [get]
func (h *InventoryHandler) Logs(c *gin.Context) {
	var req dto.InventoryLogsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}
	result, err := h.query.Logs(c.Request.Context(), actor(c), appinventory.LogsRequest{
		ProductID: req.ProductID,
		Since:     req.Since,
		Limit:     req.Limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Reconcile 对账：stock == initial_stock + Σdelta
// @Summary      库存对账
// @Tags         库存
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "商品ID"
// @Success      200 {object} response.Response{data=appinventory.ReconcileResult}
// @Router       /api/v1/inventory/{id}/reconcile [get]
func (h *InventoryHandler) Reconcile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.query.Reconcile(c.Request.Context(), actor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ReorderSuggestions 到达补货点的商品
// @Summary      补货建议
// @Tags         库存
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]appinventory.ReorderSuggestion}
// @Router       /api/v1/inventory/reorder [get]
func (h *InventoryHandler) ReorderSuggestions(c *gin.Context) {
	result, err := h.planning.ReorderSuggestions(c.Request.Context(), actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Forecast 按历史消耗预测补货量
// @Summary      需求预测
// @Tags         库存
// @Produce      json
// @Security     BearerAuth
// @Param        id          path  int true  "商品ID"
// @Param        window_days query int false "统计窗口（天），默认取配置"
// @Success      200 {object} response.Response{data=appinventory.Forecast}
// @Router       /api/v1/inventory/{id}/forecast [get]
func (h *InventoryHandler) Forecast(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ForecastRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}
	result, err := h.planning.Forecast(c.Request.Context(), actor(c), id, req.WindowDays)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
