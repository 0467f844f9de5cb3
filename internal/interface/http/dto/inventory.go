package dto

import "time"

// AdjustStockRequest 手工库存调整
type AdjustStockRequest struct {
	ProductID  uint   `json:"product_id" binding:"required" example:"1"`
	Delta      int    `json:"delta" binding:"required" example:"20"`
	ChangeType string `json:"change_type" binding:"omitempty,oneof=restock adjustment" example:"restock"`
	Note       string `json:"note" binding:"max=500" example:"供应商到货"`
}

// InventoryLogsRequest 库存流水查询
type InventoryLogsRequest struct {
	ProductID uint       `form:"product_id"`
	Since     *time.Time `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit     int        `form:"limit" binding:"omitempty,min=1,max=500"`
}

// ForecastRequest 需求预测
type ForecastRequest struct {
	WindowDays int `form:"window_days" binding:"omitempty,min=1,max=365" example:"30"`
}

// ListAuditRequest 审计日志查询
type ListAuditRequest struct {
	TableName string     `form:"table_name" example:"products"`
	RecordID  *uint      `form:"record_id"`
	ActorID   *uint      `form:"actor_id"`
	Since     *time.Time `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}
