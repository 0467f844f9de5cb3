package handler

import (
	"github.com/gin-gonic/gin"

	appaudit "github.com/xiebiao/shoptrack/internal/application/audit"
	"github.com/xiebiao/shoptrack/internal/interface/http/dto"
	"github.com/xiebiao/shoptrack/pkg/response"
)

// AuditHandler 审计日志（只读）
type AuditHandler struct {
	list *appaudit.ListAuditUseCase
}

// NewAuditHandler 创建审计处理器
func NewAuditHandler(list *appaudit.ListAuditUseCase) *AuditHandler {
	return &AuditHandler{list: list}
}

// ListAudit 审计日志（管理员）
// @Summary      审计日志
// @Tags         审计
// @Produce      json
// @Security     BearerAuth
// @Param        table_name query string false "表名" Enums(products, categories, suppliers, orders, payments, returns, user_roles)
// @Param        record_id  query int    false "记录ID"
// @Param        actor_id   query int    false "操作人"
// @Param        since      query string false "起始时间 RFC3339"
// @Param        page       query int    false "页码"
// @Param        page_size  query int    false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData{list=[]appaudit.EntryInfo}}
// @Router       /api/v1/audit [get]
func (h *AuditHandler) ListAudit(c *gin.Context) {
	var req dto.ListAuditRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}
	result, err := h.list.Execute(c.Request.Context(), actor(c), appaudit.ListAuditRequest{
		TableName: req.TableName,
		RecordID:  req.RecordID,
		ActorID:   req.ActorID,
		Since:     req.Since,
		Page:      req.Page,
		PageSize:  req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.Entries, result.Total, result.Page, result.PageSize)
}
