// Package audit 审计日志查询用例
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/xiebiao/shoptrack/internal/domain/access"
	"github.com/xiebiao/shoptrack/internal/domain/audit"
)

// ListAuditUseCase 审计日志查询，仅管理员
type ListAuditUseCase struct {
	repo audit.Repository
	gate *access.Gate
}

// NewListAuditUseCase 创建审计查询用例
func NewListAuditUseCase(repo audit.Repository, gate *access.Gate) *ListAuditUseCase {
	return &ListAuditUseCase{repo: repo, gate: gate}
}

// ListAuditRequest 查询条件
type ListAuditRequest struct {
	TableName string
	RecordID  *uint
	ActorID   *uint
	Since     *time.Time
	Page      int
	PageSize  int
}

// EntryInfo 审计记录
type EntryInfo struct {
	ID        uint            `json:"id"`
	ActorID   *uint           `json:"actor_id,omitempty"`
	Action    string          `json:"action"`
	TableName string          `json:"table_name"`
	RecordID  uint            `json:"record_id"`
	OldValue  json.RawMessage `json:"old_value,omitempty"`
	NewValue  json.RawMessage `json:"new_value,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// ListAuditResponse 审计列表
type ListAuditResponse struct {
	Entries  []*EntryInfo `json:"entries"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
}

// Execute 按时间倒序
func (uc *ListAuditUseCase) Execute(ctx context.Context, actor access.Actor, req ListAuditRequest) (*ListAuditResponse, error) {
	if err := uc.gate.Require(actor, access.ActionAuditRead, access.Resource{Kind: access.KindAudit}); err != nil {
		return nil, err
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}

	entries, total, err := uc.repo.List(ctx, audit.Filter{
		TableName: req.TableName,
		RecordID:  req.RecordID,
		ActorID:   req.ActorID,
		Since:     req.Since,
		Page:      req.Page,
		PageSize:  req.PageSize,
	})
	if err != nil {
		return nil, err
	}

	resp := &ListAuditResponse{Entries: make([]*EntryInfo, len(entries)), Total: total, Page: req.Page, PageSize: req.PageSize}
	for i, e := range entries {
		resp.Entries[i] = &EntryInfo{
			ID:        e.ID,
			ActorID:   e.ActorID,
			Action:    string(e.Action),
			TableName: e.TableName,
			RecordID:  e.RecordID,
			OldValue:  e.OldValue,
			NewValue:  e.NewValue,
			CreatedAt: e.CreatedAt,
		}
	}
	return resp, nil
}
