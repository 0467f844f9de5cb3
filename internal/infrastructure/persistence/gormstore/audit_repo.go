package gormstore

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/xiebiao/shoptrack/internal/domain/audit"
	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
)

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository 创建审计仓储
func NewAuditRepository(db *gorm.DB) audit.Repository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Append(ctx context.Context, e *audit.Entry) error {
	model := &AuditLogModel{
		ActorID:   e.ActorID,
		Action:    string(e.Action),
		Table:     e.TableName,
		RecordID:  e.RecordID,
		OldValue:  datatypes.JSON(e.OldValue),
		NewValue:  datatypes.JSON(e.NewValue),
		CreatedAt: e.CreatedAt,
	}
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.WrapDB(err, "写入审计日志失败")
	}
	e.ID = model.ID
	return nil
}

func (r *auditRepository) List(ctx context.Context, f audit.Filter) ([]*audit.Entry, int64, error) {
	query := getDB(ctx, r.db).Model(&AuditLogModel{})
	if f.TableName != "" {
		query = query.Where("table_name = ?", f.TableName)
	}
	if f.RecordID != nil {
		query = query.Where("record_id = ?", *f.RecordID)
	}
	if f.ActorID != nil {
		query = query.Where("actor_id = ?", *f.ActorID)
	}
	if f.Since != nil {
		query = query.Where("created_at >= ?", *f.Since)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.WrapDB(err, "查询审计总数失败")
	}

	limit, offset := paginate(f.Page, f.PageSize)
	var models []AuditLogModel
	if err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&models).Error; err != nil {
		return nil, 0, apperrors.WrapDB(err, "查询审计日志失败")
	}

	out := make([]*audit.Entry, len(models))
	for i, m := range models {
		out[i] = &audit.Entry{
			ID:        m.ID,
			ActorID:   m.ActorID,
			Action:    audit.Action(m.Action),
			TableName: m.Table,
			RecordID:  m.RecordID,
			OldValue:  rawJSON(m.OldValue),
			NewValue:  rawJSON(m.NewValue),
			CreatedAt: m.CreatedAt,
		}
	}
	return out, total, nil
}

func rawJSON(j datatypes.JSON) json.RawMessage {
	if len(j) == 0 {
		return nil
	}
	return json.RawMessage(j)
}
