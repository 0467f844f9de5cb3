package gormstore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/shoptrack/internal/domain/inventory"
	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
)

// inventoryLogRepository 库存流水，只有追加和查询
type inventoryLogRepository struct {
	db *gorm.DB
}

// NewInventoryLogRepository 创建库存流水仓储
func NewInventoryLogRepository(db *gorm.DB) inventory.LogRepository {
	return &inventoryLogRepository{db: db}
}

func (r *inventoryLogRepository) Append(ctx context.Context, e *inventory.LogEntry) error {
	model := &InventoryLogModel{
		ProductID:   e.ProductID,
		Delta:       e.Delta,
		ChangeType:  string(e.ChangeType),
		BeforeStock: e.BeforeStock,
		AfterStock:  e.AfterStock,
		ActorID:     e.ActorID,
		Reference:   e.Reference,
		Note:        e.Note,
		CreatedAt:   e.CreatedAt,
	}
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.WrapDB(err, "写入库存流水失败")
	}
	e.ID = model.ID
	e.CreatedAt = model.CreatedAt
	return nil
}

func (r *inventoryLogRepository) ListByProduct(ctx context.Context, productID uint, since *time.Time, limit int) ([]*inventory.LogEntry, error) {
	query := getDB(ctx, r.db).Where("product_id = ?", productID)
	if since != nil {
		query = query.Where("created_at >= ?", *since)
	}
	return r.find(query, limit)
}

func (r *inventoryLogRepository) Recent(ctx context.Context, limit int) ([]*inventory.LogEntry, error) {
	return r.find(getDB(ctx, r.db), limit)
}

func (r *inventoryLogRepository) find(query *gorm.DB, limit int) ([]*inventory.LogEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var models []InventoryLogModel
	if err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&models).Error; err != nil {
		return nil, apperrors.WrapDB(err, "查询库存流水失败")
	}
	out := make([]*inventory.LogEntry, len(models))
	for i := range models {
		out[i] = toLogEntry(&models[i])
	}
	return out, nil
}

func (r *inventoryLogRepository) SumDeltas(ctx context.Context, productID uint) (int, error) {
	var sum int64
	err := getDB(ctx, r.db).Model(&InventoryLogModel{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(delta), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, apperrors.WrapDB(err, "汇总库存流水失败")
	}
	return int(sum), nil
}

func (r *inventoryLogRepository) SumByType(ctx context.Context, productID uint, since time.Time) (map[inventory.ChangeType]int, error) {
	var rows []struct {
		ChangeType string
		Total      int64
	}
	err := getDB(ctx, r.db).Model(&InventoryLogModel{}).
		Select("change_type, COALESCE(SUM(delta), 0) AS total").
		Where("product_id = ? AND created_at >= ?", productID, since).
		Group("change_type").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.WrapDB(err, "按类型汇总库存流水失败")
	}
	out := make(map[inventory.ChangeType]int, len(rows))
	for _, row := range rows {
		out[inventory.ChangeType(row.ChangeType)] = int(row.Total)
	}
	return out, nil
}

func toLogEntry(m *InventoryLogModel) *inventory.LogEntry {
	return &inventory.LogEntry{
		ID:          m.ID,
		ProductID:   m.ProductID,
		Delta:       m.Delta,
		ChangeType:  inventory.ChangeType(m.ChangeType),
		BeforeStock: m.BeforeStock,
		AfterStock:  m.AfterStock,
		ActorID:     m.ActorID,
		Reference:   m.Reference,
		Note:        m.Note,
		CreatedAt:   m.CreatedAt,
	}
}
