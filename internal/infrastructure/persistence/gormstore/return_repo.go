package gormstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/shoptrack/internal/domain/returns"
	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
)

type returnRepository struct {
	db *gorm.DB
}

// NewReturnRepository 创建退货仓储
func NewReturnRepository(db *gorm.DB) returns.Repository {
	return &returnRepository{db: db}
}

func (r *returnRepository) Create(ctx context.Context, ret *returns.Return) error {
	model := toReturnModel(ret)
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.WrapDB(err, "创建退货申请失败")
	}
	ret.ID = model.ID
	ret.CreatedAt = model.CreatedAt
	ret.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *returnRepository) FindByID(ctx context.Context, id uint) (*returns.Return, error) {
	return r.first(getDB(ctx, r.db), id)
}

func (r *returnRepository) LockByID(ctx context.Context, id uint) (*returns.Return, error) {
	return r.first(getDB(ctx, r.db).Clauses(forUpdate), id)
}

func (r *returnRepository) first(db *gorm.DB, id uint) (*returns.Return, error) {
	var model ReturnModel
	if err := db.First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, returns.ErrReturnNotFound
		}
		return nil, apperrors.WrapDB(err, "查询退货申请失败")
	}
	return toReturnEntity(&model), nil
}

// UpdateStatus 进入 restocked 时带 status <> 'restocked' 条件，保证只入库一次
func (r *returnRepository) UpdateStatus(ctx context.Context, ret *returns.Return) error {
	query := getDB(ctx, r.db).Model(&ReturnModel{}).Where("id = ?", ret.ID)
	values := map[string]interface{}{
		"status":     string(ret.Status),
		"updated_at": ret.UpdatedAt,
	}
	if ret.Status == returns.StatusRestocked {
		query = query.Where("status <> ?", string(returns.StatusRestocked))
		values["restocked_at"] = ret.RestockedAt
	}

	result := query.Updates(values)
	if result.Error != nil {
		return apperrors.WrapDB(result.Error, "更新退货状态失败")
	}
	if result.RowsAffected == 0 {
		if ret.Status == returns.StatusRestocked {
			return returns.ErrAlreadyRestocked
		}
		return returns.ErrReturnNotFound
	}
	return nil
}

func (r *returnRepository) SumReturnedQuantity(ctx context.Context, orderID, productID uint) (int, error) {
	var sum int64
	err := getDB(ctx, r.db).Model(&ReturnModel{}).
		Where("order_id = ? AND product_id = ? AND status <> ?", orderID, productID, string(returns.StatusRejected)).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, apperrors.WrapDB(err, "汇总退货数量失败")
	}
	return int(sum), nil
}

func (r *returnRepository) List(ctx context.Context, f returns.ListFilter) ([]*returns.Return, int64, error) {
	query := getDB(ctx, r.db).Model(&ReturnModel{})
	if f.UserID != nil {
		query = query.Where("user_id = ?", *f.UserID)
	}
	if f.OrderID != nil {
		query = query.Where("order_id = ?", *f.OrderID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", string(f.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.WrapDB(err, "查询退货总数失败")
	}

	limit, offset := paginate(f.Page, f.PageSize)
	var models []ReturnModel
	if err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&models).Error; err != nil {
		return nil, 0, apperrors.WrapDB(err, "查询退货列表失败")
	}
	out := make([]*returns.Return, len(models))
	for i := range models {
		out[i] = toReturnEntity(&models[i])
	}
	return out, total, nil
}

func toReturnModel(r *returns.Return) *ReturnModel {
	return &ReturnModel{
		ID:          r.ID,
		OrderID:     r.OrderID,
		UserID:      r.UserID,
		ProductID:   r.ProductID,
		Quantity:    r.Quantity,
		Reason:      r.Reason,
		Status:      string(r.Status),
		RestockedAt: r.RestockedAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toReturnEntity(m *ReturnModel) *returns.Return {
	return &returns.Return{
		ID:          m.ID,
		OrderID:     m.OrderID,
		UserID:      m.UserID,
		ProductID:   m.ProductID,
		Quantity:    m.Quantity,
		Reason:      m.Reason,
		Status:      returns.Status(m.Status),
		RestockedAt: m.RestockedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
