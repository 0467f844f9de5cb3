package gormstore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/xiebiao/shoptrack/internal/domain/cart"
	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
)

type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepository{db: db}
}

// Find 加行锁读取，同一用户对同一商品的并发修改串行化
func (r *cartRepository) Find(ctx context.Context, userID, productID uint) (*cart.Line, error) {
	var model CartItemModel
	err := getDB(ctx, r.db).Clauses(forUpdate).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&model).Error
	if err != nil {
		if isNotFound(err) {
			return nil, cart.ErrLineNotFound
		}
		return nil, apperrors.WrapDB(err, "查询购物车失败")
	}
	return toCartLine(&model), nil
}

func (r *cartRepository) Create(ctx context.Context, l *cart.Line) error {
	model := &CartItemModel{UserID: l.UserID, ProductID: l.ProductID, Quantity: l.Quantity}
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.New(apperrors.ErrCodeDuplicateEntry, "购物车中已有该商品")
		}
		return apperrors.WrapDB(err, "加入购物车失败")
	}
	l.ID = model.ID
	l.CreatedAt = model.CreatedAt
	l.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, id uint, qty int) error {
	result := getDB(ctx, r.db).Model(&CartItemModel{ID: id}).Updates(map[string]interface{}{
		"quantity":   qty,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return apperrors.WrapDB(result.Error, "更新购物车失败")
	}
	if result.RowsAffected == 0 {
		return cart.ErrLineNotFound
	}
	return nil
}

func (r *cartRepository) Delete(ctx context.Context, id uint) error {
	result := getDB(ctx, r.db).Delete(&CartItemModel{}, id)
	if result.Error != nil {
		return apperrors.WrapDB(result.Error, "删除购物车条目失败")
	}
	if result.RowsAffected == 0 {
		return cart.ErrLineNotFound
	}
	return nil
}

func (r *cartRepository) ListByUser(ctx context.Context, userID uint) ([]*cart.Line, error) {
	var models []CartItemModel
	if err := getDB(ctx, r.db).Where("user_id = ?", userID).Order("id").Find(&models).Error; err != nil {
		return nil, apperrors.WrapDB(err, "查询购物车失败")
	}
	return toCartLines(models), nil
}

func (r *cartRepository) LockByUser(ctx context.Context, userID uint) ([]*cart.Line, error) {
	var models []CartItemModel
	err := getDB(ctx, r.db).Clauses(forUpdate).Where("user_id = ?", userID).Order("id").Find(&models).Error
	if err != nil {
		return nil, apperrors.WrapDB(err, "查询购物车失败")
	}
	return toCartLines(models), nil
}

func (r *cartRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	result := getDB(ctx, r.db).Where("user_id = ?", userID).Delete(&CartItemModel{})
	if result.Error != nil {
		return 0, apperrors.WrapDB(result.Error, "清空购物车失败")
	}
	return result.RowsAffected, nil
}

func (r *cartRepository) ListStale(ctx context.Context, before time.Time, limit int) ([]*cart.Line, error) {
	if limit <= 0 {
		limit = 100
	}
	var models []CartItemModel
	err := getDB(ctx, r.db).Where("updated_at < ?", before).Order("updated_at").Limit(limit).Find(&models).Error
	if err != nil {
		return nil, apperrors.WrapDB(err, "查询过期购物车失败")
	}
	return toCartLines(models), nil
}

func toCartLine(m *CartItemModel) *cart.Line {
	return &cart.Line{
		ID:        m.ID,
		UserID:    m.UserID,
		ProductID: m.ProductID,
		Quantity:  m.Quantity,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toCartLines(models []CartItemModel) []*cart.Line {
	out := make([]*cart.Line, len(models))
	for i := range models {
		out[i] = toCartLine(&models[i])
	}
	return out
}
