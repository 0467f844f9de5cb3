package gormstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/shoptrack/internal/domain/order"
	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
)

// orderRepository 订单仓储
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// Create 创建订单，GORM会级联插入明细
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	model := toOrderModel(o)
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.WrapDB(err, "创建订单失败")
	}

	o.ID = model.ID
	o.CreatedAt = model.CreatedAt
	o.UpdatedAt = model.UpdatedAt
	for i := range o.Lines {
		o.Lines[i].ID = model.Lines[i].ID
		o.Lines[i].OrderID = model.ID
	}
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	return r.find(getDB(ctx, r.db), id)
}

func (r *orderRepository) LockByID(ctx context.Context, id uint) (*order.Order, error) {
	return r.find(getDB(ctx, r.db).Clauses(forUpdate), id)
}

func (r *orderRepository) find(db *gorm.DB, id uint) (*order.Order, error) {
	var model OrderModel
	if err := db.Preload("Lines").First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.WrapDB(err, "查询订单失败")
	}
	return toOrderEntity(&model), nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, o *order.Order) error {
	result := getDB(ctx, r.db).Model(&OrderModel{}).Where("id = ?", o.ID).
		Updates(map[string]interface{}{"status": string(o.Status), "updated_at": o.UpdatedAt})
	if result.Error != nil {
		return apperrors.WrapDB(result.Error, "更新订单状态失败")
	}
	if result.RowsAffected == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) List(ctx context.Context, f order.ListFilter) ([]*order.Order, int64, error) {
	query := getDB(ctx, r.db).Model(&OrderModel{})
	if f.UserID != nil {
		query = query.Where("user_id = ?", *f.UserID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", string(f.Status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.WrapDB(err, "查询订单总数失败")
	}

	limit, offset := paginate(f.Page, f.PageSize)
	var models []OrderModel
	err := query.Preload("Lines").Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.WrapDB(err, "查询订单列表失败")
	}

	out := make([]*order.Order, len(models))
	for i := range models {
		out[i] = toOrderEntity(&models[i])
	}
	return out, total, nil
}

func toOrderModel(o *order.Order) *OrderModel {
	lines := make([]OrderLineModel, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = OrderLineModel{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			GSTRate:     l.GSTRate,
		}
	}
	return &OrderModel{
		ID:          o.ID,
		OrderNo:     o.OrderNo,
		UserID:      o.UserID,
		Subtotal:    o.Subtotal,
		Tax:         o.Tax,
		Total:       o.Total,
		Status:      string(o.Status),
		PaymentMode: string(o.PaymentMode),
		Notes:       o.Notes,
		Lines:       lines,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func toOrderEntity(m *OrderModel) *order.Order {
	lines := make([]order.Line, len(m.Lines))
	for i, l := range m.Lines {
		lines[i] = order.Line{
			ID:          l.ID,
			OrderID:     l.OrderID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			GSTRate:     l.GSTRate,
		}
	}
	return &order.Order{
		ID:          m.ID,
		OrderNo:     m.OrderNo,
		UserID:      m.UserID,
		Subtotal:    m.Subtotal,
		Tax:         m.Tax,
		Total:       m.Total,
		Status:      order.Status(m.Status),
		PaymentMode: order.PaymentMode(m.PaymentMode),
		Notes:       m.Notes,
		Lines:       lines,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// paymentRepository 支付记录仓储
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建支付记录仓储
func NewPaymentRepository(db *gorm.DB) order.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, p *order.Payment) error {
	model := &PaymentModel{
		OrderID: p.OrderID,
		Amount:  p.Amount,
		Mode:    string(p.Mode),
		Status:  string(p.Status),
	}
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.WrapDB(err, "创建支付记录失败")
	}
	p.ID = model.ID
	p.CreatedAt = model.CreatedAt
	p.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *paymentRepository) FindByID(ctx context.Context, id uint) (*order.Payment, error) {
	return r.first(getDB(ctx, r.db).Where("id = ?", id))
}

func (r *paymentRepository) LockByID(ctx context.Context, id uint) (*order.Payment, error) {
	return r.first(getDB(ctx, r.db).Clauses(forUpdate).Where("id = ?", id))
}

func (r *paymentRepository) FindByOrderID(ctx context.Context, orderID uint) (*order.Payment, error) {
	return r.first(getDB(ctx, r.db).Where("order_id = ?", orderID))
}

func (r *paymentRepository) first(query *gorm.DB) (*order.Payment, error) {
	var m PaymentModel
	if err := query.First(&m).Error; err != nil {
		if isNotFound(err) {
			return nil, order.ErrPaymentNotFound
		}
		return nil, apperrors.WrapDB(err, "查询支付记录失败")
	}
	return &order.Payment{
		ID:        m.ID,
		OrderID:   m.OrderID,
		Amount:    m.Amount,
		Mode:      order.PaymentMode(m.Mode),
		Status:    order.PaymentStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, p *order.Payment) error {
	result := getDB(ctx, r.db).Model(&PaymentModel{}).Where("id = ?", p.ID).
		Updates(map[string]interface{}{"status": string(p.Status), "updated_at": p.UpdatedAt})
	if result.Error != nil {
		return apperrors.WrapDB(result.Error, "更新支付状态失败")
	}
	if result.RowsAffected == 0 {
		return order.ErrPaymentNotFound
	}
	return nil
}
