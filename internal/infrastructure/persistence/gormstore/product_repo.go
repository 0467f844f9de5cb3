package gormstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/shoptrack/internal/domain/catalog"
	"github.com/xiebiao/shoptrack/internal/domain/inventory"
	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
)

// productRepository 商品元数据仓储，不写 stock 列
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) catalog.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, p *catalog.Product) error {
	model := toProductModel(p)
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.WrapDB(err, "创建商品失败")
	}
	p.ID = model.ID
	p.CreatedAt = model.CreatedAt
	p.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id uint) (*catalog.Product, error) {
	var model ProductModel
	if err := getDB(ctx, r.db).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, apperrors.WrapDB(err, "查询商品失败")
	}
	return toProductEntity(&model), nil
}

func (r *productRepository) FindByIDs(ctx context.Context, ids []uint) ([]*catalog.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var models []ProductModel
	if err := getDB(ctx, r.db).Where("id IN ?", ids).Order("id").Find(&models).Error; err != nil {
		return nil, apperrors.WrapDB(err, "批量查询商品失败")
	}
	return toProductEntities(models), nil
}

// Update 只更新元数据列
func (r *productRepository) Update(ctx context.Context, p *catalog.Product) error {
	result := getDB(ctx, r.db).Model(&ProductModel{ID: p.ID}).
		Select("name", "description", "price", "gst_rate", "category_id", "supplier_id",
			"reorder_point", "lead_time_days", "image_url", "updated_at").
		Updates(toProductModel(p))
	if result.Error != nil {
		return apperrors.WrapDB(result.Error, "更新商品失败")
	}
	if result.RowsAffected == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

// Delete 软删除
func (r *productRepository) Delete(ctx context.Context, id uint) error {
	result := getDB(ctx, r.db).Delete(&ProductModel{}, id)
	if result.Error != nil {
		return apperrors.WrapDB(result.Error, "删除商品失败")
	}
	if result.RowsAffected == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

func (r *productRepository) List(ctx context.Context, params catalog.ListParams) ([]*catalog.Product, int64, error) {
	var (
		models []ProductModel
		total  int64
	)

	query := getDB(ctx, r.db).Model(&ProductModel{})
	if params.Keyword != "" {
		keyword := "%" + params.Keyword + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", keyword, keyword)
	}
	if params.CategoryID != nil {
		query = query.Where("category_id = ?", *params.CategoryID)
	}
	if params.SupplierID != nil {
		query = query.Where("supplier_id = ?", *params.SupplierID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.WrapDB(err, "查询商品总数失败")
	}

	switch params.SortBy {
	case "price_asc":
		query = query.Order("price ASC")
	case "price_desc":
		query = query.Order("price DESC")
	case "stock_asc":
		query = query.Order("stock ASC")
	default:
		query = query.Order("created_at DESC").Order("id DESC")
	}

	limit, offset := paginate(params.Page, params.PageSize)
	if err := query.Limit(limit).Offset(offset).Find(&models).Error; err != nil {
		return nil, 0, apperrors.WrapDB(err, "查询商品列表失败")
	}
	return toProductEntities(models), total, nil
}

func (r *productRepository) ListByCategory(ctx context.Context, categoryID uint) ([]*catalog.Product, error) {
	var models []ProductModel
	if err := getDB(ctx, r.db).Where("category_id = ?", categoryID).Order("id").Find(&models).Error; err != nil {
		return nil, apperrors.WrapDB(err, "按分类查询商品失败")
	}
	return toProductEntities(models), nil
}

func (r *productRepository) ListAtOrBelowReorderPoint(ctx context.Context) ([]*catalog.Product, error) {
	var models []ProductModel
	err := getDB(ctx, r.db).Where("stock <= reorder_point").Order("stock - reorder_point ASC").Order("id").Find(&models).Error
	if err != nil {
		return nil, apperrors.WrapDB(err, "查询待补货商品失败")
	}
	return toProductEntities(models), nil
}

// stockRepository 库存计数，和商品共用 products 表
type stockRepository struct {
	db *gorm.DB
}

// NewStockRepository 创建库存计数仓储
func NewStockRepository(db *gorm.DB) inventory.StockRepository {
	return &stockRepository{db: db}
}

func (r *stockRepository) LockForUpdate(ctx context.Context, productID uint) (*inventory.StockRow, error) {
	var model ProductModel
	err := getDB(ctx, r.db).Clauses(forUpdate).
		Select("id", "name", "stock", "initial_stock", "reorder_point").
		First(&model, productID).Error
	if err != nil {
		if isNotFound(err) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, apperrors.WrapDB(err, "锁定商品库存失败")
	}
	return toStockRow(&model), nil
}

// AddStock stock = stock + delta，不更新 updated_at
func (r *stockRepository) AddStock(ctx context.Context, productID uint, delta int) error {
	result := getDB(ctx, r.db).Model(&ProductModel{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	if result.Error != nil {
		return apperrors.WrapDB(result.Error, "更新库存失败")
	}
	if result.RowsAffected == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

func (r *stockRepository) GetStock(ctx context.Context, productID uint) (*inventory.StockRow, error) {
	var model ProductModel
	err := getDB(ctx, r.db).
		Select("id", "name", "stock", "initial_stock", "reorder_point").
		First(&model, productID).Error
	if err != nil {
		if isNotFound(err) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, apperrors.WrapDB(err, "查询库存失败")
	}
	return toStockRow(&model), nil
}

func toStockRow(m *ProductModel) *inventory.StockRow {
	return &inventory.StockRow{
		ProductID:    m.ID,
		Name:         m.Name,
		Stock:        m.Stock,
		InitialStock: m.InitialStock,
		ReorderPoint: m.ReorderPoint,
	}
}

func toProductModel(p *catalog.Product) *ProductModel {
	return &ProductModel{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		GSTRate:      p.GSTRate,
		Stock:        p.Stock,
		InitialStock: p.InitialStock,
		CategoryID:   p.CategoryID,
		SupplierID:   p.SupplierID,
		ReorderPoint: p.ReorderPoint,
		LeadTimeDays: p.LeadTimeDays,
		ImageURL:     p.ImageURL,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toProductEntity(m *ProductModel) *catalog.Product {
	return &catalog.Product{
		ID:           m.ID,
		Name:         m.Name,
		Description:  m.Description,
		Price:        m.Price,
		GSTRate:      m.GSTRate,
		Stock:        m.Stock,
		InitialStock: m.InitialStock,
		CategoryID:   m.CategoryID,
		SupplierID:   m.SupplierID,
		ReorderPoint: m.ReorderPoint,
		LeadTimeDays: m.LeadTimeDays,
		ImageURL:     m.ImageURL,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toProductEntities(models []ProductModel) []*catalog.Product {
	out := make([]*catalog.Product, len(models))
	for i := range models {
		out[i] = toProductEntity(&models[i])
	}
	return out
}
