package catalog

import (
	"context"
)

// ProductRepository 商品仓储
// Update 只写元数据列，库存列由 inventory.StockRepository 负责
type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id uint) (*Product, error)
	FindByIDs(ctx context.Context, ids []uint) ([]*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, params ListParams) ([]*Product, int64, error)
	ListByCategory(ctx context.Context, categoryID uint) ([]*Product, error)
	ListAtOrBelowReorderPoint(ctx context.Context) ([]*Product, error)
}

// ListParams 商品列表查询参数
type ListParams struct {
	Page       int
	PageSize   int
	Keyword    string // 匹配名称和描述
	CategoryID *uint
	SupplierID *uint
	SortBy     string // price_asc | price_desc | stock_asc | created_at_desc
}

// CategoryRepository 分类仓储
type CategoryRepository interface {
	Create(ctx context.Context, c *Category) error
	FindByID(ctx context.Context, id uint) (*Category, error)
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]*Category, error)
}

// SupplierRepository 供应商仓储
type SupplierRepository interface {
	Create(ctx context.Context, s *Supplier) error
	FindByID(ctx context.Context, id uint) (*Supplier, error)
	Update(ctx context.Context, s *Supplier) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]*Supplier, error)
}
