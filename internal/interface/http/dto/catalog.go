package dto

import "github.com/shopspring/decimal"

// CreateProductRequest 创建商品
// 价格用字符串或数字都可以，按十进制精确解析
type CreateProductRequest struct {
	Name         string          `json:"name" binding:"required,max=200" example:"机械键盘"`
	Description  string          `json:"description" binding:"max=5000" example:"87键 茶轴"`
	Price        decimal.Decimal `json:"price" swaggertype:"string" example:"399.00"`
	GSTRate      decimal.Decimal `json:"gst_rate" swaggertype:"string" example:"18"`
	InitialStock int             `json:"initial_stock" binding:"min=0" example:"100"`
	CategoryID   *uint           `json:"category_id" example:"1"`
	SupplierID   *uint           `json:"supplier_id" example:"1"`
	ReorderPoint int             `json:"reorder_point" binding:"min=0" example:"10"`
	LeadTimeDays int             `json:"lead_time_days" binding:"min=0" example:"7"`
	ImageURL     string          `json:"image_url" binding:"omitempty,url,max=500" example:"https://example.com/kb.jpg"`
}

// UpdateProductRequest 修改商品，未出现的字段不修改
// 库存不能在这里改，走 /inventory/adjust
type UpdateProductRequest struct {
	Name          *string          `json:"name" binding:"omitempty,max=200"`
	Description   *string          `json:"description" binding:"omitempty,max=5000"`
	Price         *decimal.Decimal `json:"price" swaggertype:"string"`
	GSTRate       *decimal.Decimal `json:"gst_rate" swaggertype:"string"`
	CategoryID    *uint            `json:"category_id"`
	ClearCategory bool             `json:"clear_category"`
	SupplierID    *uint            `json:"supplier_id"`
	ClearSupplier bool             `json:"clear_supplier"`
	ReorderPoint  *int             `json:"reorder_point" binding:"omitempty,min=0"`
	LeadTimeDays  *int             `json:"lead_time_days" binding:"omitempty,min=0"`
	ImageURL      *string          `json:"image_url" binding:"omitempty,max=500"`
}

// ListProductsRequest 商品列表查询参数
type ListProductsRequest struct {
	Page       int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
	Keyword    string `form:"keyword" binding:"omitempty,max=100" example:"键盘"`
	CategoryID *uint  `form:"category_id"`
	SupplierID *uint  `form:"supplier_id"`
	SortBy     string `form:"sort_by" binding:"omitempty,oneof=price_asc price_desc stock_asc created_at_desc" example:"created_at_desc"`
}

// CategoryRequest 创建/修改分类
type CategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100" example:"外设"`
	Description string `json:"description" binding:"max=500"`
}

// SupplierRequest 创建/修改供应商
type SupplierRequest struct {
	Name         string `json:"name" binding:"required,max=200" example:"深圳某某电子"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email" example:"sales@example.com"`
	Phone        string `json:"phone" binding:"max=50"`
}

// BulkDiscountRequest 批量折扣，product_ids 和 category_id 二选一
type BulkDiscountRequest struct {
	ProductIDs []uint          `json:"product_ids"`
	CategoryID *uint           `json:"category_id"`
	Percent    decimal.Decimal `json:"percent" swaggertype:"string" example:"10"`
}
