package catalog

import (
	"time"

	"github.com/xiebiao/shoptrack/internal/domain/catalog"
)

// =========================================
// 应用层DTO
// =========================================

// ProductInfo 商品信息，也用作审计快照
type ProductInfo struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        string    `json:"price"`
	GSTRate      string    `json:"gst_rate"`
	PriceWithTax string    `json:"price_with_tax"`
	Stock        int       `json:"stock"`
	InitialStock int       `json:"initial_stock"`
	CategoryID   *uint     `json:"category_id,omitempty"`
	SupplierID   *uint     `json:"supplier_id,omitempty"`
	ReorderPoint int       `json:"reorder_point"`
	LeadTimeDays int       `json:"lead_time_days"`
	NeedsReorder bool      `json:"needs_reorder"`
	ImageURL     string    `json:"image_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CategoryInfo 分类信息
type CategoryInfo struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SupplierInfo 供应商信息
type SupplierInfo struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

// ToProductInfo 实体转DTO
func ToProductInfo(p *catalog.Product) *ProductInfo {
	return &ProductInfo{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price.StringFixed(2),
		GSTRate:      p.GSTRate.StringFixed(2),
		PriceWithTax: p.PriceWithTax().StringFixed(2),
		Stock:        p.Stock,
		InitialStock: p.InitialStock,
		CategoryID:   p.CategoryID,
		SupplierID:   p.SupplierID,
		ReorderPoint: p.ReorderPoint,
		LeadTimeDays: p.LeadTimeDays,
		NeedsReorder: p.NeedsReorder(),
		ImageURL:     p.ImageURL,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toCategoryInfo(c *catalog.Category) *CategoryInfo {
	return &CategoryInfo{ID: c.ID, Name: c.Name, Description: c.Description}
}

func toSupplierInfo(s *catalog.Supplier) *SupplierInfo {
	return &SupplierInfo{ID: s.ID, Name: s.Name, ContactEmail: s.ContactEmail, Phone: s.Phone}
}
