package catalog

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Product 商品
// Stock 是权威库存计数，只能经由 inventory.Service 修改；
// InitialStock 在创建时确定，之后不再变化，用于对账：
//
//	Stock == InitialStock + Σ inventory_log.delta
type Product struct {
	ID           uint
	Name         string
	Description  string
	Price        decimal.Decimal // 单价，两位小数
	GSTRate      decimal.Decimal // 税率百分比 0-100
	Stock        int
	InitialStock int
	CategoryID   *uint
	SupplierID   *uint
	ReorderPoint int
	LeadTimeDays int
	ImageURL     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewProduct 创建商品，Stock 初始化为 InitialStock
func NewProduct(name, description string, price, gstRate decimal.Decimal, initialStock int) *Product {
	now := time.Now()
	return &Product{
		Name:         strings.TrimSpace(name),
		Description:  description,
		Price:        price.Round(2),
		GSTRate:      gstRate,
		Stock:        initialStock,
		InitialStock: initialStock,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate 校验商品元数据
func (p *Product) Validate() error {
	if p.Name == "" || utf8.RuneCountInString(p.Name) > 200 {
		return ErrInvalidName
	}
	if p.Price.IsNegative() {
		return ErrInvalidPrice
	}
	if p.GSTRate.IsNegative() || p.GSTRate.GreaterThan(hundred) {
		return ErrInvalidGSTRate
	}
	if p.InitialStock < 0 {
		return ErrInvalidInitialStock
	}
	if p.ReorderPoint < 0 {
		return ErrInvalidReorderPoint
	}
	if p.LeadTimeDays < 0 {
		return ErrInvalidLeadTime
	}
	if p.ImageURL != "" {
		u, err := url.ParseRequestURI(p.ImageURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ErrInvalidImageURL
		}
	}
	return nil
}

// ApplyDiscount 按百分比降价，只改价格不碰库存
func (p *Product) ApplyDiscount(percent decimal.Decimal) error {
	if !percent.IsPositive() || percent.GreaterThanOrEqual(hundred) {
		return ErrInvalidDiscount
	}
	factor := hundred.Sub(percent).Div(hundred)
	p.Price = p.Price.Mul(factor).Round(2)
	p.UpdatedAt = time.Now()
	return nil
}

// PriceWithTax 含税单价
func (p *Product) PriceWithTax() decimal.Decimal {
	return p.Price.Add(p.Price.Mul(p.GSTRate).Div(hundred)).Round(2)
}

// NeedsReorder 库存是否已到补货点
func (p *Product) NeedsReorder() bool {
	return p.Stock <= p.ReorderPoint
}
