// Package catalog 商品目录用例：商品、分类、供应商的增删改查和批量折扣
package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/shoptrack/internal/domain/access"
	"github.com/xiebiao/shoptrack/internal/domain/audit"
	"github.com/xiebiao/shoptrack/internal/domain/catalog"
	"github.com/xiebiao/shoptrack/internal/domain/inventory"
)

var productResource = access.Resource{Kind: access.KindProduct}

// ProductUseCase 商品管理用例
// 库存列不在这里修改：创建时的库存成为 initial_stock，之后只能走 inventory.Service
type ProductUseCase struct {
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
	suppliers  catalog.SupplierRepository
	audit      *audit.Recorder
	tx         inventory.Transactor
	gate       *access.Gate
}

// NewProductUseCase 创建商品管理用例
func NewProductUseCase(
	products catalog.ProductRepository,
	categories catalog.CategoryRepository,
	suppliers catalog.SupplierRepository,
	recorder *audit.Recorder,
	tx inventory.Transactor,
	gate *access.Gate,
) *ProductUseCase {
	return &ProductUseCase{
		products:   products,
		categories: categories,
		suppliers:  suppliers,
		audit:      recorder,
		tx:         tx,
		gate:       gate,
	}
}

// CreateProductRequest 创建商品请求
type CreateProductRequest struct {
	Name         string
	Description  string
	Price        decimal.Decimal
	GSTRate      decimal.Decimal
	InitialStock int
	CategoryID   *uint
	SupplierID   *uint
	ReorderPoint int
	LeadTimeDays int
	ImageURL     string
}

// UpdateProductRequest 修改商品请求，nil 字段不修改
type UpdateProductRequest struct {
	ID            uint
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	GSTRate       *decimal.Decimal
	CategoryID    *uint
	ClearCategory bool
	SupplierID    *uint
	ClearSupplier bool
	ReorderPoint  *int
	LeadTimeDays  *int
	ImageURL      *string
}

// ListProductsRequest 商品列表请求
type ListProductsRequest struct {
	Page       int
	PageSize   int
	Keyword    string
	CategoryID *uint
	SupplierID *uint
	SortBy     string
}

// ListProductsResponse 商品列表响应
type ListProductsResponse struct {
	Products []*ProductInfo `json:"products"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// Create 创建商品并写INSERT审计
func (uc *ProductUseCase) Create(ctx context.Context, actor access.Actor, req CreateProductRequest) (*ProductInfo, error) {
	if err := uc.gate.Require(actor, access.ActionCatalogWrite, productResource); err != nil {
		return nil, err
	}

	p := catalog.NewProduct(req.Name, req.Description, req.Price, req.GSTRate, req.InitialStock)
	p.CategoryID = req.CategoryID
	p.SupplierID = req.SupplierID
	p.ReorderPoint = req.ReorderPoint
	p.LeadTimeDays = req.LeadTimeDays
	p.ImageURL = req.ImageURL
	if err := p.Validate(); err != nil {
		return nil, err
	}

	err := uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		if err := uc.checkRefs(txCtx, p.CategoryID, p.SupplierID); err != nil {
			return err
		}
		if err := uc.products.Create(txCtx, p); err != nil {
			return err
		}
		return uc.audit.Record(txCtx, actor.Ref(), audit.ActionInsert, audit.TableProducts, p.ID, nil, ToProductInfo(p))
	})
	if err != nil {
		return nil, err
	}
	return ToProductInfo(p), nil
}

// Update 修改商品元数据并写UPDATE审计
func (uc *ProductUseCase) Update(ctx context.Context, actor access.Actor, req UpdateProductRequest) (*ProductInfo, error) {
	if err := uc.gate.Require(actor, access.ActionCatalogWrite, productResource); err != nil {
		return nil, err
	}

	var updated *catalog.Product
	err := uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		p, err := uc.products.FindByID(txCtx, req.ID)
		if err != nil {
			return err
		}
		before := ToProductInfo(p)

		applyUpdate(p, req)
		if err := p.Validate(); err != nil {
			return err
		}
		if err := uc.checkRefs(txCtx, p.CategoryID, p.SupplierID); err != nil {
			return err
		}
		if err := uc.products.Update(txCtx, p); err != nil {
			return err
		}
		updated = p
		return uc.audit.Record(txCtx, actor.Ref(), audit.ActionUpdate, audit.TableProducts, p.ID, before, ToProductInfo(p))
	})
	if err != nil {
		return nil, err
	}
	return ToProductInfo(updated), nil
}

// Delete 软删除商品并写DELETE审计；库存流水保留
func (uc *ProductUseCase) Delete(ctx context.Context, actor access.Actor, id uint) error {
	if err := uc.gate.Require(actor, access.ActionCatalogWrite, productResource); err != nil {
		return err
	}

	return uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		p, err := uc.products.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := uc.products.Delete(txCtx, id); err != nil {
			return err
		}
		return uc.audit.Record(txCtx, actor.Ref(), audit.ActionDelete, audit.TableProducts, id, ToProductInfo(p), nil)
	})
}

// Get 商品详情
func (uc *ProductUseCase) Get(ctx context.Context, actor access.Actor, id uint) (*ProductInfo, error) {
	if err := uc.gate.Require(actor, access.ActionCatalogRead, productResource); err != nil {
		return nil, err
	}
	p, err := uc.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToProductInfo(p), nil
}

// List 商品列表
func (uc *ProductUseCase) List(ctx context.Context, actor access.Actor, req ListProductsRequest) (*ListProductsResponse, error) {
	if err := uc.gate.Require(actor, access.ActionCatalogRead, productResource); err != nil {
		return nil, err
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}

	products, total, err := uc.products.List(ctx, catalog.ListParams{
		Page:       req.Page,
		PageSize:   req.PageSize,
		Keyword:    req.Keyword,
		CategoryID: req.CategoryID,
		SupplierID: req.SupplierID,
		SortBy:     req.SortBy,
	})
	if err != nil {
		return nil, err
	}

	infos := make([]*ProductInfo, len(products))
	for i, p := range products {
		infos[i] = ToProductInfo(p)
	}
	return &ListProductsResponse{Products: infos, Total: total, Page: req.Page, PageSize: req.PageSize}, nil
}

func (uc *ProductUseCase) checkRefs(ctx context.Context, categoryID, supplierID *uint) error {
	if categoryID != nil {
		if _, err := uc.categories.FindByID(ctx, *categoryID); err != nil {
			return err
		}
	}
	if supplierID != nil {
		if _, err := uc.suppliers.FindByID(ctx, *supplierID); err != nil {
			return err
		}
	}
	return nil
}

func applyUpdate(p *catalog.Product, req UpdateProductRequest) {
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = req.Price.Round(2)
	}
	if req.GSTRate != nil {
		p.GSTRate = *req.GSTRate
	}
	switch {
	case req.ClearCategory:
		p.CategoryID = nil
	case req.CategoryID != nil:
		p.CategoryID = req.CategoryID
	}
	switch {
	case req.ClearSupplier:
		p.SupplierID = nil
	case req.SupplierID != nil:
		p.SupplierID = req.SupplierID
	}
	if req.ReorderPoint != nil {
		p.ReorderPoint = *req.ReorderPoint
	}
	if req.LeadTimeDays != nil {
		p.LeadTimeDays = *req.LeadTimeDays
	}
	if req.ImageURL != nil {
		p.ImageURL = *req.ImageURL
	}
	p.UpdatedAt = time.Now()
}
