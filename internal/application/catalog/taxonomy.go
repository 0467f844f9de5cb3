package catalog

import (
	"context"

	"github.com/xiebiao/shoptrack/internal/domain/access"
	"github.com/xiebiao/shoptrack/internal/domain/audit"
	"github.com/xiebiao/shoptrack/internal/domain/catalog"
	"github.com/xiebiao/shoptrack/internal/domain/inventory"
)

// TaxonomyUseCase 分类和供应商管理
type TaxonomyUseCase struct {
	categories catalog.CategoryRepository
	suppliers  catalog.SupplierRepository
	audit      *audit.Recorder
	tx         inventory.Transactor
	gate       *access.Gate
}

// NewTaxonomyUseCase 创建分类/供应商用例
func NewTaxonomyUseCase(
	categories catalog.CategoryRepository,
	suppliers catalog.SupplierRepository,
	recorder *audit.Recorder,
	tx inventory.Transactor,
	gate *access.Gate,
) *TaxonomyUseCase {
	return &TaxonomyUseCase{categories: categories, suppliers: suppliers, audit: recorder, tx: tx, gate: gate}
}

// CategoryRequest 创建/修改分类
type CategoryRequest struct {
	ID          uint // 修改时必填
	Name        string
	Description string
}

// SupplierRequest 创建/修改供应商
type SupplierRequest struct {
	ID           uint
	Name         string
	ContactEmail string
	Phone        string
}

func (uc *TaxonomyUseCase) CreateCategory(ctx context.Context, actor access.Actor, req CategoryRequest) (*CategoryInfo, error) {
	if err := uc.gate.Require(actor, access.ActionCatalogWrite, access.Resource{Kind: access.KindCategory}); err != nil {
		return nil, err
	}
	c := &catalog.Category{Name: req.Name, Description: req.Description}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	err := uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		if err := uc.categories.Create(txCtx, c); err != nil {
			return err
		}
		return uc.audit.Record(txCtx, actor.Ref(), audit.ActionInsert, audit.TableCategories, c.ID, nil, toCategoryInfo(c))
	})
	if err != nil {
		return nil, err
	}
	return toCategoryInfo(c), nil
}

func (uc *TaxonomyUseCase) UpdateCategory(ctx context.Context, actor access.Actor, req CategoryRequest) (*CategoryInfo, error) {
	if err := uc.gate.Require(actor, access.ActionCatalogWrite, access.Resource{Kind: access.KindCategory}); err != nil {
		return nil, err
	}

	var out *CategoryInfo
	err := uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		c, err := uc.categories.FindByID(txCtx, req.ID)
		if err != nil {
			return err
		}
		before := toCategoryInfo(c)
		c.Name = req.Name
		c.Description = req.Description
		if err := c.Validate(); err != nil {
			return err
		}
		if err := uc.categories.Update(txCtx, c); err != nil {
			return err
		}
		out = toCategoryInfo(c)
		return uc.audit.Record(txCtx, actor.Ref(), audit.ActionUpdate, audit.TableCategories, c.ID, before, out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteCategory 删除分类，商品保留但不再归属该分类
func (uc *TaxonomyUseCase) DeleteCategory(ctx context.Context, actor access.Actor, id uint) error {
	if err := uc.gate.Require(actor, access.ActionCatalogWrite, access.Resource{Kind: access.KindCategory}); err != nil {
		return err
	}
	return uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		c, err := uc.categories.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := uc.categories.Delete(txCtx, id); err != nil {
			return err
		}
		return uc.audit.Record(txCtx, actor.Ref(), audit.ActionDelete, audit.TableCategories, id, toCategoryInfo(c), nil)
	})
}

func (uc *TaxonomyUseCase) ListCategories(ctx context.Context, actor access.Actor) ([]*CategoryInfo, error) {
	if err := uc.gate.Require(actor, access.ActionCatalogRead, access.Resource{Kind: access.KindCategory}); err != nil {
		return nil, err
	}
	categories, err := uc.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*CategoryInfo, len(categories))
	for i, c := range categories {
		out[i] = toCategoryInfo(c)
	}
	return out, nil
}

func (uc *TaxonomyUseCase) CreateSupplier(ctx context.Context, actor access.Actor, req SupplierRequest) (*SupplierInfo, error) {
	if err := uc.gate.Require(actor, access.ActionCatalogWrite, access.Resource{Kind: access.KindSupplier}); err != nil {
		return nil, err
	}
	s := &catalog.Supplier{Name: req.Name, ContactEmail: req.ContactEmail, Phone: req.Phone}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	err := uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		if err := uc.suppliers.Create(txCtx, s); err != nil {
			return err
		}
		return uc.audit.Record(txCtx, actor.Ref(), audit.ActionInsert, audit.TableSuppliers, s.ID, nil, toSupplierInfo(s))
	})
	if err != nil {
		return nil, err
	}
	return toSupplierInfo(s), nil
}

func (uc *TaxonomyUseCase) UpdateSupplier(ctx context.Context, actor access.Actor, req SupplierRequest) (*SupplierInfo, error) {
	if err := uc.gate.Require(actor, access.ActionCatalogWrite, access.Resource{Kind: access.KindSupplier}); err != nil {
		return nil, err
	}

	var out *SupplierInfo
	err := uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		s, err := uc.suppliers.FindByID(txCtx, req.ID)
		if err != nil {
			return err
		}
		before := toSupplierInfo(s)
		s.Name = req.Name
		s.ContactEmail = req.ContactEmail
		s.Phone = req.Phone
		if err := s.Validate(); err != nil {
			return err
		}
		if err := uc.suppliers.Update(txCtx, s); err != nil {
			return err
		}
		out = toSupplierInfo(s)
		return uc.audit.Record(txCtx, actor.Ref(), audit.ActionUpdate, audit.TableSuppliers, s.ID, before, out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (uc *TaxonomyUseCase) DeleteSupplier(ctx context.Context, actor access.Actor, id uint) error {
	if err := uc.gate.Require(actor, access.ActionCatalogWrite, access.Resource{Kind: access.KindSupplier}); err != nil {
		return err
	}
	return uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		s, err := uc.suppliers.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := uc.suppliers.Delete(txCtx, id); err != nil {
			return err
		}
		return uc.audit.Record(txCtx, actor.Ref(), audit.ActionDelete, audit.TableSuppliers, id, toSupplierInfo(s), nil)
	})
}

func (uc *TaxonomyUseCase) ListSuppliers(ctx context.Context, actor access.Actor) ([]*SupplierInfo, error) {
	if err := uc.gate.Require(actor, access.ActionCatalogRead, access.Resource{Kind: access.KindSupplier}); err != nil {
		return nil, err
	}
	suppliers, err := uc.suppliers.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*SupplierInfo, len(suppliers))
	for i, s := range suppliers {
		out[i] = toSupplierInfo(s)
	}
	return out, nil
}
