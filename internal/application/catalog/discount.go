package catalog

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/shoptrack/internal/domain/access"
	"github.com/xiebiao/shoptrack/internal/domain/audit"
	"github.com/xiebiao/shoptrack/internal/domain/catalog"
	"github.com/xiebiao/shoptrack/internal/domain/inventory"
	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
	"github.com/xiebiao/shoptrack/pkg/tracing"
)

// ApplyBulkDiscountUseCase 批量折扣
// 只改价格，每个商品一条UPDATE审计，不产生库存流水
type ApplyBulkDiscountUseCase struct {
	products catalog.ProductRepository
	audit    *audit.Recorder
	tx       inventory.Transactor
	gate     *access.Gate
}

// NewApplyBulkDiscountUseCase 创建批量折扣用例
func NewApplyBulkDiscountUseCase(
	products catalog.ProductRepository,
	recorder *audit.Recorder,
	tx inventory.Transactor,
	gate *access.Gate,
) *ApplyBulkDiscountUseCase {
	return &ApplyBulkDiscountUseCase{products: products, audit: recorder, tx: tx, gate: gate}
}

// ApplyBulkDiscountRequest ProductIDs 和 CategoryID 二选一
type ApplyBulkDiscountRequest struct {
	ProductIDs []uint
	CategoryID *uint
	Percent    decimal.Decimal
}

// ApplyBulkDiscountResponse 折扣结果
type ApplyBulkDiscountResponse struct {
	Updated  int            `json:"updated"`
	Products []*ProductInfo `json:"products"`
}

var errSelectorRequired = apperrors.New(apperrors.ErrCodeInvalidParams, "必须且只能指定商品ID列表或分类之一")

// Execute 全部成功或全部回滚
func (uc *ApplyBulkDiscountUseCase) Execute(ctx context.Context, actor access.Actor, req ApplyBulkDiscountRequest) (resp *ApplyBulkDiscountResponse, err error) {
	if err := uc.gate.Require(actor, access.ActionCatalogWrite, productResource); err != nil {
		return nil, err
	}
	if (len(req.ProductIDs) == 0) == (req.CategoryID == nil) {
		return nil, errSelectorRequired
	}
	if !req.Percent.IsPositive() || req.Percent.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return nil, catalog.ErrInvalidDiscount
	}

	ctx, span := tracing.StartSpan(ctx, "catalog", "ApplyBulkDiscount")
	span.SetAttributes(attribute.String("percent", req.Percent.String()))
	defer func() { tracing.EndSpan(span, err) }()

	resp = &ApplyBulkDiscountResponse{Products: []*ProductInfo{}}
	err = uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		products, err := uc.load(txCtx, req)
		if err != nil {
			return err
		}

		for _, p := range products {
			before := ToProductInfo(p)
			if err := p.ApplyDiscount(req.Percent); err != nil {
				return err
			}
			if err := uc.products.Update(txCtx, p); err != nil {
				return err
			}
			after := ToProductInfo(p)
			if err := uc.audit.Record(txCtx, actor.Ref(), audit.ActionUpdate, audit.TableProducts, p.ID, before, after); err != nil {
				return err
			}
			resp.Products = append(resp.Products, after)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp.Updated = len(resp.Products)
	return resp, nil
}

func (uc *ApplyBulkDiscountUseCase) load(ctx context.Context, req ApplyBulkDiscountRequest) ([]*catalog.Product, error) {
	if req.CategoryID != nil {
		return uc.products.ListByCategory(ctx, *req.CategoryID)
	}

	ids := dedupe(req.ProductIDs)
	products, err := uc.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(products) != len(ids) {
		found := make(map[uint]bool, len(products))
		for _, p := range products {
			found[p.ID] = true
		}
		for _, id := range ids {
			if !found[id] {
				return nil, catalog.ErrProductNotFound.WithDetail("id=%d", id)
			}
		}
	}
	return products, nil
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
