package catalog

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/shoptrack/internal/domain/access"
	"github.com/xiebiao/shoptrack/internal/domain/audit"
	"github.com/xiebiao/shoptrack/internal/domain/catalog"
	"github.com/xiebiao/shoptrack/internal/testutil"
	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
)

func newProductUseCase(env *testutil.Env) *ProductUseCase {
	return NewProductUseCase(env.Products, env.Categories, env.Suppliers, env.Audit, env.Tx, env.Gate)
}

func auditEntries(t *testing.T, env *testutil.Env, table string) []*audit.Entry {
	t.Helper()
	entries, _, err := env.AuditRepo.List(context.Background(), audit.Filter{TableName: table, Page: 1, PageSize: 100})
	require.NoError(t, err)
	return entries
}

func TestCreateProduct_AdminAudited(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := env.Admin(t, "admin@shop.test")
	uc := newProductUseCase(env)

	info, err := uc.Create(context.Background(), admin, CreateProductRequest{
		Name:         "Masala Chai",
		Price:        decimal.RequireFromString("120.50"),
		GSTRate:      decimal.NewFromInt(5),
		InitialStock: 40,
		ReorderPoint: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, "120.50", info.Price)
	assert.Equal(t, 40, info.Stock)
	assert.Equal(t, 40, info.InitialStock)

	entries := auditEntries(t, env, audit.TableProducts)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionInsert, entries[0].Action)
	assert.Equal(t, info.ID, entries[0].RecordID)
	require.NotNil(t, entries[0].ActorID)
	assert.Equal(t, admin.UserID, *entries[0].ActorID)
	assert.Empty(t, entries[0].OldValue)

	// 初始库存不写流水
	logs, err := env.Logs.ListByProduct(context.Background(), info.ID, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, logs)
	env.RequireReconciled(t, info.ID)
}

func TestCreateProduct_Denied(t *testing.T) {
	env := testutil.NewEnv(t)
	customer := env.Customer(t, "c@shop.test")
	uc := newProductUseCase(env)

	req := CreateProductRequest{Name: "Tea", Price: decimal.NewFromInt(10), InitialStock: 1}
	for _, actor := range []access.Actor{customer, access.Anonymous} {
		_, err := uc.Create(context.Background(), actor, req)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeForbidden), "%v", err)
	}
	assert.Empty(t, auditEntries(t, env, audit.TableProducts))
}

func TestCreateProduct_UnknownCategory(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := env.Admin(t, "admin@shop.test")
	uc := newProductUseCase(env)

	missing := uint(99)
	_, err := uc.Create(context.Background(), admin, CreateProductRequest{
		Name: "Tea", Price: decimal.NewFromInt(10), CategoryID: &missing,
	})
	assert.ErrorIs(t, err, catalog.ErrCategoryNotFound)
	assert.Empty(t, auditEntries(t, env, audit.TableProducts))
}

func TestUpdateProduct_SnapshotsBeforeAndAfter(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := env.Admin(t, "admin@shop.test")
	p := env.Product(t, "Ghee 1L", 10, "650")
	uc := newProductUseCase(env)

	price := decimal.RequireFromString("599.99")
	name := "  Ghee 1 Litre "
	info, err := uc.Update(context.Background(), admin, UpdateProductRequest{ID: p.ID, Name: &name, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Ghee 1 Litre", info.Name)
	assert.Equal(t, "599.99", info.Price)
	assert.Equal(t, 10, info.Stock)

	entries := auditEntries(t, env, audit.TableProducts)
	require.Len(t, entries, 1)
	var before, after ProductInfo
	require.NoError(t, json.Unmarshal(entries[0].OldValue, &before))
	require.NoError(t, json.Unmarshal(entries[0].NewValue, &after))
	assert.Equal(t, "650.00", before.Price)
	assert.Equal(t, "599.99", after.Price)
}

func TestUpdateProduct_InvalidRollsBack(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := env.Admin(t, "admin@shop.test")
	p := env.Product(t, "Ghee", 10, "650")
	uc := newProductUseCase(env)

	negative := -1
	_, err := uc.Update(context.Background(), admin, UpdateProductRequest{ID: p.ID, ReorderPoint: &negative})
	assert.ErrorIs(t, err, catalog.ErrInvalidReorderPoint)
	assert.Empty(t, auditEntries(t, env, audit.TableProducts))
}

func TestDeleteProduct(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := env.Admin(t, "admin@shop.test")
	p := env.Product(t, "Ghee", 10, "650")
	uc := newProductUseCase(env)

	require.NoError(t, uc.Delete(context.Background(), admin, p.ID))
	_, err := uc.Get(context.Background(), access.Anonymous, p.ID)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)

	entries := auditEntries(t, env, audit.TableProducts)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionDelete, entries[0].Action)
	assert.Empty(t, entries[0].NewValue)
}

func TestListProducts_Anonymous(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Product(t, "Rice", 10, "50")
	env.Product(t, "Dal", 10, "80")
	uc := newProductUseCase(env)

	resp, err := uc.List(context.Background(), access.Anonymous, ListProductsRequest{PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)
	assert.Equal(t, 20, resp.PageSize)
	assert.Len(t, resp.Products, 2)
}

func TestTaxonomy(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := env.Admin(t, "admin@shop.test")
	uc := NewTaxonomyUseCase(env.Categories, env.Suppliers, env.Audit, env.Tx, env.Gate)
	ctx := context.Background()

	c, err := uc.CreateCategory(ctx, admin, CategoryRequest{Name: "Grocery"})
	require.NoError(t, err)
	_, err = uc.CreateCategory(ctx, admin, CategoryRequest{Name: "Grocery"})
	assert.ErrorIs(t, err, catalog.ErrCategoryDuplicate)

	c, err = uc.UpdateCategory(ctx, admin, CategoryRequest{ID: c.ID, Name: "Staples", Description: "daily"})
	require.NoError(t, err)
	assert.Equal(t, "Staples", c.Name)

	s, err := uc.CreateSupplier(ctx, admin, SupplierRequest{Name: "Acme Foods", ContactEmail: "sales@acme.test"})
	require.NoError(t, err)
	_, err = uc.CreateSupplier(ctx, admin, SupplierRequest{Name: "Bad", ContactEmail: "nope"})
	assert.ErrorIs(t, err, catalog.ErrInvalidContactEmail)

	categories, err := uc.ListCategories(ctx, access.Anonymous)
	require.NoError(t, err)
	assert.Len(t, categories, 1)

	require.NoError(t, uc.DeleteCategory(ctx, admin, c.ID))
	require.NoError(t, uc.DeleteSupplier(ctx, admin, s.ID))

	assert.Len(t, auditEntries(t, env, audit.TableCategories), 3)
	assert.Len(t, auditEntries(t, env, audit.TableSuppliers), 2)

	customer := env.Customer(t, "c@shop.test")
	_, err = uc.CreateSupplier(ctx, customer, SupplierRequest{Name: "X"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeForbidden))
}

func TestApplyBulkDiscount_ByCategory(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := env.Admin(t, "admin@shop.test")
	ctx := context.Background()

	taxonomy := NewTaxonomyUseCase(env.Categories, env.Suppliers, env.Audit, env.Tx, env.Gate)
	c, err := taxonomy.CreateCategory(ctx, admin, CategoryRequest{Name: "Snacks"})
	require.NoError(t, err)

	products := newProductUseCase(env)
	a, err := products.Create(ctx, admin, CreateProductRequest{Name: "Chips", Price: decimal.NewFromInt(100), InitialStock: 8, CategoryID: &c.ID})
	require.NoError(t, err)
	b, err := products.Create(ctx, admin, CreateProductRequest{Name: "Nuts", Price: decimal.RequireFromString("55.55"), InitialStock: 3, CategoryID: &c.ID})
	require.NoError(t, err)
	other := env.Product(t, "Soap", 4, "30")

	uc := NewApplyBulkDiscountUseCase(env.Products, env.Audit, env.Tx, env.Gate)
	resp, err := uc.Execute(ctx, admin, ApplyBulkDiscountRequest{CategoryID: &c.ID, Percent: decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Updated)

	got, err := products.Get(ctx, access.Anonymous, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "90.00", got.Price)
	assert.Equal(t, 8, got.Stock)

	got, err = products.Get(ctx, access.Anonymous, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "50.00", got.Price)

	got, err = products.Get(ctx, access.Anonymous, other.ID)
	require.NoError(t, err)
	assert.Equal(t, "30.00", got.Price)

	// 两次INSERT + 两次折扣UPDATE
	assert.Len(t, auditEntries(t, env, audit.TableProducts), 4)
	recent, err := env.Logs.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestApplyBulkDiscount_Validation(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := env.Admin(t, "admin@shop.test")
	p := env.Product(t, "Chips", 5, "100")
	uc := NewApplyBulkDiscountUseCase(env.Products, env.Audit, env.Tx, env.Gate)
	ctx := context.Background()

	for _, percent := range []int64{0, 100, -5} {
		_, err := uc.Execute(ctx, admin, ApplyBulkDiscountRequest{ProductIDs: []uint{p.ID}, Percent: decimal.NewFromInt(percent)})
		assert.ErrorIs(t, err, catalog.ErrInvalidDiscount, "percent=%d", percent)
	}

	_, err := uc.Execute(ctx, admin, ApplyBulkDiscountRequest{Percent: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, errSelectorRequired)

	// 任一商品不存在，全部回滚
	_, err = uc.Execute(ctx, admin, ApplyBulkDiscountRequest{ProductIDs: []uint{p.ID, 999}, Percent: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
	reloaded, err := env.Products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(reloaded.Price))
	assert.Empty(t, auditEntries(t, env, audit.TableProducts))

	customer := env.Customer(t, "c@shop.test")
	_, err = uc.Execute(ctx, customer, ApplyBulkDiscountRequest{ProductIDs: []uint{p.ID}, Percent: decimal.NewFromInt(10)})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeForbidden))
}
