package order

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartapp "github.com/xiebiao/shoptrack/internal/application/cart"
	"github.com/xiebiao/shoptrack/internal/domain/access"
	"github.com/xiebiao/shoptrack/internal/domain/audit"
	"github.com/xiebiao/shoptrack/internal/domain/cart"
	"github.com/xiebiao/shoptrack/internal/domain/catalog"
	"github.com/xiebiao/shoptrack/internal/domain/inventory"
	"github.com/xiebiao/shoptrack/internal/domain/order"
	"github.com/xiebiao/shoptrack/internal/testutil"
	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
)

type fixture struct {
	env      *testutil.Env
	cart     *cartapp.CartUseCase
	checkout *CheckoutUseCase
	status   *StatusUseCase
	query    *QueryUseCase
}

func newFixture(t *testing.T, legacy bool) *fixture {
	env := testutil.NewEnv(t)
	return &fixture{
		env:  env,
		cart: cartapp.NewCartUseCase(env.Carts, env.Products, env.Inventory, env.Tx, env.Gate, false, env.Log),
		checkout: NewCheckoutUseCase(env.Carts, env.Products, env.Orders, env.Payments, env.Inventory, env.Tx, env.Gate,
			CheckoutOptions{LegacyDecrement: legacy}, env.Log),
		status: NewStatusUseCase(env.Orders, env.Payments, env.Audit, env.Tx, env.Gate),
		query:  NewQueryUseCase(env.Orders, env.Payments, env.Gate),
	}
}

func TestCheckout_ReservedStockNotDecrementedTwice(t *testing.T) {
	f := newFixture(t, false)
	customer := f.env.Customer(t, "c@shop.test")
	p := f.env.Product(t, "Rice", 10, "100")
	ctx := context.Background()

	_, err := f.cart.AddToCart(ctx, customer, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 7, f.env.StockOf(t, p.ID))

	f.env.Events.Reset()
	info, err := f.checkout.Execute(ctx, customer, CheckoutRequest{PaymentMode: "UPI"})
	require.NoError(t, err)
	assert.Equal(t, 7, f.env.StockOf(t, p.ID))
	f.env.RequireReconciled(t, p.ID)

	assert.Equal(t, "pending", info.Status)
	assert.Equal(t, "300.00", info.Total)
	require.Len(t, info.Lines, 1)
	assert.Equal(t, "100.00", info.Lines[0].UnitPrice)
	require.NotNil(t, info.Payment)
	assert.Equal(t, "pending", info.Payment.Status)
	assert.Equal(t, "300.00", info.Payment.Amount)
	assert.Equal(t, []string{"order.placed"}, f.env.Events.Types())

	// 购物车已清空
	cartInfo, err := f.cart.ListCart(ctx, customer)
	require.NoError(t, err)
	assert.Empty(t, cartInfo.Lines)
}

func TestCheckout_LegacyDecrement(t *testing.T) {
	f := newFixture(t, true)
	customer := f.env.Customer(t, "c@shop.test")
	p := f.env.Product(t, "Rice", 10, "100")
	ctx := context.Background()

	_, err := f.cart.AddToCart(ctx, customer, p.ID, 3)
	require.NoError(t, err)

	info, err := f.checkout.Execute(ctx, customer, CheckoutRequest{PaymentMode: "COD"})
	require.NoError(t, err)
	assert.Equal(t, 4, f.env.StockOf(t, p.ID))
	f.env.RequireReconciled(t, p.ID)

	logs, err := f.env.Logs.ListByProduct(ctx, p.ID, nil, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, inventory.ChangeSale, logs[0].ChangeType)
	assert.Equal(t, -3, logs[0].Delta)
	assert.Equal(t, "order:"+info.OrderNo, logs[0].Reference)
}

func TestCheckout_SnapshotsPriceAndTax(t *testing.T) {
	f := newFixture(t, false)
	customer := f.env.Customer(t, "c@shop.test")
	ctx := context.Background()

	p := catalog.NewProduct("Tea", "", decimal.RequireFromString("200"), decimal.NewFromInt(18), 10)
	require.NoError(t, f.env.Products.Create(ctx, p))
	_, err := f.cart.AddToCart(ctx, customer, p.ID, 2)
	require.NoError(t, err)

	info, err := f.checkout.Execute(ctx, customer, CheckoutRequest{PaymentMode: "Card"})
	require.NoError(t, err)
	assert.Equal(t, "400.00", info.Subtotal)
	assert.Equal(t, "72.00", info.Tax)
	assert.Equal(t, "472.00", info.Total)

	// 之后的调价不影响已下订单
	p.Price = decimal.NewFromInt(999)
	require.NoError(t, f.env.Products.Update(ctx, p))
	got, err := f.query.GetOrder(ctx, customer, info.ID)
	require.NoError(t, err)
	assert.Equal(t, "200.00", got.Lines[0].UnitPrice)
	assert.Equal(t, "472.00", got.Total)
}

func TestCheckout_Failures(t *testing.T) {
	f := newFixture(t, false)
	customer := f.env.Customer(t, "c@shop.test")
	ctx := context.Background()

	_, err := f.checkout.Execute(ctx, customer, CheckoutRequest{PaymentMode: "UPI"})
	assert.ErrorIs(t, err, order.ErrEmptyCart)

	_, err = f.checkout.Execute(ctx, customer, CheckoutRequest{PaymentMode: "cash"})
	assert.ErrorIs(t, err, order.ErrInvalidPaymentMode)

	_, err = f.checkout.Execute(ctx, access.Anonymous, CheckoutRequest{PaymentMode: "UPI"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeForbidden))
}

func TestCheckout_RollsBackWhenProductDeleted(t *testing.T) {
	f := newFixture(t, true)
	customer := f.env.Customer(t, "c@shop.test")
	kept := f.env.Product(t, "Rice", 10, "100")
	gone := f.env.Product(t, "Dal", 10, "80")
	ctx := context.Background()

	_, err := f.cart.AddToCart(ctx, customer, kept.ID, 2)
	require.NoError(t, err)
	_, err = f.cart.AddToCart(ctx, customer, gone.ID, 1)
	require.NoError(t, err)
	require.NoError(t, f.env.Products.Delete(ctx, gone.ID))

	f.env.Events.Reset()
	_, err = f.checkout.Execute(ctx, customer, CheckoutRequest{PaymentMode: "UPI"})
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)

	assert.Equal(t, 8, f.env.StockOf(t, kept.ID))
	f.env.RequireReconciled(t, kept.ID)
	cartInfo, err := f.cart.ListCart(ctx, customer)
	require.NoError(t, err)
	assert.Len(t, cartInfo.Lines, 2)

	list, err := f.query.ListOrders(ctx, customer, ListOrdersRequest{})
	require.NoError(t, err)
	assert.Zero(t, list.Total)
	assert.Empty(t, f.env.Events.Types())
}

// interleavedCarts 在结算锁定读取购物车之后插入一次并发修改
type interleavedCarts struct {
	cart.Repository
	afterLock func(ctx context.Context) error
}

func (r *interleavedCarts) LockByUser(ctx context.Context, userID uint) ([]*cart.Line, error) {
	lines, err := r.Repository.LockByUser(ctx, userID)
	if err != nil || r.afterLock == nil {
		return lines, err
	}
	hook := r.afterLock
	r.afterLock = nil
	if err := hook(ctx); err != nil {
		return nil, err
	}
	return lines, nil
}

func TestCheckout_CartChangedAfterRead(t *testing.T) {
	tests := []struct {
		name   string
		change func(f *fixture, customer access.Actor, p, other *catalog.Product) func(ctx context.Context) error
	}{
		{
			name: "条目被移除并释放预留",
			change: func(f *fixture, customer access.Actor, p, _ *catalog.Product) func(ctx context.Context) error {
				return func(ctx context.Context) error {
					return f.cart.RemoveFromCart(ctx, customer, p.ID)
				}
			},
		},
		{
			name: "读取后又加入新条目",
			change: func(f *fixture, customer access.Actor, _, other *catalog.Product) func(ctx context.Context) error {
				return func(ctx context.Context) error {
					_, err := f.cart.AddToCart(ctx, customer, other.ID, 1)
					return err
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, false)
			customer := f.env.Customer(t, "c@shop.test")
			p := f.env.Product(t, "Rice", 10, "100")
			other := f.env.Product(t, "Dal", 10, "80")
			ctx := context.Background()

			_, err := f.cart.AddToCart(ctx, customer, p.ID, 3)
			require.NoError(t, err)

			carts := &interleavedCarts{Repository: f.env.Carts, afterLock: tt.change(f, customer, p, other)}
			checkout := NewCheckoutUseCase(carts, f.env.Products, f.env.Orders, f.env.Payments, f.env.Inventory, f.env.Tx,
				f.env.Gate, CheckoutOptions{}, f.env.Log)

			f.env.Events.Reset()
			_, err = checkout.Execute(ctx, customer, CheckoutRequest{PaymentMode: "UPI"})
			assert.ErrorIs(t, err, cart.ErrCartChanged)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConflict))

			// 整个事务回滚：没有订单，预留和购物车保持结算前的样子
			list, err := f.query.ListOrders(ctx, customer, ListOrdersRequest{})
			require.NoError(t, err)
			assert.Zero(t, list.Total)
			assert.Equal(t, 7, f.env.StockOf(t, p.ID))
			assert.Equal(t, 10, f.env.StockOf(t, other.ID))
			f.env.RequireReconciled(t, p.ID)
			cartInfo, err := f.cart.ListCart(ctx, customer)
			require.NoError(t, err)
			assert.Len(t, cartInfo.Lines, 1)
			assert.Empty(t, f.env.Events.Types())
		})
	}
}

func TestOrders_OwnershipIsolation(t *testing.T) {
	f := newFixture(t, false)
	alice := f.env.Customer(t, "alice@shop.test")
	bob := f.env.Customer(t, "bob@shop.test")
	admin := f.env.Admin(t, "admin@shop.test")
	p := f.env.Product(t, "Rice", 10, "100")
	ctx := context.Background()

	_, err := f.cart.AddToCart(ctx, alice, p.ID, 1)
	require.NoError(t, err)
	placed, err := f.checkout.Execute(ctx, alice, CheckoutRequest{PaymentMode: "UPI"})
	require.NoError(t, err)

	_, err = f.query.GetOrder(ctx, bob, placed.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeForbidden))
	_, err = f.query.GetOrder(ctx, access.Anonymous, placed.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeForbidden))

	got, err := f.query.GetOrder(ctx, alice, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, placed.OrderNo, got.OrderNo)
	_, err = f.query.GetOrder(ctx, admin, placed.ID)
	require.NoError(t, err)

	// 客户传入别人的 user_id 也只能看到自己的
	list, err := f.query.ListOrders(ctx, bob, ListOrdersRequest{UserID: &alice.UserID})
	require.NoError(t, err)
	assert.Zero(t, list.Total)

	list, err = f.query.ListOrders(ctx, admin, ListOrdersRequest{UserID: &alice.UserID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)

	_, err = f.status.UpdateOrderStatus(ctx, alice, placed.ID, "cancelled")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeForbidden))

	_, err = f.query.GetOrder(ctx, alice, 9999)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestStatus_OrderAndPayment(t *testing.T) {
	f := newFixture(t, false)
	customer := f.env.Customer(t, "c@shop.test")
	admin := f.env.Admin(t, "admin@shop.test")
	p := f.env.Product(t, "Rice", 10, "100")
	ctx := context.Background()

	_, err := f.cart.AddToCart(ctx, customer, p.ID, 1)
	require.NoError(t, err)
	placed, err := f.checkout.Execute(ctx, customer, CheckoutRequest{PaymentMode: "Card"})
	require.NoError(t, err)

	_, err = f.status.UpdateOrderStatus(ctx, admin, placed.ID, "completed")
	assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)
	_, err = f.status.UpdateOrderStatus(ctx, admin, placed.ID, "shipped")
	assert.ErrorIs(t, err, order.ErrInvalidStatus)

	info, err := f.status.UpdateOrderStatus(ctx, admin, placed.ID, "processing")
	require.NoError(t, err)
	assert.Equal(t, "processing", info.Status)
	info, err = f.status.UpdateOrderStatus(ctx, admin, placed.ID, "completed")
	require.NoError(t, err)
	assert.Equal(t, "completed", info.Status)

	entries, _, err := f.env.AuditRepo.List(ctx, audit.Filter{TableName: audit.TableOrders, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	paymentID := placed.Payment.ID
	pay, err := f.status.UpdatePaymentStatus(ctx, admin, paymentID, "failed")
	require.NoError(t, err)
	assert.Equal(t, "failed", pay.Status)
	pay, err = f.status.UpdatePaymentStatus(ctx, admin, paymentID, "paid")
	require.NoError(t, err)
	assert.Equal(t, "paid", pay.Status)
	_, err = f.status.UpdatePaymentStatus(ctx, admin, paymentID, "failed")
	assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)

	_, err = f.status.UpdatePaymentStatus(ctx, customer, paymentID, "paid")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeForbidden))
	_, err = f.status.UpdatePaymentStatus(ctx, admin, 9999, "paid")
	assert.ErrorIs(t, err, order.ErrPaymentNotFound)

	entries, _, err = f.env.AuditRepo.List(ctx, audit.Filter{TableName: audit.TablePayments, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
