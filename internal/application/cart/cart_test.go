package cart

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/shoptrack/internal/domain/access"
	"github.com/xiebiao/shoptrack/internal/domain/cart"
	"github.com/xiebiao/shoptrack/internal/domain/inventory"
	"github.com/xiebiao/shoptrack/internal/testutil"
	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
)

func newCartUseCase(env *testutil.Env, allowNegative bool) *CartUseCase {
	return NewCartUseCase(env.Carts, env.Products, env.Inventory, env.Tx, env.Gate, allowNegative, env.Log)
}

func TestCart_ReserveAndReleaseSymmetric(t *testing.T) {
	env := testutil.NewEnv(t)
	customer := env.Customer(t, "c@shop.test")
	p := env.Product(t, "Rice", 10, "50")
	uc := newCartUseCase(env, false)
	ctx := context.Background()

	line, err := uc.AddToCart(ctx, customer, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, line.Quantity)
	assert.Equal(t, "150.00", line.Amount)
	assert.Equal(t, 7, env.StockOf(t, p.ID))

	_, err = uc.UpdateQuantity(ctx, customer, p.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, env.StockOf(t, p.ID))

	_, err = uc.UpdateQuantity(ctx, customer, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 8, env.StockOf(t, p.ID))

	// 数量不变不产生流水
	_, err = uc.UpdateQuantity(ctx, customer, p.ID, 2)
	require.NoError(t, err)

	require.NoError(t, uc.RemoveFromCart(ctx, customer, p.ID))
	assert.Equal(t, 10, env.StockOf(t, p.ID))
	env.RequireReconciled(t, p.ID)

	logs, err := env.Logs.ListByProduct(ctx, p.ID, nil, 10)
	require.NoError(t, err)
	require.Len(t, logs, 4)
	for _, l := range logs {
		assert.Equal(t, cartRef(customer.UserID), l.Reference)
	}
	assert.Equal(t, inventory.ChangeCartReleased, logs[0].ChangeType)
	assert.Equal(t, 2, logs[0].Delta)
	assert.Equal(t, inventory.ChangeCartReserved, logs[3].ChangeType)
	assert.Equal(t, -3, logs[3].Delta)

	info, err := uc.ListCart(ctx, customer)
	require.NoError(t, err)
	assert.Empty(t, info.Lines)
}

func TestCart_AddAccumulates(t *testing.T) {
	env := testutil.NewEnv(t)
	customer := env.Customer(t, "c@shop.test")
	p := env.Product(t, "Rice", 10, "50")
	uc := newCartUseCase(env, false)
	ctx := context.Background()

	_, err := uc.AddToCart(ctx, customer, p.ID, 0)
	require.NoError(t, err)
	line, err := uc.AddToCart(ctx, customer, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, line.Quantity)

	info, err := uc.ListCart(ctx, customer)
	require.NoError(t, err)
	require.Len(t, info.Lines, 1)
	assert.Equal(t, 3, info.Count)
	assert.Equal(t, "150.00", info.Subtotal)
	assert.Equal(t, 7, env.StockOf(t, p.ID))

	_, err = uc.AddToCart(ctx, customer, p.ID, -1)
	assert.ErrorIs(t, err, cart.ErrInvalidQuantity)
}

func TestCart_InsufficientStockRollsBack(t *testing.T) {
	env := testutil.NewEnv(t)
	customer := env.Customer(t, "c@shop.test")
	p := env.Product(t, "Rice", 2, "50")
	uc := newCartUseCase(env, false)
	ctx := context.Background()

	_, err := uc.AddToCart(ctx, customer, p.ID, 3)
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
	assert.Equal(t, 2, env.StockOf(t, p.ID))

	_, err = env.Carts.Find(ctx, customer.UserID, p.ID)
	assert.ErrorIs(t, err, cart.ErrLineNotFound)

	// 允许负库存时直接预留
	loose := newCartUseCase(env, true)
	_, err = loose.AddToCart(ctx, customer, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, -1, env.StockOf(t, p.ID))
	env.RequireReconciled(t, p.ID)
}

func TestCart_UnknownLineAndProduct(t *testing.T) {
	env := testutil.NewEnv(t)
	customer := env.Customer(t, "c@shop.test")
	uc := newCartUseCase(env, false)
	ctx := context.Background()

	_, err := uc.AddToCart(ctx, customer, 404, 1)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeProductNotFound), "%v", err)

	_, err = uc.UpdateQuantity(ctx, customer, 404, 2)
	assert.ErrorIs(t, err, cart.ErrLineNotFound)
	assert.ErrorIs(t, uc.RemoveFromCart(ctx, customer, 404), cart.ErrLineNotFound)
}

func TestCart_AnonymousDenied(t *testing.T) {
	env := testutil.NewEnv(t)
	p := env.Product(t, "Rice", 10, "50")
	uc := newCartUseCase(env, false)

	_, err := uc.AddToCart(context.Background(), access.Anonymous, p.ID, 1)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeForbidden))
	_, err = uc.ListCart(context.Background(), access.Anonymous)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeForbidden))
	assert.Equal(t, 10, env.StockOf(t, p.ID))
}

func TestCart_DeletedProductLine(t *testing.T) {
	env := testutil.NewEnv(t)
	customer := env.Customer(t, "c@shop.test")
	p := env.Product(t, "Rice", 10, "50")
	uc := newCartUseCase(env, false)
	ctx := context.Background()

	_, err := uc.AddToCart(ctx, customer, p.ID, 2)
	require.NoError(t, err)
	require.NoError(t, env.Products.Delete(ctx, p.ID))

	info, err := uc.ListCart(ctx, customer)
	require.NoError(t, err)
	require.Len(t, info.Lines, 1)
	assert.False(t, info.Lines[0].Available)
	assert.Equal(t, "0.00", info.Subtotal)

	require.NoError(t, uc.RemoveFromCart(ctx, customer, p.ID))
	info, err = uc.ListCart(ctx, customer)
	require.NoError(t, err)
	assert.Empty(t, info.Lines)
}

func TestCart_ReleaseStaleCarts(t *testing.T) {
	env := testutil.NewEnv(t)
	alice := env.Customer(t, "alice@shop.test")
	bob := env.Customer(t, "bob@shop.test")
	p := env.Product(t, "Rice", 10, "50")
	uc := newCartUseCase(env, false)
	ctx := context.Background()

	_, err := uc.AddToCart(ctx, alice, p.ID, 3)
	require.NoError(t, err)
	_, err = uc.AddToCart(ctx, bob, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, env.StockOf(t, p.ID))

	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, env.DB.Exec("UPDATE cart_items SET updated_at = ? WHERE user_id = ?", old, alice.UserID).Error)

	_, err = uc.ReleaseStaleCarts(ctx, alice, 30*time.Minute)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeForbidden))

	released, err := uc.ReleaseStaleCarts(ctx, access.System, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, released)
	assert.Equal(t, 8, env.StockOf(t, p.ID))
	env.RequireReconciled(t, p.ID)

	_, err = env.Carts.Find(ctx, alice.UserID, p.ID)
	assert.ErrorIs(t, err, cart.ErrLineNotFound)
	_, err = env.Carts.Find(ctx, bob.UserID, p.ID)
	assert.NoError(t, err)

	released, err = uc.ReleaseStaleCarts(ctx, access.System, 30*time.Minute)
	require.NoError(t, err)
	assert.Zero(t, released)
}

func TestCart_RunSweeperStopsOnCancel(t *testing.T) {
	env := testutil.NewEnv(t)
	uc := newCartUseCase(env, false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- uc.RunSweeper(ctx, time.Minute, 10*time.Millisecond) }()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

