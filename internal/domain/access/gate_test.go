package access

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/shoptrack/internal/domain/user"
	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
)

type staticRoles struct {
	roles map[uint][]user.Role
	calls int
}

func (s *staticRoles) ListRoles(_ context.Context, userID uint) ([]user.Role, error) {
	s.calls++
	return s.roles[userID], nil
}

type mapCache struct {
	data map[uint][]user.Role
}

func (m *mapCache) GetRoles(_ context.Context, userID uint) ([]user.Role, bool, error) {
	r, ok := m.data[userID]
	return r, ok, nil
}

func (m *mapCache) SetRoles(_ context.Context, userID uint, roles []user.Role, _ time.Duration) error {
	m.data[userID] = roles
	return nil
}

func (m *mapCache) InvalidateRoles(_ context.Context, userID uint) error {
	delete(m.data, userID)
	return nil
}

func newTestGate(t *testing.T, opts ...Option) *Gate {
	t.Helper()
	g, err := NewGate(&staticRoles{}, zap.NewNop(), opts...)
	require.NoError(t, err)
	return g
}

var (
	admin    = Actor{UserID: 1, Roles: []user.Role{user.RoleCustomer, user.RoleAdmin}}
	alice    = Actor{UserID: 2, Roles: []user.Role{user.RoleCustomer}}
	bob      = Actor{UserID: 3, Roles: []user.Role{user.RoleCustomer}}
	roleless = Actor{UserID: 4}
)

func TestAuthorize_Matrix(t *testing.T) {
	g := newTestGate(t)

	cases := []struct {
		name   string
		actor  Actor
		action Action
		res    Resource
		allow  bool
	}{
		{"admin adjusts stock", admin, ActionStockAdjust, Resource{Kind: KindProduct}, true},
		{"admin reads other's order", admin, ActionOrderRead, Owned(KindOrder, 2), true},
		{"anonymous reads catalog", Anonymous, ActionCatalogRead, Resource{Kind: KindProduct}, true},
		{"anonymous adjusts stock", Anonymous, ActionStockAdjust, Resource{Kind: KindProduct}, false},
		{"customer adjusts stock", alice, ActionStockAdjust, Resource{Kind: KindProduct}, false},
		{"customer edits catalog", alice, ActionCatalogWrite, Resource{Kind: KindProduct}, false},
		{"customer writes own cart", alice, ActionCartWrite, Owned(KindCart, 2), true},
		{"customer reads other's order", bob, ActionOrderRead, Owned(KindOrder, 2), false},
		{"customer returns own order", alice, ActionReturnCreate, Owned(KindOrder, 2), true},
		{"customer returns other's order", bob, ActionReturnCreate, Owned(KindOrder, 2), false},
		{"customer updates order status", alice, ActionOrderStatus, Owned(KindOrder, 2), false},
		{"customer updates return status", alice, ActionReturnStatus, Owned(KindReturn, 2), false},
		{"customer grants roles", alice, ActionRoleManage, Owned(KindUser, 2), false},
		{"roleless user own cart", roleless, ActionCartWrite, Owned(KindCart, 4), false},
		{"unowned resource never matches anonymous", Anonymous, ActionCartRead, Resource{Kind: KindCart}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := g.Authorize(tc.actor, tc.action, tc.res)
			assert.Equal(t, tc.allow, d.Allowed, d.Reason)
		})
	}
}

func TestRequire_ReturnsForbidden(t *testing.T) {
	g := newTestGate(t)
	err := g.Require(alice, ActionStockAdjust, Resource{Kind: KindProduct})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeForbidden))

	assert.NoError(t, g.Require(admin, ActionStockAdjust, Resource{Kind: KindProduct}))
}

func TestCustomRules_DenyFirst(t *testing.T) {
	rules := append([]Rule{{
		Name:   "freeze-payments",
		Effect: EffectDeny,
		Expr:   `action == "payment:status"`,
	}}, DefaultRules...)
	g := newTestGate(t, WithRules(rules))

	d := g.Authorize(admin, ActionPaymentStatus, Resource{Kind: KindPayment})
	assert.False(t, d.Allowed)
	assert.Equal(t, "rule freeze-payments", d.Reason)
}

func TestNewGate_InvalidRules(t *testing.T) {
	_, err := NewGate(&staticRoles{}, zap.NewNop(), WithRules([]Rule{{Name: "bad", Effect: EffectAllow, Expr: `roles +`}}))
	assert.Error(t, err)

	_, err = NewGate(&staticRoles{}, zap.NewNop(), WithRules([]Rule{{Name: "notbool", Effect: EffectAllow, Expr: `actor_id + 1`}}))
	assert.Error(t, err)

	_, err = NewGate(&staticRoles{}, zap.NewNop(), WithRules([]Rule{{Name: "effect", Effect: "maybe", Expr: `true`}}))
	assert.Error(t, err)
}

func TestResolveActor_UsesCache(t *testing.T) {
	src := &staticRoles{roles: map[uint][]user.Role{7: {user.RoleCustomer}}}
	cache := &mapCache{data: map[uint][]user.Role{}}
	g, err := NewGate(src, zap.NewNop(), WithRoleCache(cache, time.Minute))
	require.NoError(t, err)
	ctx := context.Background()

	a, err := g.ResolveActor(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []user.Role{user.RoleCustomer}, a.Roles)

	_, err = g.ResolveActor(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)

	src.roles[7] = []user.Role{user.RoleCustomer, user.RoleAdmin}
	g.InvalidateRoles(ctx, 7)
	a, err = g.ResolveActor(ctx, 7)
	require.NoError(t, err)
	assert.True(t, a.IsAdmin())
	assert.Equal(t, 2, src.calls)

	anon, err := g.ResolveActor(ctx, 0)
	require.NoError(t, err)
	assert.True(t, anon.IsAnonymous())
}

func TestActorContext(t *testing.T) {
	assert.True(t, ActorFrom(context.Background()).IsAnonymous())
	ctx := WithActor(context.Background(), alice)
	assert.Equal(t, alice, ActorFrom(ctx))
}
