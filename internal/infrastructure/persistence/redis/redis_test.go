package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/shoptrack/internal/domain/user"
	"github.com/xiebiao/shoptrack/internal/infrastructure/config"
	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port := mr.Host(), mr.Server().Addr().Port

	client, err := NewClient(context.Background(), config.RedisConfig{Host: host, Port: port}, zap.NewNop())
	require.NoError(t, err)
	_ = client.Close()

	_, err = NewClient(context.Background(), config.RedisConfig{Host: "127.0.0.1", Port: 1, DialTimeout: 100 * time.Millisecond}, zap.NewNop())
	assert.Error(t, err)
}

func TestSessionStore(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	_, err := store.GetSession(ctx, 1)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	require.NoError(t, store.SaveSession(ctx, 1, map[string]interface{}{"email": "a@example.com"}, time.Hour))
	session, err := store.GetSession(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", session["email"])
	assert.Equal(t, time.Hour, mr.TTL("shoptrack:session:1"))

	require.NoError(t, store.DeleteSession(ctx, 1))
	_, err = store.GetSession(ctx, 1)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestSessionStore_Blacklist(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	ok, err := store.IsInBlacklist(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.AddToBlacklist(ctx, "token-a", time.Minute))
	ok, err = store.IsInBlacklist(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, ok)

	// 已过期的token无需入黑名单
	require.NoError(t, store.AddToBlacklist(ctx, "token-b", 0))
	ok, err = store.IsInBlacklist(ctx, "token-b")
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = store.IsInBlacklist(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRoleCache(t *testing.T) {
	mr, client := newTestClient(t)
	cache := NewRoleCache(client)
	ctx := context.Background()

	_, ok, err := cache.GetRoles(ctx, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.SetRoles(ctx, 3, []user.Role{user.RoleAdmin, user.RoleCustomer}, time.Minute))
	roles, ok, err := cache.GetRoles(ctx, 3)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []user.Role{user.RoleAdmin, user.RoleCustomer}, roles)

	require.NoError(t, cache.SetRoles(ctx, 4, nil, time.Minute))
	roles, ok, err = cache.GetRoles(ctx, 4)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, roles)

	require.NoError(t, cache.InvalidateRoles(ctx, 3))
	_, ok, err = cache.GetRoles(ctx, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	mr.SetError("server down")
	_, _, err = cache.GetRoles(ctx, 3)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeRedisError))
}
