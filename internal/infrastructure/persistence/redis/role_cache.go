package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/shoptrack/internal/domain/user"
	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
)

// RoleCache 用户角色缓存，值为逗号分隔的角色名
// 没有角色的用户缓存空串，避免反复查库
type RoleCache struct {
	client *redis.Client
}

// NewRoleCache 创建角色缓存
func NewRoleCache(client *redis.Client) *RoleCache {
	return &RoleCache{client: client}
}

func rolesKey(userID uint) string {
	return fmt.Sprintf("%sroles:%d", keyPrefix, userID)
}

func (c *RoleCache) GetRoles(ctx context.Context, userID uint) ([]user.Role, bool, error) {
	val, err := c.client.Get(ctx, rolesKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperrors.WrapRedis(err, "读取角色缓存失败")
	}
	if val == "" {
		return []user.Role{}, true, nil
	}
	parts := strings.Split(val, ",")
	roles := make([]user.Role, len(parts))
	for i, p := range parts {
		roles[i] = user.Role(p)
	}
	return roles, true, nil
}

func (c *RoleCache) SetRoles(ctx context.Context, userID uint, roles []user.Role, ttl time.Duration) error {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	if err := c.client.Set(ctx, rolesKey(userID), strings.Join(names, ","), ttl).Err(); err != nil {
		return apperrors.WrapRedis(err, "写入角色缓存失败")
	}
	return nil
}

func (c *RoleCache) InvalidateRoles(ctx context.Context, userID uint) error {
	if err := c.client.Del(ctx, rolesKey(userID)).Err(); err != nil {
		return apperrors.WrapRedis(err, "清理角色缓存失败")
	}
	return nil
}
