package access

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/shoptrack/internal/domain/user"
	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
	"github.com/xiebiao/shoptrack/pkg/metrics"
)

// RoleSource 角色来源（数据库）
type RoleSource interface {
	ListRoles(ctx context.Context, userID uint) ([]user.Role, error)
}

// RoleCache 角色缓存（Redis），未命中返回 ok=false
type RoleCache interface {
	GetRoles(ctx context.Context, userID uint) (roles []user.Role, ok bool, err error)
	SetRoles(ctx context.Context, userID uint, roles []user.Role, ttl time.Duration) error
	InvalidateRoles(ctx context.Context, userID uint) error
}

// Gate 访问控制门
type Gate struct {
	source   []Rule
	rules    []compiledRule
	roles    RoleSource
	cache    RoleCache
	cacheTTL time.Duration
	log      *zap.Logger
}

// Option Gate 可选项
type Option func(*Gate)

// WithRoleCache 启用角色缓存，ttl<=0 时不启用
func WithRoleCache(cache RoleCache, ttl time.Duration) Option {
	return func(g *Gate) {
		if cache != nil && ttl > 0 {
			g.cache = cache
			g.cacheTTL = ttl
		}
	}
}

// WithRules 替换默认规则
func WithRules(rules []Rule) Option {
	return func(g *Gate) { g.source = rules }
}

// NewGate 编译规则并创建 Gate
func NewGate(roles RoleSource, log *zap.Logger, opts ...Option) (*Gate, error) {
	g := &Gate{source: DefaultRules, roles: roles, log: log}
	for _, opt := range opts {
		opt(g)
	}

	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("创建CEL环境失败: %w", err)
	}
	if g.rules, err = compile(env, g.source); err != nil {
		return nil, err
	}
	return g, nil
}

// Authorize 按顺序求值规则
func (g *Gate) Authorize(actor Actor, action Action, res Resource) Decision {
	roles := make([]string, len(actor.Roles))
	for i, r := range actor.Roles {
		roles[i] = string(r)
	}
	vars := map[string]interface{}{
		"actor_id": int64(actor.UserID),
		"roles":    roles,
		"action":   string(action),
		"kind":     res.Kind,
		"owner_id": int64(res.OwnerID),
	}

	decision := Decision{Allowed: false, Reason: "没有匹配的授权规则"}
	for _, r := range g.rules {
		out, _, err := r.program.Eval(vars)
		if err != nil {
			// 求值出错视为不匹配
			g.log.Warn("access rule eval failed", zap.String("rule", r.Name), zap.Error(err))
			continue
		}
		if matched, ok := out.Value().(bool); ok && matched {
			decision = Decision{Allowed: r.Effect == EffectAllow, Reason: "rule " + r.Name}
			break
		}
	}

	metrics.RecordAuthzDecision(string(action), decision.Allowed)
	if !decision.Allowed {
		g.log.Info("access denied",
			zap.Uint("actor_id", actor.UserID),
			zap.String("action", string(action)),
			zap.String("kind", res.Kind),
			zap.Uint("owner_id", res.OwnerID),
			zap.String("reason", decision.Reason),
		)
	}
	return decision
}

// Require 未授权时返回 ErrForbidden
func (g *Gate) Require(actor Actor, action Action, res Resource) error {
	d := g.Authorize(actor, action, res)
	if d.Allowed {
		return nil
	}
	return apperrors.ErrForbidden.WithDetail("%s %s: %s", action, res.Kind, d.Reason)
}

// ResolveActor 每次请求重新加载角色，角色不放在token里
func (g *Gate) ResolveActor(ctx context.Context, userID uint) (Actor, error) {
	if userID == 0 {
		return Anonymous, nil
	}

	if g.cache != nil {
		roles, ok, err := g.cache.GetRoles(ctx, userID)
		if err != nil {
			g.log.Warn("role cache get failed", zap.Uint("user_id", userID), zap.Error(err))
		} else if ok {
			return Actor{UserID: userID, Roles: roles}, nil
		}
	}

	roles, err := g.roles.ListRoles(ctx, userID)
	if err != nil {
		return Anonymous, err
	}

	if g.cache != nil {
		if err := g.cache.SetRoles(ctx, userID, roles, g.cacheTTL); err != nil {
			g.log.Warn("role cache set failed", zap.Uint("user_id", userID), zap.Error(err))
		}
	}
	return Actor{UserID: userID, Roles: roles}, nil
}

// InvalidateRoles 角色变更后清理缓存
func (g *Gate) InvalidateRoles(ctx context.Context, userID uint) {
	if g.cache == nil {
		return
	}
	if err := g.cache.InvalidateRoles(ctx, userID); err != nil {
		g.log.Warn("role cache invalidate failed", zap.Uint("user_id", userID), zap.Error(err))
	}
}
