package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xiebiao/shoptrack/internal/domain/access"
	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
	"github.com/xiebiao/shoptrack/pkg/jwt"
	"github.com/xiebiao/shoptrack/pkg/logger"
	"github.com/xiebiao/shoptrack/pkg/response"
)

const (
	ctxKeyUserID   = "user_id"
	ctxKeyEmail    = "email"
	ctxKeyToken    = "access_token"
	ctxKeyTokenTTL = "access_token_ttl"
)

// TokenBlacklist 已登出的Token；未启用Redis时为nil
type TokenBlacklist interface {
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}

// ActorResolver 按用户ID加载角色
type ActorResolver interface {
	ResolveActor(ctx context.Context, userID uint) (access.Actor, error)
}

// AuthMiddleware JWT认证中间件
// 1. 从Header提取Token
// 2. 验证Token并检查黑名单
// 3. 加载当前角色，把 access.Actor 放进请求ctx
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	blacklist  TokenBlacklist
	actors     ActorResolver
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, blacklist TokenBlacklist, actors ActorResolver) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		blacklist:  blacklist,
		actors:     actors,
	}
}

// Authenticate 可选登录：没有Token按匿名处理，带了无效Token直接拒绝
// 挂在 /api/v1 整组上，匿名能否访问由访问控制规则决定
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			setActor(c, access.Anonymous)
			c.Next()
			return
		}
		if !m.authenticate(c) {
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAuth 要求登录
//
//	authorized := v1.Group("")
//	authorized.Use(authMiddleware.RequireAuth())
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(ctxKeyUserID); !ok {
			if c.GetHeader("Authorization") == "" {
				response.Error(c, apperrors.ErrUnauthorized)
				c.Abort()
				return
			}
			if !m.authenticate(c) {
				c.Abort()
				return
			}
		}
		if GetUserID(c) == 0 {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}
		c.Next()
	}
}

// authenticate 解析Token，失败时已写好响应
func (m *AuthMiddleware) authenticate(c *gin.Context) bool {
	// 格式：Authorization: Bearer <token>
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidToken, "Token格式错误")
		return false
	}
	tokenString := parts[1]
	ctx := c.Request.Context()

	if m.blacklist != nil {
		blacklisted, err := m.blacklist.IsInBlacklist(ctx, tokenString)
		if err != nil {
			response.Error(c, apperrors.WrapRedis(err, "验证Token失败"))
			return false
		}
		if blacklisted {
			response.ErrorWithCode(c, apperrors.ErrCodeInvalidToken, "Token已失效，请重新登录")
			return false
		}
	}

	claims, err := m.jwtManager.ParseToken(tokenString)
	if err != nil {
		response.Error(c, err) // ErrTokenExpired、ErrInvalidToken
		return false
	}
	if claims.TokenType != "access" {
		response.Error(c, apperrors.ErrInvalidToken)
		return false
	}

	actor, err := m.actors.ResolveActor(ctx, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return false
	}

	c.Set(ctxKeyUserID, claims.UserID)
	c.Set(ctxKeyEmail, claims.Email)
	c.Set(ctxKeyToken, tokenString)
	c.Set(ctxKeyTokenTTL, claims.RemainingTTL())
	setActor(c, actor)

	log := logger.FromContext(c.Request.Context(), zap.L()).With(zap.Uint("user_id", claims.UserID))
	c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), log))
	return true
}

func setActor(c *gin.Context, actor access.Actor) {
	c.Request = c.Request.WithContext(access.WithActor(c.Request.Context(), actor))
}

// =========================================
// Context辅助函数（供Handler使用）
// =========================================

// Actor 当前请求的主体，未经过认证中间件时为匿名
func Actor(c *gin.Context) access.Actor {
	return access.ActorFrom(c.Request.Context())
}

// GetUserID 当前登录用户ID，未登录为0
func GetUserID(c *gin.Context) uint {
	if userID, exists := c.Get(ctxKeyUserID); exists {
		if uid, ok := userID.(uint); ok {
			return uid
		}
	}
	return 0
}

// GetEmail 当前登录用户邮箱
func GetEmail(c *gin.Context) string {
	return c.GetString(ctxKeyEmail)
}

// GetAccessToken 当前请求的Access Token和剩余有效期（登出时拉黑用）
func GetAccessToken(c *gin.Context) (string, time.Duration) {
	return c.GetString(ctxKeyToken), c.GetDuration(ctxKeyTokenTTL)
}
