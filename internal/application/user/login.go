package user

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/shoptrack/internal/domain/user"
	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
	"github.com/xiebiao/shoptrack/pkg/jwt"
)

var errNotLoggedIn = apperrors.ErrUnauthorized

// SessionStore 会话和Token黑名单（Redis）；未启用Redis时为nil
type SessionStore interface {
	SaveSession(ctx context.Context, userID uint, data map[string]interface{}, ttl time.Duration) error
	DeleteSession(ctx context.Context, userID uint) error
	AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}

// LoginUseCase 用户登录用例
// 1. 验证邮箱密码
// 2. 生成JWT Token对
// 3. 保存会话到Redis（失败只记日志）
type LoginUseCase struct {
	userService  user.Service
	jwtManager   *jwt.Manager
	sessionStore SessionStore
	sessionTTL   time.Duration
	log          *zap.Logger
}

// NewLoginUseCase 创建登录用例；会话有效期与 Refresh Token 一致
func NewLoginUseCase(
	userService user.Service,
	jwtManager *jwt.Manager,
	sessionStore SessionStore,
	sessionTTL time.Duration,
	log *zap.Logger,
) *LoginUseCase {
	return &LoginUseCase{
		userService:  userService,
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
		sessionTTL:   sessionTTL,
		log:          log,
	}
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := uc.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		uc.log.Info("login failed", zap.String("email", req.Email), zap.String("ip", req.IP), zap.Error(err))
		return nil, err
	}

	roles, err := uc.userService.Roles(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	tokenPair, err := uc.jwtManager.GenerateToken(u.ID, u.Email)
	if err != nil {
		return nil, err
	}

	if uc.sessionStore != nil {
		sessionData := map[string]interface{}{
			"user_id":  u.ID,
			"email":    u.Email,
			"nickname": u.Nickname,
			"login_at": time.Now().Unix(),
			"ip":       req.IP,
		}
		if err := uc.sessionStore.SaveSession(ctx, u.ID, sessionData, uc.sessionTTL); err != nil {
			uc.log.Warn("save session failed", zap.Uint("user_id", u.ID), zap.Error(err))
		}
	}

	uc.log.Info("user logged in", zap.Uint("user_id", u.ID), zap.String("ip", req.IP))
	return &LoginResponse{
		User:         *toUserInfo(u, roles),
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	}, nil
}

// LogoutUseCase 用户登出用例
type LogoutUseCase struct {
	sessionStore SessionStore
	jwtManager   *jwt.Manager
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(sessionStore SessionStore, jwtManager *jwt.Manager) *LogoutUseCase {
	return &LogoutUseCase{sessionStore: sessionStore, jwtManager: jwtManager}
}

// Execute 删除会话并把Token拉黑到其自然过期
func (uc *LogoutUseCase) Execute(ctx context.Context, req LogoutRequest) error {
	if uc.sessionStore == nil {
		return nil
	}
	if err := uc.sessionStore.DeleteSession(ctx, req.UserID); err != nil {
		return err
	}
	if err := uc.sessionStore.AddToBlacklist(ctx, req.AccessToken, req.AccessTTL); err != nil {
		return err
	}

	if req.RefreshToken == "" {
		return nil
	}
	claims, err := uc.jwtManager.ParseToken(req.RefreshToken)
	if err != nil || claims.UserID != req.UserID {
		// 无效的 refresh token 本身就不能再用，忽略
		return nil
	}
	return uc.sessionStore.AddToBlacklist(ctx, req.RefreshToken, claims.RemainingTTL())
}

// RefreshTokenUseCase 用 Refresh Token 换新的 Access Token
type RefreshTokenUseCase struct {
	users        user.Repository
	jwtManager   *jwt.Manager
	sessionStore SessionStore
}

// NewRefreshTokenUseCase 创建刷新用例
func NewRefreshTokenUseCase(users user.Repository, jwtManager *jwt.Manager, sessionStore SessionStore) *RefreshTokenUseCase {
	return &RefreshTokenUseCase{users: users, jwtManager: jwtManager, sessionStore: sessionStore}
}

// Execute 已登出的 Refresh Token 不能再用
func (uc *RefreshTokenUseCase) Execute(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	claims, err := uc.jwtManager.ParseToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != "refresh" {
		return nil, apperrors.ErrInvalidToken
	}

	if uc.sessionStore != nil {
		revoked, err := uc.sessionStore.IsInBlacklist(ctx, refreshToken)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, apperrors.ErrInvalidToken.WithDetail("token已注销")
		}
	}

	u, err := uc.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	token, err := uc.jwtManager.RefreshAccessToken(refreshToken, u.Email)
	if err != nil {
		return nil, err
	}
	return &RefreshResponse{AccessToken: token}, nil
}

// =========================================
// 应用层DTO
// =========================================

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string
	Password string
	IP       string
}

// LoginResponse 登录响应
type LoginResponse struct {
	User         UserInfo `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"` // Access Token过期时间（秒）
}

// LogoutRequest 登出请求
type LogoutRequest struct {
	UserID       uint
	AccessToken  string
	AccessTTL    time.Duration // Access Token 剩余有效期
	RefreshToken string        // 可选
}

// RefreshResponse 刷新响应
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}
