// Package user 注册、登录、登出、刷新Token和角色管理用例
package user

import (
	"context"
	"time"

	"github.com/xiebiao/shoptrack/internal/domain/access"
	"github.com/xiebiao/shoptrack/internal/domain/user"
)

// RegisterUseCase 用户注册用例
// 注册即绑定 customer 角色，同一事务内完成
type RegisterUseCase struct {
	userService user.Service
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service) *RegisterUseCase {
	return &RegisterUseCase{userService: userService}
}

// Execute 执行注册
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*UserInfo, error) {
	u, err := uc.userService.Register(ctx, req.Email, req.Password, req.Nickname)
	if err != nil {
		return nil, err
	}
	return toUserInfo(u, []user.Role{user.RoleCustomer}), nil
}

// ProfileUseCase 当前用户信息
type ProfileUseCase struct {
	users user.Repository
}

// NewProfileUseCase 创建用户信息用例
func NewProfileUseCase(users user.Repository) *ProfileUseCase {
	return &ProfileUseCase{users: users}
}

// Execute 角色取自已解析的 actor
func (uc *ProfileUseCase) Execute(ctx context.Context, actor access.Actor) (*UserInfo, error) {
	if actor.IsAnonymous() {
		return nil, errNotLoggedIn
	}
	u, err := uc.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return toUserInfo(u, actor.Roles), nil
}

// =========================================
// 应用层DTO
// =========================================

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string
	Password string
	Nickname string
}

// UserInfo 用户信息，不含密码
type UserInfo struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserInfo(u *user.User, roles []user.Role) *UserInfo {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return &UserInfo{ID: u.ID, Email: u.Email, Nickname: u.Nickname, Roles: names, CreatedAt: u.CreatedAt}
}
