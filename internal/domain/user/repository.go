package user

import (
	"context"
)

// Repository 用户仓储接口
type Repository interface {
	// Create 创建用户，邮箱已存在返回 ErrEmailDuplicate
	Create(ctx context.Context, user *User) error

	// FindByID 不存在返回 ErrUserNotFound
	FindByID(ctx context.Context, id uint) (*User, error)

	// FindByEmail 不存在返回 ErrUserNotFound
	FindByEmail(ctx context.Context, email string) (*User, error)

	Update(ctx context.Context, user *User) error
}

// RoleRepository 角色绑定仓储
type RoleRepository interface {
	// Grant 绑定已存在时返回 ErrRoleAlreadyGranted
	Grant(ctx context.Context, b *RoleBinding) error

	// Revoke 绑定不存在时返回 ErrRoleNotGranted
	Revoke(ctx context.Context, userID uint, role Role) error

	// ListRoles 用户的全部角色
	ListRoles(ctx context.Context, userID uint) ([]Role, error)
}

// Transactor 事务边界
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
