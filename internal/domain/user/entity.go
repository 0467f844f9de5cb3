package user

import (
	"time"
)

// User 用户实体（聚合根）
// 密码只保存bcrypt哈希；角色不在实体上，由 RoleRepository 单独管理
type User struct {
	ID        uint
	Email     string
	Password  string // bcrypt哈希值
	Nickname  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户（工厂方法）
func NewUser(email, hashedPassword, nickname string) *User {
	now := time.Now()
	return &User{
		Email:     email,
		Password:  hashedPassword,
		Nickname:  nickname,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// UpdateNickname 更新昵称
func (u *User) UpdateNickname(nickname string) {
	u.Nickname = nickname
	u.UpdatedAt = time.Now()
}

// Role 角色
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// ParseRole 解析角色
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleCustomer:
		return r, nil
	}
	return "", ErrInvalidRole
}

// RoleBinding 用户-角色绑定，(UserID, Role) 唯一
type RoleBinding struct {
	ID        uint
	UserID    uint
	Role      Role
	CreatedAt time.Time
}
