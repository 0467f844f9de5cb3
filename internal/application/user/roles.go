package user

import (
	"context"

	"github.com/xiebiao/shoptrack/internal/domain/access"
	"github.com/xiebiao/shoptrack/internal/domain/audit"
	"github.com/xiebiao/shoptrack/internal/domain/user"
)

// RoleUseCase 管理员授予/撤销角色
// 写 user_roles 审计；提交后清理角色缓存，下一次请求即按新角色授权
type RoleUseCase struct {
	userService user.Service
	audit       *audit.Recorder
	tx          user.Transactor
	gate        *access.Gate
}

// NewRoleUseCase 创建角色管理用例
func NewRoleUseCase(userService user.Service, recorder *audit.Recorder, tx user.Transactor, gate *access.Gate) *RoleUseCase {
	return &RoleUseCase{userService: userService, audit: recorder, tx: tx, gate: gate}
}

// RoleBindingInfo 角色绑定
type RoleBindingInfo struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
}

// RolesInfo 用户当前角色
type RolesInfo struct {
	UserID uint     `json:"user_id"`
	Roles  []string `json:"roles"`
}

// Grant 授予角色
func (uc *RoleUseCase) Grant(ctx context.Context, actor access.Actor, userID uint, role string) (*RolesInfo, error) {
	if err := uc.gate.Require(actor, access.ActionRoleManage, access.Owned(access.KindUser, userID)); err != nil {
		return nil, err
	}
	r, err := user.ParseRole(role)
	if err != nil {
		return nil, err
	}

	err = uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		b, err := uc.userService.GrantRole(txCtx, userID, r)
		if err != nil {
			return err
		}
		info := RoleBindingInfo{UserID: userID, Role: string(r)}
		return uc.audit.Record(txCtx, actor.Ref(), audit.ActionInsert, audit.TableUserRoles, b.ID, nil, info)
	})
	if err != nil {
		return nil, err
	}
	uc.gate.InvalidateRoles(ctx, userID)
	return uc.List(ctx, actor, userID)
}

// Revoke 撤销角色，customer 不可撤销
func (uc *RoleUseCase) Revoke(ctx context.Context, actor access.Actor, userID uint, role string) (*RolesInfo, error) {
	if err := uc.gate.Require(actor, access.ActionRoleManage, access.Owned(access.KindUser, userID)); err != nil {
		return nil, err
	}
	r, err := user.ParseRole(role)
	if err != nil {
		return nil, err
	}

	err = uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		if err := uc.userService.RevokeRole(txCtx, userID, r); err != nil {
			return err
		}
		info := RoleBindingInfo{UserID: userID, Role: string(r)}
		return uc.audit.Record(txCtx, actor.Ref(), audit.ActionDelete, audit.TableUserRoles, userID, info, nil)
	})
	if err != nil {
		return nil, err
	}
	uc.gate.InvalidateRoles(ctx, userID)
	return uc.List(ctx, actor, userID)
}

// List 用户角色
func (uc *RoleUseCase) List(ctx context.Context, actor access.Actor, userID uint) (*RolesInfo, error) {
	if err := uc.gate.Require(actor, access.ActionRoleManage, access.Owned(access.KindUser, userID)); err != nil {
		return nil, err
	}
	roles, err := uc.userService.Roles(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return &RolesInfo{UserID: userID, Roles: names}, nil
}
