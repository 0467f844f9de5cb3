// Package access 访问控制：角色 + 资源归属
//
// 规则是按顺序求值的CEL表达式，第一条命中的规则决定结果，全部未命中则拒绝
package access

import (
	"context"

	"github.com/xiebiao/shoptrack/internal/domain/user"
)

// Action 受控操作
type Action string

const (
	ActionCatalogRead   Action = "catalog:read"
	ActionCatalogWrite  Action = "catalog:write"
	ActionStockAdjust   Action = "stock:adjust"
	ActionInventoryRead Action = "inventory:read" // 流水、对账、补货建议
	ActionCartRead      Action = "cart:read"
	ActionCartWrite     Action = "cart:write"
	ActionOrderCreate   Action = "order:create"
	ActionOrderRead     Action = "order:read"
	ActionOrderStatus   Action = "order:status"
	ActionPaymentStatus Action = "payment:status"
	ActionReturnCreate  Action = "return:create"
	ActionReturnRead    Action = "return:read"
	ActionReturnStatus  Action = "return:status"
	ActionAuditRead     Action = "audit:read"
	ActionRoleManage    Action = "role:manage"
	ActionMaintenance   Action = "maintenance"
)

// 资源类型
const (
	KindProduct  = "product"
	KindCategory = "category"
	KindSupplier = "supplier"
	KindCart     = "cart"
	KindOrder    = "order"
	KindPayment  = "payment"
	KindReturn   = "return"
	KindAudit    = "audit"
	KindUser     = "user"
)

// Actor 发起操作的主体，UserID 为0表示匿名
type Actor struct {
	UserID uint
	Roles  []user.Role
}

// Anonymous 匿名主体
var Anonymous = Actor{}

// IsAnonymous 是否匿名
func (a Actor) IsAnonymous() bool { return a.UserID == 0 }

// HasRole 是否拥有角色
func (a Actor) HasRole(role user.Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin 是否管理员
func (a Actor) IsAdmin() bool { return a.HasRole(user.RoleAdmin) }

// Resource 被访问的资源；OwnerID 为0表示没有归属（如商品）
type Resource struct {
	Kind    string
	OwnerID uint
}

// Owned 属于某用户的资源
func Owned(kind string, ownerID uint) Resource {
	return Resource{Kind: kind, OwnerID: ownerID}
}

// Decision 授权结果
type Decision struct {
	Allowed bool
	Reason  string
}

type actorKey struct{}

// WithActor 把主体放入ctx
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom 从ctx取主体，没有时返回匿名
func ActorFrom(ctx context.Context) Actor {
	if a, ok := ctx.Value(actorKey{}).(Actor); ok {
		return a
	}
	return Anonymous
}

// System 定时任务等内部调用使用的主体
var System = Actor{Roles: []user.Role{user.RoleAdmin}}

// Ref 写审计和库存流水用的主体ID，匿名和系统主体为nil
func (a Actor) Ref() *uint {
	if a.UserID == 0 {
		return nil
	}
	id := a.UserID
	return &id
}
