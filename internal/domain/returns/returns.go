// Package returns 退货申请及其状态机
//
// 状态：pending -> approved | rejected | restocked
//
//	approved -> restocked | rejected
//	rejected -> restocked
//	restocked 为终态，进入 restocked 时回补库存且只回补一次
package returns

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
)

// Status 退货状态
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusRestocked Status = "restocked"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusApproved, StatusRejected, StatusRestocked},
	StatusApproved:  {StatusRestocked, StatusRejected},
	StatusRejected:  {StatusRestocked},
	StatusRestocked: {},
}

var (
	ErrReturnNotFound          = apperrors.New(apperrors.ErrCodeReturnNotFound, "退货申请不存在")
	ErrAlreadyRestocked        = apperrors.New(apperrors.ErrCodeConflict, "退货已入库")
	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeInvalidStatusTransition, "退货状态不允许此操作")
	ErrInvalidStatus           = apperrors.New(apperrors.ErrCodeInvalidParams, "未知的退货状态")
	ErrInvalidQuantity         = apperrors.New(apperrors.ErrCodeInvalidParams, "退货数量必须大于0")
	ErrProductNotInOrder       = apperrors.New(apperrors.ErrCodeInvalidParams, "订单中没有该商品")
	ErrQuantityExceeded        = apperrors.New(apperrors.ErrCodeBusinessError, "退货数量超过可退数量")
	ErrReasonRequired          = apperrors.New(apperrors.ErrCodeInvalidParams, "请填写退货原因")
)

// ParseStatus 解析退货状态
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := transitions[st]; !ok {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// Return 退货申请
type Return struct {
	ID          uint
	OrderID     uint
	UserID      uint
	ProductID   uint
	Quantity    int
	Reason      string
	Status      Status
	RestockedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewReturn 创建待审核的退货申请
func NewReturn(orderID, userID, productID uint, qty int, reason string) (*Return, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}
	now := time.Now()
	return &Return{
		OrderID:   orderID,
		UserID:    userID,
		ProductID: productID,
		Quantity:  qty,
		Reason:    reason,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// TransitionTo 状态流转；离开 restocked 返回 ErrAlreadyRestocked
func (r *Return) TransitionTo(target Status) error {
	if r.Status == StatusRestocked {
		return ErrAlreadyRestocked
	}
	for _, allowed := range transitions[r.Status] {
		if allowed == target {
			now := time.Now()
			r.Status = target
			r.UpdatedAt = now
			if target == StatusRestocked {
				r.RestockedAt = &now
			}
			return nil
		}
	}
	return ErrInvalidStatusTransition.WithDetail("%s -> %s", r.Status, target)
}

// IsOwnedBy 申请是否属于该用户
func (r *Return) IsOwnedBy(userID uint) bool {
	return r.UserID == userID
}

// Repository 退货仓储
type Repository interface {
	Create(ctx context.Context, r *Return) error
	FindByID(ctx context.Context, id uint) (*Return, error)

	// LockByID 加行锁读取，必须在事务内
	LockByID(ctx context.Context, id uint) (*Return, error)

	// UpdateStatus 更新为 r.Status；目标为 restocked 时附加
	// WHERE status <> 'restocked'，未更新到行返回 ErrAlreadyRestocked
	UpdateStatus(ctx context.Context, r *Return) error

	// SumReturnedQuantity 某订单某商品未被拒绝的退货数量之和
	SumReturnedQuantity(ctx context.Context, orderID, productID uint) (int, error)

	List(ctx context.Context, f ListFilter) ([]*Return, int64, error)
}

// ListFilter 退货列表条件
type ListFilter struct {
	UserID   *uint
	OrderID  *uint
	Status   Status
	Page     int
	PageSize int
}

// Restocked return.restocked 事件负载
type Restocked struct {
	ReturnID  uint `json:"return_id"`
	OrderID   uint `json:"order_id"`
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}
