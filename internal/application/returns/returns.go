// Package returns 退货申请和退货入库用例
package returns

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/shoptrack/internal/domain/access"
	"github.com/xiebiao/shoptrack/internal/domain/audit"
	"github.com/xiebiao/shoptrack/internal/domain/event"
	"github.com/xiebiao/shoptrack/internal/domain/inventory"
	"github.com/xiebiao/shoptrack/internal/domain/order"
	"github.com/xiebiao/shoptrack/internal/domain/returns"
	"github.com/xiebiao/shoptrack/pkg/metrics"
	"github.com/xiebiao/shoptrack/pkg/tracing"
)

// ReturnUseCase 退货用例
// 入库只发生一次：状态首次变为 restocked 时写一条 +qty 的 return 流水，
// 重复入库由条件更新拦截并返回 ErrAlreadyRestocked
type ReturnUseCase struct {
	returns   returns.Repository
	orders    order.Repository
	inventory inventory.Service
	audit     *audit.Recorder
	tx        inventory.Transactor
	gate      *access.Gate
	log       *zap.Logger
}

// NewReturnUseCase 创建退货用例
func NewReturnUseCase(
	repo returns.Repository,
	orders order.Repository,
	svc inventory.Service,
	recorder *audit.Recorder,
	tx inventory.Transactor,
	gate *access.Gate,
	log *zap.Logger,
) *ReturnUseCase {
	return &ReturnUseCase{
		returns:   repo,
		orders:    orders,
		inventory: svc,
		audit:     recorder,
		tx:        tx,
		gate:      gate,
		log:       log,
	}
}

// ReturnInfo 退货申请，也用作审计快照
type ReturnInfo struct {
	ID          uint       `json:"id"`
	OrderID     uint       `json:"order_id"`
	UserID      uint       `json:"user_id"`
	ProductID   uint       `json:"product_id"`
	Quantity    int        `json:"quantity"`
	Reason      string     `json:"reason"`
	Status      string     `json:"status"`
	RestockedAt *time.Time `json:"restocked_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// RequestReturnRequest 退货申请
type RequestReturnRequest struct {
	OrderID   uint
	ProductID uint
	Quantity  int
	Reason    string
}

// ListReturnsRequest 退货列表；UserID 只对管理员生效
type ListReturnsRequest struct {
	UserID   *uint
	OrderID  *uint
	Status   string
	Page     int
	PageSize int
}

// ListReturnsResponse 退货列表
type ListReturnsResponse struct {
	Returns  []*ReturnInfo `json:"returns"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

func toReturnInfo(r *returns.Return) *ReturnInfo {
	return &ReturnInfo{
		ID:          r.ID,
		OrderID:     r.OrderID,
		UserID:      r.UserID,
		ProductID:   r.ProductID,
		Quantity:    r.Quantity,
		Reason:      r.Reason,
		Status:      string(r.Status),
		RestockedAt: r.RestockedAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// RequestReturn 客户对自己订单中的商品发起退货
// 累计退货数量（不含已拒绝）不能超过订单中的购买数量
// 订单不存在和订单属于他人返回同一个 ErrOrderNotFound
func (uc *ReturnUseCase) RequestReturn(ctx context.Context, actor access.Actor, req RequestReturnRequest) (*ReturnInfo, error) {
	var ret *returns.Return
	err := uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		o, err := uc.orders.LockByID(txCtx, req.OrderID)
		if err != nil {
			return err
		}
		if err := uc.gate.Require(actor, access.ActionReturnCreate, access.Owned(access.KindReturn, o.UserID)); err != nil {
			// 别人的订单按不存在处理，不暴露订单号是否有效
			if actor.UserID != 0 && actor.UserID != o.UserID {
				return order.ErrOrderNotFound
			}
			return err
		}

		ordered := o.QuantityOf(req.ProductID)
		if ordered == 0 {
			return returns.ErrProductNotInOrder
		}
		returned, err := uc.returns.SumReturnedQuantity(txCtx, o.ID, req.ProductID)
		if err != nil {
			return err
		}
		if req.Quantity > ordered-returned {
			return returns.ErrQuantityExceeded.WithDetail("已购%d，已申请%d", ordered, returned)
		}

		ret, err = returns.NewReturn(o.ID, o.UserID, req.ProductID, req.Quantity, req.Reason)
		if err != nil {
			return err
		}
		if err := uc.returns.Create(txCtx, ret); err != nil {
			return err
		}
		return uc.audit.Record(txCtx, actor.Ref(), audit.ActionInsert, audit.TableReturns, ret.ID, nil, toReturnInfo(ret))
	})
	if err != nil {
		return nil, err
	}
	return toReturnInfo(ret), nil
}

// UpdateStatus 管理员处理退货；变为 restocked 时库存 +qty
func (uc *ReturnUseCase) UpdateStatus(ctx context.Context, actor access.Actor, returnID uint, status string) (info *ReturnInfo, err error) {
	if err := uc.gate.Require(actor, access.ActionReturnStatus, access.Resource{Kind: access.KindReturn}); err != nil {
		return nil, err
	}
	target, err := returns.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "returns", "UpdateStatus")
	span.SetAttributes(attribute.Int64("return_id", int64(returnID)), attribute.String("status", string(target)))
	defer func() {
		if target == returns.StatusRestocked {
			metrics.RecordRestock(err == nil)
		}
		tracing.EndSpan(span, err)
	}()

	var ret *returns.Return
	err = uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		ret, err = uc.returns.LockByID(txCtx, returnID)
		if err != nil {
			return err
		}
		before := toReturnInfo(ret)

		if err := ret.TransitionTo(target); err != nil {
			return err
		}
		// restocked 时为条件更新，并发的第二次入库在这里失败
		if err := uc.returns.UpdateStatus(txCtx, ret); err != nil {
			return err
		}

		if target == returns.StatusRestocked {
			if err := uc.restock(txCtx, actor, ret); err != nil {
				return err
			}
		}
		return uc.audit.Record(txCtx, actor.Ref(), audit.ActionUpdate, audit.TableReturns, ret.ID, before, toReturnInfo(ret))
	})
	if err != nil {
		if errors.Is(err, returns.ErrAlreadyRestocked) {
			uc.log.Info("duplicate restock rejected", zap.Uint("return_id", returnID))
		}
		return nil, err
	}
	return toReturnInfo(ret), nil
}

func (uc *ReturnUseCase) restock(ctx context.Context, actor access.Actor, ret *returns.Return) error {
	_, err := uc.inventory.AdjustStock(ctx, inventory.Adjustment{
		ProductID:  ret.ProductID,
		Delta:      ret.Quantity,
		ChangeType: inventory.ChangeReturn,
		ActorID:    actor.Ref(),
		Reference:  fmt.Sprintf("return:%d", ret.ID),
	})
	if err != nil {
		return err
	}
	event.Record(ctx, event.New(event.TypeReturnRestocked, strconv.FormatUint(uint64(ret.ID), 10), returns.Restocked{
		ReturnID:  ret.ID,
		OrderID:   ret.OrderID,
		ProductID: ret.ProductID,
		Quantity:  ret.Quantity,
	}))
	return nil
}

// Get 退货详情
func (uc *ReturnUseCase) Get(ctx context.Context, actor access.Actor, returnID uint) (*ReturnInfo, error) {
	ret, err := uc.returns.FindByID(ctx, returnID)
	if err != nil {
		return nil, err
	}
	if err := uc.gate.Require(actor, access.ActionReturnRead, access.Owned(access.KindReturn, ret.UserID)); err != nil {
		return nil, err
	}
	return toReturnInfo(ret), nil
}

// List 管理员看全部，客户只看自己的
func (uc *ReturnUseCase) List(ctx context.Context, actor access.Actor, req ListReturnsRequest) (*ListReturnsResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}
	filter := returns.ListFilter{OrderID: req.OrderID, Page: req.Page, PageSize: req.PageSize}
	if req.Status != "" {
		st, err := returns.ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}

	owner := actor.UserID
	if actor.IsAdmin() {
		filter.UserID = req.UserID
		if req.UserID != nil {
			owner = *req.UserID
		}
	} else {
		filter.UserID = &owner
	}
	if err := uc.gate.Require(actor, access.ActionReturnRead, access.Owned(access.KindReturn, owner)); err != nil {
		return nil, err
	}

	list, total, err := uc.returns.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &ListReturnsResponse{Returns: make([]*ReturnInfo, len(list)), Total: total, Page: req.Page, PageSize: req.PageSize}
	for i, r := range list {
		resp.Returns[i] = toReturnInfo(r)
	}
	return resp, nil
}
