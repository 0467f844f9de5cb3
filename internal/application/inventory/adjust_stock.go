// Package inventory 库存用例：管理员调整、查询、对账、补货建议和需求预测
package inventory

import (
	"context"

	"github.com/xiebiao/shoptrack/internal/domain/access"
	"github.com/xiebiao/shoptrack/internal/domain/inventory"
)

// AdjustStockUseCase 管理员手工调整库存
// 只接受 restock（补货，必须为正）和 adjustment（盘点，可正可负）；
// 其余类型由购物车、结算、退货流程内部产生
type AdjustStockUseCase struct {
	inventory     inventory.Service
	gate          *access.Gate
	allowNegative bool
}

// NewAdjustStockUseCase 创建库存调整用例
func NewAdjustStockUseCase(svc inventory.Service, gate *access.Gate, allowNegative bool) *AdjustStockUseCase {
	return &AdjustStockUseCase{inventory: svc, gate: gate, allowNegative: allowNegative}
}

// AdjustStockRequest 库存调整请求
type AdjustStockRequest struct {
	ProductID  uint
	Delta      int
	ChangeType string
	Note       string
}

// Execute 执行调整；allowNegative 关闭时结果不能小于0
func (uc *AdjustStockUseCase) Execute(ctx context.Context, actor access.Actor, req AdjustStockRequest) (*LogEntryInfo, error) {
	if err := uc.gate.Require(actor, access.ActionStockAdjust, access.Resource{Kind: access.KindProduct}); err != nil {
		return nil, err
	}

	changeType := inventory.ChangeType(req.ChangeType)
	if changeType == "" {
		changeType = inventory.ChangeAdjustment
	}
	if changeType != inventory.ChangeRestock && changeType != inventory.ChangeAdjustment {
		return nil, inventory.ErrInvalidChangeType.WithDetail("手工调整只支持 restock 和 adjustment")
	}

	adj := inventory.Adjustment{
		ProductID:  req.ProductID,
		Delta:      req.Delta,
		ChangeType: changeType,
		ActorID:    actor.Ref(),
		Reference:  "manual",
		Note:       req.Note,
	}

	adjust := uc.inventory.CheckedAdjustStock
	if uc.allowNegative {
		adjust = uc.inventory.AdjustStock
	}
	entry, err := adjust(ctx, adj)
	if err != nil {
		return nil, err
	}
	return ToLogEntryInfo(entry), nil
}
