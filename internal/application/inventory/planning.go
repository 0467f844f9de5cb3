package inventory

import (
	"context"
	"math"
	"time"

	"github.com/xiebiao/shoptrack/internal/domain/access"
	"github.com/xiebiao/shoptrack/internal/domain/catalog"
	"github.com/xiebiao/shoptrack/internal/domain/inventory"
	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
)

// PlanningUseCase 补货建议和需求预测
type PlanningUseCase struct {
	products      catalog.ProductRepository
	logs          inventory.LogRepository
	gate          *access.Gate
	defaultWindow int
	now           func() time.Time
}

// NewPlanningUseCase windowDays 是预测默认回看天数
func NewPlanningUseCase(products catalog.ProductRepository, logs inventory.LogRepository, gate *access.Gate, windowDays int) *PlanningUseCase {
	if windowDays <= 0 {
		windowDays = 30
	}
	return &PlanningUseCase{products: products, logs: logs, gate: gate, defaultWindow: windowDays, now: time.Now}
}

// ReorderSuggestion 到达补货点的商品
type ReorderSuggestion struct {
	ProductID    uint   `json:"product_id"`
	Name         string `json:"name"`
	Stock        int    `json:"stock"`
	ReorderPoint int    `json:"reorder_point"`
	SupplierID   *uint  `json:"supplier_id,omitempty"`
	LeadTimeDays int    `json:"lead_time_days"`
	Shortfall    int    `json:"shortfall"` // 补回补货点需要的数量
}

// Forecast 需求预测
type Forecast struct {
	ProductID         uint     `json:"product_id"`
	WindowDays        int      `json:"window_days"`
	Demand            int      `json:"demand"` // 窗口内的净消耗
	AvgDailyDemand    float64  `json:"avg_daily_demand"`
	Stock             int      `json:"stock"`
	DaysOfCover       *float64 `json:"days_of_cover,omitempty"` // 无消耗时为空
	LeadTimeDays      int      `json:"lead_time_days"`
	SuggestedQuantity int      `json:"suggested_quantity"`
}

var errInvalidWindow = apperrors.New(apperrors.ErrCodeInvalidParams, "预测窗口必须在1-365天之间")

// ReorderSuggestions stock <= reorder_point 的商品
func (uc *PlanningUseCase) ReorderSuggestions(ctx context.Context, actor access.Actor) ([]*ReorderSuggestion, error) {
	if err := uc.gate.Require(actor, access.ActionInventoryRead, access.Resource{Kind: access.KindProduct}); err != nil {
		return nil, err
	}

	products, err := uc.products.ListAtOrBelowReorderPoint(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*ReorderSuggestion, len(products))
	for i, p := range products {
		out[i] = &ReorderSuggestion{
			ProductID:    p.ID,
			Name:         p.Name,
			Stock:        p.Stock,
			ReorderPoint: p.ReorderPoint,
			SupplierID:   p.SupplierID,
			LeadTimeDays: p.LeadTimeDays,
			Shortfall:    p.ReorderPoint - p.Stock,
		}
	}
	return out, nil
}

// Forecast 按窗口内的销售和购物车净预留估算日均需求
// 建议补货量 = 日均需求 × 供货周期 + 补货点 - 当前库存，不小于0
func (uc *PlanningUseCase) Forecast(ctx context.Context, actor access.Actor, productID uint, windowDays int) (*Forecast, error) {
	if err := uc.gate.Require(actor, access.ActionInventoryRead, access.Resource{Kind: access.KindProduct}); err != nil {
		return nil, err
	}
	if windowDays == 0 {
		windowDays = uc.defaultWindow
	}
	if windowDays < 1 || windowDays > 365 {
		return nil, errInvalidWindow
	}

	p, err := uc.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	since := uc.now().AddDate(0, 0, -windowDays)
	sums, err := uc.logs.SumByType(ctx, productID, since)
	if err != nil {
		return nil, err
	}

	// 预留为负、释放为正，相加即净预留
	demand := -(sums[inventory.ChangeSale] + sums[inventory.ChangeCartReserved] + sums[inventory.ChangeCartReleased])
	if demand < 0 {
		demand = 0
	}
	avg := float64(demand) / float64(windowDays)

	f := &Forecast{
		ProductID:      productID,
		WindowDays:     windowDays,
		Demand:         demand,
		AvgDailyDemand: round2(avg),
		Stock:          p.Stock,
		LeadTimeDays:   p.LeadTimeDays,
	}
	if avg > 0 {
		cover := round2(float64(p.Stock) / avg)
		f.DaysOfCover = &cover
	}

	need := int(math.Ceil(avg*float64(p.LeadTimeDays))) + p.ReorderPoint - p.Stock
	if need > 0 {
		f.SuggestedQuantity = need
	}
	return f, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
