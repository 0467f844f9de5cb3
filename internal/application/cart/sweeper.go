package cart

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/shoptrack/internal/domain/access"
	"github.com/xiebiao/shoptrack/internal/domain/cart"
)

const sweepBatch = 200

// ReleaseStaleCarts 释放超过 ttl 未更新的购物车条目，返回释放条数
// 每条在独立事务里处理，单条失败不影响其他条目
func (uc *CartUseCase) ReleaseStaleCarts(ctx context.Context, actor access.Actor, ttl time.Duration) (int, error) {
	if err := uc.gate.Require(actor, access.ActionMaintenance, access.Resource{Kind: access.KindCart}); err != nil {
		return 0, err
	}

	before := time.Now().Add(-ttl)
	lines, err := uc.carts.ListStale(ctx, before, sweepBatch)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, stale := range lines {
		err := uc.tx.Transaction(ctx, func(txCtx context.Context) error {
			// 加锁重读，期间被用户改过的条目跳过
			line, err := uc.carts.Find(txCtx, stale.UserID, stale.ProductID)
			if err != nil {
				return err
			}
			if !line.UpdatedAt.Before(before) {
				return nil
			}
			if err := uc.release(txCtx, nil, line, line.Quantity); err != nil {
				return err
			}
			if err := uc.carts.Delete(txCtx, line.ID); err != nil {
				return err
			}
			released++
			return nil
		})
		if err != nil && !errors.Is(err, cart.ErrLineNotFound) {
			uc.log.Warn("release stale cart line failed",
				zap.Uint("user_id", stale.UserID), zap.Uint("product_id", stale.ProductID), zap.Error(err))
		}
	}

	if released > 0 {
		uc.log.Info("stale cart lines released", zap.Int("count", released))
	}
	return released, nil
}

// RunSweeper 按 interval 周期性释放过期预留，直到ctx取消
func (uc *CartUseCase) RunSweeper(ctx context.Context, ttl, interval time.Duration) error {
	if ttl <= 0 || interval <= 0 {
		uc.log.Info("cart sweeper disabled")
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := uc.ReleaseStaleCarts(ctx, access.System, ttl); err != nil {
				uc.log.Error("cart sweep failed", zap.Error(err))
			}
		}
	}
}
