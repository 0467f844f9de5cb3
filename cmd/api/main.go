// @title           ShopTrack API
// @version         1.0
// @description     库存与订单台账：商品目录、购物车预留、结算、退货入库、审计
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/shoptrack/internal/app"
	"github.com/xiebiao/shoptrack/internal/infrastructure/config"
	"github.com/xiebiao/shoptrack/pkg/logger"
	"github.com/xiebiao/shoptrack/pkg/tracing"
)

func main() {
	// 1. 加载配置（config/config.yaml，SHOPTRACK_ENV 选择环境，SHOPTRACK_* 环境变量覆盖）
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 2. 日志
	zlog, err := logger.New(logger.Options{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = zlog.Sync() }()
	zap.ReplaceGlobals(zlog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zlog); err != nil {
		zlog.Error("shoptrack exited", zap.Error(err))
		os.Exit(1)
	}
	zlog.Info("shoptrack stopped")
}

func run(ctx context.Context, cfg *config.Config, zlog *zap.Logger) error {
	// 3. 链路追踪
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
		if err != nil {
			return err
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(flushCtx); err != nil {
				zlog.Warn("tracer shutdown failed", zap.Error(err))
			}
		}()
	}

	// 4. 依赖注入（wire_gen.go）
	application, cleanup, err := app.Initialize(ctx, cfg, zlog)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := application.BootstrapAdmins(ctx); err != nil {
		return err
	}

	zlog.Info("shoptrack starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("db", cfg.Database.Driver),
		zap.String("events", cfg.Events.Driver),
	)
	return application.Run(ctx)
}
