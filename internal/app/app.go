// Package app 进程级装配：依赖注入（Wire）、后台任务和HTTP服务的生命周期
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	appcart "github.com/xiebiao/shoptrack/internal/application/cart"
	appuser "github.com/xiebiao/shoptrack/internal/application/user"
	"github.com/xiebiao/shoptrack/internal/domain/access"
	"github.com/xiebiao/shoptrack/internal/domain/event"
	"github.com/xiebiao/shoptrack/internal/domain/user"
	"github.com/xiebiao/shoptrack/internal/infrastructure/config"
	"github.com/xiebiao/shoptrack/internal/infrastructure/events"
	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
	"github.com/xiebiao/shoptrack/pkg/mq"
)

// App 一个装配完成的ShopTrack进程
type App struct {
	Engine *gin.Engine

	cfg   *config.Config
	log   *zap.Logger
	users user.Repository
	roles *appuser.RoleUseCase
	carts *appcart.CartUseCase
}

// NewApp 由Wire调用
func NewApp(
	cfg *config.Config,
	log *zap.Logger,
	engine *gin.Engine,
	users user.Repository,
	roles *appuser.RoleUseCase,
	carts *appcart.CartUseCase,
) *App {
	return &App{
		Engine: engine,
		cfg:    cfg,
		log:    log,
		users:  users,
		roles:  roles,
		carts:  carts,
	}
}

// BootstrapAdmins 给 access.admin_emails 中已注册的账号授予 admin
// 以系统主体授予，审计记录的操作人为空；账号不存在时跳过，已是管理员时忽略
func (a *App) BootstrapAdmins(ctx context.Context) error {
	for _, email := range a.cfg.Access.AdminEmails {
		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}
		u, err := a.users.FindByEmail(ctx, email)
		if errors.Is(err, apperrors.ErrUserNotFound) {
			a.log.Warn("admin account not registered yet", zap.String("email", email))
			continue
		}
		if err != nil {
			return err
		}

		_, err = a.roles.Grant(ctx, access.System, u.ID, string(user.RoleAdmin))
		switch {
		case err == nil:
			a.log.Info("admin role granted", zap.String("email", email), zap.Uint("user_id", u.ID))
		case errors.Is(err, user.ErrRoleAlreadyGranted):
		default:
			return fmt.Errorf("授予管理员失败(%s): %w", email, err)
		}
	}
	return nil
}

// Run 启动HTTP服务、购物车清理和低库存消费者，直到ctx取消后优雅退出
// 任何一个任务出错都会让其余任务一起退出
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:      a.Engine,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	var lowStock *mq.Consumer
	if rabbit := a.cfg.Events.RabbitMQ; a.cfg.Events.Driver == config.EventsRabbitMQ && rabbit.LowStockQueue != "" {
		consumer, err := mq.NewConsumer(rabbit.URL, rabbit.Exchange, rabbit.ExchangeType, rabbit.LowStockQueue,
			[]string{event.TypeStockLow}, a.log)
		if err != nil {
			return err
		}
		defer consumer.Close()
		lowStock = consumer
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP服务异常退出: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		a.log.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return a.carts.RunSweeper(ctx, a.cfg.Inventory.CartReservationTTL, a.cfg.Inventory.CartSweepInterval)
	})

	if lowStock != nil {
		handler := events.NewLowStockHandler(lowStock.Queue(), events.NewLogAlerter(a.log), a.log)
		g.Go(func() error {
			return events.RunLowStockConsumer(ctx, lowStock, handler)
		})
	}

	return g.Wait()
}
