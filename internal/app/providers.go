package app

import (
	"context"

	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appaudit "github.com/xiebiao/shoptrack/internal/application/audit"
	appcart "github.com/xiebiao/shoptrack/internal/application/cart"
	appcatalog "github.com/xiebiao/shoptrack/internal/application/catalog"
	appinventory "github.com/xiebiao/shoptrack/internal/application/inventory"
	apporder "github.com/xiebiao/shoptrack/internal/application/order"
	appreturns "github.com/xiebiao/shoptrack/internal/application/returns"
	appuser "github.com/xiebiao/shoptrack/internal/application/user"
	"github.com/xiebiao/shoptrack/internal/domain/access"
	"github.com/xiebiao/shoptrack/internal/domain/audit"
	"github.com/xiebiao/shoptrack/internal/domain/cart"
	"github.com/xiebiao/shoptrack/internal/domain/catalog"
	"github.com/xiebiao/shoptrack/internal/domain/inventory"
	"github.com/xiebiao/shoptrack/internal/domain/user"
	"github.com/xiebiao/shoptrack/internal/infrastructure/config"
	"github.com/xiebiao/shoptrack/internal/infrastructure/events"
	"github.com/xiebiao/shoptrack/internal/infrastructure/persistence/gormstore"
	"github.com/xiebiao/shoptrack/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/shoptrack/internal/interface/http/handler"
	"github.com/xiebiao/shoptrack/internal/interface/http/middleware"
	"github.com/xiebiao/shoptrack/internal/interface/http/router"
	"github.com/xiebiao/shoptrack/pkg/jwt"
)

// ========================================
// Wire Provider Sets
// ========================================

// infrastructureSet 数据库、Redis、事件、事务
var infrastructureSet = wire.NewSet(
	provideDB,
	provideRedis,
	provideSessionStore,
	provideEventPublisher,
	provideTransactor,
	gormstore.NewTxManager,
	wire.Bind(new(inventory.Transactor), new(*events.Transactor)),
	wire.Bind(new(user.Transactor), new(*events.Transactor)),
)

// repositorySet 仓储
var repositorySet = wire.NewSet(
	gormstore.NewUserRepository,
	gormstore.NewRoleRepository,
	gormstore.NewProductRepository,
	gormstore.NewCategoryRepository,
	gormstore.NewSupplierRepository,
	gormstore.NewStockRepository,
	gormstore.NewInventoryLogRepository,
	gormstore.NewAuditRepository,
	gormstore.NewCartRepository,
	gormstore.NewOrderRepository,
	gormstore.NewPaymentRepository,
	gormstore.NewReturnRepository,
)

// domainSet 领域服务和访问控制
var domainSet = wire.NewSet(
	provideUserService,
	inventory.NewService,
	audit.NewRecorder,
	provideGate,
)

// applicationSet 用例
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewProfileUseCase,
	provideLoginUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewRefreshTokenUseCase,
	appuser.NewRoleUseCase,
	appcatalog.NewProductUseCase,
	appcatalog.NewTaxonomyUseCase,
	appcatalog.NewApplyBulkDiscountUseCase,
	provideAdjustStockUseCase,
	appinventory.NewQueryUseCase,
	providePlanningUseCase,
	provideCartUseCase,
	provideCheckoutOptions,
	apporder.NewCheckoutUseCase,
	apporder.NewQueryUseCase,
	apporder.NewStatusUseCase,
	appreturns.NewReturnUseCase,
	appaudit.NewListAuditUseCase,
)

// interfaceSet 中间件、处理器、路由
var interfaceSet = wire.NewSet(
	provideJWTManager,
	provideTokenBlacklist,
	middleware.NewAuthMiddleware,
	wire.Bind(new(middleware.ActorResolver), new(*access.Gate)),
	handler.NewUserHandler,
	handler.NewCatalogHandler,
	provideCartHandler,
	handler.NewOrderHandler,
	handler.NewReturnHandler,
	handler.NewInventoryHandler,
	handler.NewAuditHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)

// ========================================
// Custom Providers
// ========================================
// 构造函数参数是基础类型（bool、int、time.Duration）或可能为nil的依赖时，
// 需要从Config里提取，Wire无法自动区分

// provideDB 创建数据库连接，cleanup 关闭连接池
func provideDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, func(), error) {
	db, err := gormstore.NewDB(cfg.Database, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

// provideRedis 未启用时返回nil，会话和角色缓存随之关闭
func provideRedis(ctx context.Context, cfg *config.Config, log *zap.Logger) (*goredis.Client, func(), error) {
	if !cfg.Redis.Enabled {
		log.Info("redis disabled, sessions and role cache off")
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// provideSessionStore 返回接口，Redis关闭时是真正的nil接口
func provideSessionStore(client *goredis.Client) appuser.SessionStore {
	if client == nil {
		return nil
	}
	return redis.NewSessionStore(client)
}

func provideTokenBlacklist(store appuser.SessionStore) middleware.TokenBlacklist {
	if store == nil {
		return nil
	}
	return store
}

// provideEventPublisher 按 events.driver 创建发布者，cleanup 关闭连接
func provideEventPublisher(cfg *config.Config, log *zap.Logger) (events.Publisher, func(), error) {
	pub, err := events.NewPublisher(cfg.Events, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := pub.Close(); err != nil {
			log.Warn("close event publisher failed", zap.Error(err))
		}
	}
	return pub, cleanup, nil
}

// provideTransactor 事务提交后发布缓冲的领域事件
func provideTransactor(tm *gormstore.TxManager, pub events.Publisher, log *zap.Logger) *events.Transactor {
	return events.NewTransactor(tm, pub, log)
}

func provideUserService(repo user.Repository, roles user.RoleRepository, tx user.Transactor, cfg *config.Config) user.Service {
	return user.NewService(repo, roles, tx, cfg.Access.BcryptCost)
}

// provideGate 加载默认规则；Redis可用且TTL>0时开启角色缓存
func provideGate(roles user.RoleRepository, client *goredis.Client, cfg *config.Config, log *zap.Logger) (*access.Gate, error) {
	var opts []access.Option
	if client != nil && cfg.Access.RoleCacheTTL > 0 {
		opts = append(opts, access.WithRoleCache(redis.NewRoleCache(client), cfg.Access.RoleCacheTTL))
	}
	return access.NewGate(roles, log, opts...)
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire, cfg.JWT.RefreshTokenExpire)
}

// provideLoginUseCase 会话有效期与 Refresh Token 一致
func provideLoginUseCase(users user.Service, jwtManager *jwt.Manager, store appuser.SessionStore, cfg *config.Config, log *zap.Logger) *appuser.LoginUseCase {
	return appuser.NewLoginUseCase(users, jwtManager, store, cfg.JWT.RefreshTokenExpire, log)
}

func provideAdjustStockUseCase(svc inventory.Service, gate *access.Gate, cfg *config.Config) *appinventory.AdjustStockUseCase {
	return appinventory.NewAdjustStockUseCase(svc, gate, cfg.Inventory.AllowNegativeStock)
}

func providePlanningUseCase(products catalog.ProductRepository, logs inventory.LogRepository, gate *access.Gate, cfg *config.Config) *appinventory.PlanningUseCase {
	return appinventory.NewPlanningUseCase(products, logs, gate, cfg.Inventory.ForecastWindowDays)
}

func provideCartUseCase(
	carts cart.Repository,
	products catalog.ProductRepository,
	svc inventory.Service,
	tx inventory.Transactor,
	gate *access.Gate,
	cfg *config.Config,
	log *zap.Logger,
) *appcart.CartUseCase {
	return appcart.NewCartUseCase(carts, products, svc, tx, gate, cfg.Inventory.AllowNegativeStock, log)
}

func provideCheckoutOptions(cfg *config.Config) apporder.CheckoutOptions {
	return apporder.CheckoutOptions{
		LegacyDecrement: cfg.Inventory.LegacyCheckoutDecrement,
		AllowNegative:   cfg.Inventory.AllowNegativeStock,
	}
}

func provideCartHandler(carts *appcart.CartUseCase, cfg *config.Config) *handler.CartHandler {
	return handler.NewCartHandler(carts, cfg.Inventory.CartReservationTTL)
}
