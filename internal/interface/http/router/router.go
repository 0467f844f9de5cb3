// Package router 组装Gin引擎：全局中间件 + 路由表
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/xiebiao/shoptrack/internal/infrastructure/config"
	"github.com/xiebiao/shoptrack/internal/interface/http/handler"
	"github.com/xiebiao/shoptrack/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
	"github.com/xiebiao/shoptrack/pkg/response"
)

// Handlers 所有HTTP处理器
type Handlers struct {
	User      *handler.UserHandler
	Catalog   *handler.CatalogHandler
	Cart      *handler.CartHandler
	Order     *handler.OrderHandler
	Return    *handler.ReturnHandler
	Inventory *handler.InventoryHandler
	Audit     *handler.AuditHandler
}

// New 创建Gin引擎并注册路由
//
// 中间件顺序：Recovery → RequestLogger → Metrics → CORS → 路由匹配 → Authenticate → (RequireAuth) → Handler
// /api/v1 整组先做可选认证，匿名能否访问由访问控制规则决定；
// 需要登录的分组再挂 RequireAuth，未登录时返回40100而不是40104
func New(cfg *config.Config, h Handlers, auth *middleware.AuthMiddleware, log *zap.Logger) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestLogger(log))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
	}
	r.Use(middleware.CORS(cfg.Server.CORS))

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}
	if cfg.Server.EnableSwagger {
		// 访问 /swagger/index.html；生产环境建议关闭
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")
	v1.Use(auth.Authenticate())
	login := auth.RequireAuth()

	// 用户
	users := v1.Group("/users")
	{
		users.POST("/register", h.User.Register)
		users.POST("/login", h.User.Login)
		users.POST("/refresh", h.User.Refresh)
		users.POST("/logout", login, h.User.Logout)

		users.GET("/:id/roles", login, h.User.ListRoles)
		users.POST("/:id/roles", login, h.User.GrantRole)
		users.DELETE("/:id/roles/:role", login, h.User.RevokeRole)
	}
	v1.GET("/profile", login, h.User.Profile)

	// 商品目录：读公开，写需要 catalog:write
	products := v1.Group("/products")
	{
		products.GET("", h.Catalog.ListProducts)
		products.GET("/:id", h.Catalog.GetProduct)
		products.POST("", login, h.Catalog.CreateProduct)
		products.POST("/discount", login, h.Catalog.ApplyBulkDiscount)
		products.PUT("/:id", login, h.Catalog.UpdateProduct)
		products.DELETE("/:id", login, h.Catalog.DeleteProduct)
	}
	categories := v1.Group("/categories")
	{
		categories.GET("", h.Catalog.ListCategories)
		categories.POST("", login, h.Catalog.CreateCategory)
		categories.PUT("/:id", login, h.Catalog.UpdateCategory)
		categories.DELETE("/:id", login, h.Catalog.DeleteCategory)
	}
	suppliers := v1.Group("/suppliers")
	{
		suppliers.GET("", h.Catalog.ListSuppliers)
		suppliers.POST("", login, h.Catalog.CreateSupplier)
		suppliers.PUT("/:id", login, h.Catalog.UpdateSupplier)
		suppliers.DELETE("/:id", login, h.Catalog.DeleteSupplier)
	}

	// 库存
	inventory := v1.Group("/inventory")
	{
		inventory.GET("/:id/stock", h.Inventory.GetStock)
		inventory.POST("/adjust", login, h.Inventory.AdjustStock)
		inventory.GET("/logs", login, h.Inventory.Logs)
		inventory.GET("/reorder", login, h.Inventory.ReorderSuggestions)
		inventory.GET("/:id/reconcile", login, h.Inventory.Reconcile)
		inventory.GET("/:id/forecast", login, h.Inventory.Forecast)
	}

	// 以下全部需要登录
	authorized := v1.Group("")
	authorized.Use(login)
	{
		cart := authorized.Group("/cart")
		cart.GET("", h.Cart.ListCart)
		cart.POST("/items", h.Cart.AddToCart)
		cart.PUT("/items/:product_id", h.Cart.UpdateQuantity)
		cart.DELETE("/items/:product_id", h.Cart.RemoveFromCart)

		orders := authorized.Group("/orders")
		orders.POST("", h.Order.Checkout)
		orders.GET("", h.Order.ListOrders)
		orders.GET("/:id", h.Order.GetOrder)
		orders.PUT("/:id/status", h.Order.UpdateOrderStatus)

		authorized.PUT("/payments/:id/status", h.Order.UpdatePaymentStatus)

		returns := authorized.Group("/returns")
		returns.POST("", h.Return.RequestReturn)
		returns.GET("", h.Return.ListReturns)
		returns.GET("/:id", h.Return.GetReturn)
		returns.PUT("/:id/status", h.Return.UpdateStatus)

		authorized.GET("/audit", h.Audit.ListAudit)
		authorized.POST("/admin/carts/release-stale", h.Cart.ReleaseStale)
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, apperrors.ErrNotFound.WithDetail("%s %s", c.Request.Method, c.Request.URL.Path))
	})
	return r
}
