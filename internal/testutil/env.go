// Package testutil 用例测试的装配：内存SQLite + 真实仓储 + 访问控制
package testutil

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/xiebiao/shoptrack/internal/domain/access"
	"github.com/xiebiao/shoptrack/internal/domain/audit"
	"github.com/xiebiao/shoptrack/internal/domain/cart"
	"github.com/xiebiao/shoptrack/internal/domain/catalog"
	"github.com/xiebiao/shoptrack/internal/domain/event"
	"github.com/xiebiao/shoptrack/internal/domain/inventory"
	"github.com/xiebiao/shoptrack/internal/domain/order"
	"github.com/xiebiao/shoptrack/internal/domain/returns"
	"github.com/xiebiao/shoptrack/internal/domain/user"
	"github.com/xiebiao/shoptrack/internal/infrastructure/config"
	"github.com/xiebiao/shoptrack/internal/infrastructure/events"
	"github.com/xiebiao/shoptrack/internal/infrastructure/persistence/gormstore"
)

// Env 一套完整装配好的依赖
type Env struct {
	DB        *gorm.DB
	Log       *zap.Logger
	TxManager *gormstore.TxManager
	Tx        *events.Transactor
	Events    *RecordingPublisher

	Products   catalog.ProductRepository
	Categories catalog.CategoryRepository
	Suppliers  catalog.SupplierRepository
	Stock      inventory.StockRepository
	Logs       inventory.LogRepository
	AuditRepo  audit.Repository
	Audit      *audit.Recorder
	Carts      cart.Repository
	Orders     order.Repository
	Payments   order.PaymentRepository
	Returns    returns.Repository
	Users      user.Repository
	Roles      user.RoleRepository

	UserService user.Service
	Inventory   inventory.Service
	Gate        *access.Gate
}

var dbSeq atomic.Int64

// NewDB 独立的内存SQLite库
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	// 每个测试一个命名内存库，连接数为1时所有查询必须走事务ctx
	name := fmt.Sprintf("file:shoptrack_%d?mode=memory&cache=private", dbSeq.Add(1))
	db, err := gormstore.NewDB(config.DatabaseConfig{
		Driver:      config.DriverSQLite,
		DBName:      name,
		AutoMigrate: true,
		LogLevel:    "silent",
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// NewEnv 装配全部仓储和领域服务
func NewEnv(t testing.TB) *Env {
	t.Helper()
	db := NewDB(t)
	log := zap.NewNop()

	e := &Env{
		DB:         db,
		Log:        log,
		TxManager:  gormstore.NewTxManager(db),
		Events:     &RecordingPublisher{},
		Products:   gormstore.NewProductRepository(db),
		Categories: gormstore.NewCategoryRepository(db),
		Suppliers:  gormstore.NewSupplierRepository(db),
		Stock:      gormstore.NewStockRepository(db),
		Logs:       gormstore.NewInventoryLogRepository(db),
		AuditRepo:  gormstore.NewAuditRepository(db),
		Carts:      gormstore.NewCartRepository(db),
		Orders:     gormstore.NewOrderRepository(db),
		Payments:   gormstore.NewPaymentRepository(db),
		Returns:    gormstore.NewReturnRepository(db),
		Users:      gormstore.NewUserRepository(db),
		Roles:      gormstore.NewRoleRepository(db),
	}
	e.Tx = events.NewTransactor(e.TxManager, e.Events, log)
	e.Audit = audit.NewRecorder(e.AuditRepo)
	e.UserService = user.NewService(e.Users, e.Roles, e.Tx, bcrypt.MinCost)
	e.Inventory = inventory.NewService(e.Stock, e.Logs, e.Tx, log)

	gate, err := access.NewGate(e.Roles, log)
	require.NoError(t, err)
	e.Gate = gate
	return e
}

// Customer 注册一个普通用户
func (e *Env) Customer(t testing.TB, email string) access.Actor {
	t.Helper()
	u, err := e.UserService.Register(context.Background(), email, "password123", "tester")
	require.NoError(t, err)
	actor, err := e.Gate.ResolveActor(context.Background(), u.ID)
	require.NoError(t, err)
	return actor
}

// Admin 注册用户并授予 admin
func (e *Env) Admin(t testing.TB, email string) access.Actor {
	t.Helper()
	actor := e.Customer(t, email)
	_, err := e.UserService.GrantRole(context.Background(), actor.UserID, user.RoleAdmin)
	require.NoError(t, err)
	actor, err = e.Gate.ResolveActor(context.Background(), actor.UserID)
	require.NoError(t, err)
	return actor
}

// Product 直接落库一个商品
func (e *Env) Product(t testing.TB, name string, stock int, price string) *catalog.Product {
	t.Helper()
	p := catalog.NewProduct(name, "", decimal.RequireFromString(price), decimal.Zero, stock)
	require.NoError(t, e.Products.Create(context.Background(), p))
	return p
}

// StockOf 当前库存
func (e *Env) StockOf(t testing.TB, productID uint) int {
	t.Helper()
	n, err := e.Inventory.GetStock(context.Background(), productID)
	require.NoError(t, err)
	return n
}

// RequireReconciled stock == initial_stock + Σdelta
func (e *Env) RequireReconciled(t testing.TB, productID uint) {
	t.Helper()
	row, err := e.Stock.GetStock(context.Background(), productID)
	require.NoError(t, err)
	sum, err := e.Logs.SumDeltas(context.Background(), productID)
	require.NoError(t, err)
	require.Equal(t, row.InitialStock+sum, row.Stock, "product %d not reconciled", productID)
}

// RecordingPublisher 记录发布的事件
type RecordingPublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *RecordingPublisher) Publish(_ context.Context, events ...event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

// Types 已发布事件的类型，按发布顺序
func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// Reset 清空
func (p *RecordingPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
