package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/shoptrack/internal/infrastructure/config"
	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
)

const testConfig = `
server:
  mode: test
  enable_swagger: false
  cors:
    enabled: true
    allow_origins: ["http://shop.local"]
database:
  driver: sqlite
  dbname: ":memory:"
  auto_migrate: true
  log_level: silent
redis:
  enabled: %t
  host: %s
  port: %d
access:
  bcrypt_cost: 4
  admin_emails: ["admin@shop.local"]
inventory:
  cart_reservation_ttl: 0
metrics:
  enabled: false
`

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testApp struct {
	*App
	t *testing.T
}

func newTestApp(t *testing.T, withRedis bool) *testApp {
	t.Helper()
	host, port := "127.0.0.1", 6379
	if withRedis {
		mr := miniredis.RunT(t)
		host = mr.Host()
		_, err := fmt.Sscanf(mr.Port(), "%d", &port)
		require.NoError(t, err)
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(testConfig, withRedis, host, port)), 0o600))
	cfg, err := config.LoadFile(path)
	require.NoError(t, err)

	a, cleanup, err := Initialize(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return &testApp{App: a, t: t}
}

func (a *testApp) do(method, path, token string, body any, headers ...string) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	a.Engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

// ok 断言成功并把data解到out
func (a *testApp) ok(method, path, token string, body, out any) {
	a.t.Helper()
	w, env := a.do(method, path, token, body)
	require.Equal(a.t, http.StatusOK, w.Code)
	require.Equal(a.t, 0, env.Code, "%s %s: %s", method, path, env.Message)
	if out != nil {
		require.NoError(a.t, json.Unmarshal(env.Data, out))
	}
}

func (a *testApp) register(email string) {
	a.ok(http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"email": email, "password": "password123", "nickname": "tester",
	}, nil)
}

func (a *testApp) login(email string) (access, refresh string) {
	var out struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	a.ok(http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"email": email, "password": "password123",
	}, &out)
	require.NotEmpty(a.t, out.AccessToken)
	return out.AccessToken, out.RefreshToken
}

func (a *testApp) stockOf(productID uint) int {
	var out struct {
		Stock int `json:"stock"`
	}
	a.ok(http.MethodGet, fmt.Sprintf("/api/v1/inventory/%d/stock", productID), "", nil, &out)
	return out.Stock
}

func TestShopFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a := newTestApp(t, true)
	ctx := context.Background()

	a.register("admin@shop.local")
	a.register("alice@shop.local")
	require.NoError(t, a.BootstrapAdmins(ctx))
	// 第二次启动不报错
	require.NoError(t, a.BootstrapAdmins(ctx))

	admin, _ := a.login("admin@shop.local")
	alice, _ := a.login("alice@shop.local")

	// 客户不能建商品
	_, env := a.do(http.MethodPost, "/api/v1/products", alice, map[string]any{"name": "键盘", "price": "100"})
	assert.Equal(t, apperrors.ErrCodeForbidden, env.Code)

	var product struct {
		ID    uint `json:"id"`
		Stock int  `json:"stock"`
	}
	a.ok(http.MethodPost, "/api/v1/products", admin, map[string]any{
		"name": "机械键盘", "price": "100.00", "gst_rate": "18", "initial_stock": 10,
	}, &product)
	require.NotZero(t, product.ID)
	assert.Equal(t, 10, product.Stock)

	// 匿名可以浏览商品
	var page struct {
		List  []json.RawMessage `json:"list"`
		Total int64             `json:"total"`
	}
	a.ok(http.MethodGet, "/api/v1/products?keyword="+url.QueryEscape("键盘"), "", nil, &page)
	assert.EqualValues(t, 1, page.Total)

	// 加购即预留库存
	a.ok(http.MethodPost, "/api/v1/cart/items", alice, map[string]any{"product_id": product.ID, "quantity": 3}, nil)
	assert.Equal(t, 7, a.stockOf(product.ID))

	_, env = a.do(http.MethodPost, "/api/v1/cart/items", alice, map[string]any{"product_id": product.ID, "quantity": 50})
	assert.Equal(t, apperrors.ErrCodeInsufficientStock, env.Code)
	assert.Equal(t, 7, a.stockOf(product.ID))

	var order struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
		Total  string `json:"total"`
	}
	a.ok(http.MethodPost, "/api/v1/orders", alice, map[string]any{"payment_mode": "UPI"}, &order)
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, "354.00", order.Total)
	// 结算不重复扣减
	assert.Equal(t, 7, a.stockOf(product.ID))

	var cart struct {
		Count int `json:"count"`
	}
	a.ok(http.MethodGet, "/api/v1/cart", alice, nil, &cart)
	assert.Zero(t, cart.Count)

	// 退货：客户申请，管理员入库
	var ret struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}
	a.ok(http.MethodPost, "/api/v1/returns", alice, map[string]any{
		"order_id": order.ID, "product_id": product.ID, "quantity": 2, "reason": "尺寸不合适",
	}, &ret)
	assert.Equal(t, "pending", ret.Status)

	_, env = a.do(http.MethodPut, fmt.Sprintf("/api/v1/returns/%d/status", ret.ID), alice, map[string]string{"status": "restocked"})
	assert.Equal(t, apperrors.ErrCodeForbidden, env.Code)

	a.ok(http.MethodPut, fmt.Sprintf("/api/v1/returns/%d/status", ret.ID), admin, map[string]string{"status": "restocked"}, &ret)
	assert.Equal(t, "restocked", ret.Status)
	assert.Equal(t, 9, a.stockOf(product.ID))

	_, env = a.do(http.MethodPut, fmt.Sprintf("/api/v1/returns/%d/status", ret.ID), admin, map[string]string{"status": "restocked"})
	assert.NotZero(t, env.Code)
	assert.Equal(t, 9, a.stockOf(product.ID))

	// 对账：流水之和等于当前库存
	var rec struct {
		Consistent bool `json:"consistent"`
	}
	a.ok(http.MethodGet, fmt.Sprintf("/api/v1/inventory/%d/reconcile", product.ID), admin, nil, &rec)
	assert.True(t, rec.Consistent)

	// 审计只对管理员开放
	_, env = a.do(http.MethodGet, "/api/v1/audit", alice, nil)
	assert.Equal(t, apperrors.ErrCodeForbidden, env.Code)
	var audits struct {
		Total int64 `json:"total"`
	}
	a.ok(http.MethodGet, "/api/v1/audit", admin, nil, &audits)
	assert.Positive(t, audits.Total)

	// 启动时的管理员授予也有审计，操作人为空；重复启动不再写
	var grants struct {
		List []struct {
			ActorID   *uint  `json:"actor_id"`
			Action    string `json:"action"`
			TableName string `json:"table_name"`
		} `json:"list"`
		Total int64 `json:"total"`
	}
	a.ok(http.MethodGet, "/api/v1/audit?table_name=user_roles", admin, nil, &grants)
	require.EqualValues(t, 1, grants.Total)
	require.Len(t, grants.List, 1)
	assert.Nil(t, grants.List[0].ActorID)
	assert.Equal(t, "INSERT", grants.List[0].Action)
	assert.Equal(t, "user_roles", grants.List[0].TableName)
}

func TestAuthentication(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a := newTestApp(t, true)

	_, env := a.do(http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, env.Code)

	_, env = a.do(http.MethodGet, "/api/v1/products", "garbage", nil)
	assert.Equal(t, apperrors.ErrCodeInvalidToken, env.Code)

	a.register("bob@shop.local")
	access, refresh := a.login("bob@shop.local")

	// Refresh Token 不能当 Access Token 用
	_, env = a.do(http.MethodGet, "/api/v1/profile", refresh, nil)
	assert.Equal(t, apperrors.ErrCodeInvalidToken, env.Code)

	var profile struct {
		Email string   `json:"email"`
		Roles []string `json:"roles"`
	}
	a.ok(http.MethodGet, "/api/v1/profile", access, nil, &profile)
	assert.Equal(t, "bob@shop.local", profile.Email)

	a.ok(http.MethodPost, "/api/v1/users/logout", access, map[string]string{"refresh_token": refresh}, nil)

	_, env = a.do(http.MethodGet, "/api/v1/profile", access, nil)
	assert.Equal(t, apperrors.ErrCodeInvalidToken, env.Code)
	_, env = a.do(http.MethodPost, "/api/v1/users/refresh", "", map[string]string{"refresh_token": refresh})
	assert.NotZero(t, env.Code)
}

func TestWithoutRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a := newTestApp(t, false)

	a.register("carol@shop.local")
	access, _ := a.login("carol@shop.local")
	a.ok(http.MethodGet, "/api/v1/profile", access, nil, nil)
}

func TestRouterBasics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a := newTestApp(t, false)

	w, env := a.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, env.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	_, env = a.do(http.MethodGet, "/api/v1/nope", "", nil)
	assert.Equal(t, apperrors.ErrCodeNotFound, env.Code)

	w, _ = a.do(http.MethodOptions, "/api/v1/products", "", nil, "Origin", "http://shop.local")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://shop.local", w.Header().Get("Access-Control-Allow-Origin"))

	w, _ = a.do(http.MethodGet, "/api/v1/products", "", nil, "Origin", "http://evil.local")
	assert.Equal(t, http.StatusForbidden, w.Code)

	_, env = a.do(http.MethodPost, "/api/v1/users/register", "", map[string]string{"email": "bad"})
	assert.Equal(t, apperrors.ErrCodeInvalidParams, env.Code)
}
