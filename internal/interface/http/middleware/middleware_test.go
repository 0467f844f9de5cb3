package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xiebiao/shoptrack/internal/domain/access"
	"github.com/xiebiao/shoptrack/internal/domain/user"
	"github.com/xiebiao/shoptrack/internal/infrastructure/config"
	apperrors "github.com/xiebiao/shoptrack/pkg/errors"
	"github.com/xiebiao/shoptrack/pkg/jwt"
	"github.com/xiebiao/shoptrack/pkg/response"
)

type stubResolver struct {
	roles []user.Role
	err   error
}

func (r stubResolver) ResolveActor(_ context.Context, userID uint) (access.Actor, error) {
	if r.err != nil {
		return access.Anonymous, r.err
	}
	return access.Actor{UserID: userID, Roles: r.roles}, nil
}

type stubBlacklist map[string]bool

func (b stubBlacklist) IsInBlacklist(_ context.Context, token string) (bool, error) {
	return b[token], nil
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func newAuthEngine(m *AuthMiddleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(m.Authenticate())
	whoami := func(c *gin.Context) {
		a := Actor(c)
		response.Success(c, gin.H{"user_id": a.UserID, "admin": a.IsAdmin(), "email": GetEmail(c)})
	}
	r.GET("/public", whoami)
	r.GET("/private", m.RequireAuth(), whoami)
	return r
}

func serve(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	manager := jwt.NewManager("test-secret", time.Hour, 24*time.Hour)
	pair, err := manager.GenerateToken(7, "alice@shop.local")
	require.NoError(t, err)
	revoked, err := manager.GenerateToken(8, "bob@shop.local")
	require.NoError(t, err)

	m := NewAuthMiddleware(manager, stubBlacklist{revoked.AccessToken: true}, stubResolver{roles: []user.Role{user.RoleAdmin}})
	r := newAuthEngine(m)

	t.Run("匿名访问公开接口", func(t *testing.T) {
		resp := decode(t, serve(r, "/public", ""))
		assert.Equal(t, 0, resp.Code)
		data := resp.Data.(map[string]any)
		assert.EqualValues(t, 0, data["user_id"])
	})

	t.Run("匿名访问需登录接口", func(t *testing.T) {
		resp := decode(t, serve(r, "/private", ""))
		assert.Equal(t, apperrors.ErrCodeUnauthorized, resp.Code)
	})

	t.Run("有效Token", func(t *testing.T) {
		resp := decode(t, serve(r, "/private", pair.AccessToken))
		require.Equal(t, 0, resp.Code)
		data := resp.Data.(map[string]any)
		assert.EqualValues(t, 7, data["user_id"])
		assert.Equal(t, true, data["admin"])
		assert.Equal(t, "alice@shop.local", data["email"])
	})

	t.Run("公开接口带无效Token也拒绝", func(t *testing.T) {
		resp := decode(t, serve(r, "/public", "not-a-jwt"))
		assert.Equal(t, apperrors.ErrCodeInvalidToken, resp.Code)
	})

	t.Run("Refresh Token不能访问", func(t *testing.T) {
		resp := decode(t, serve(r, "/private", pair.RefreshToken))
		assert.Equal(t, apperrors.ErrCodeInvalidToken, resp.Code)
	})

	t.Run("已登出", func(t *testing.T) {
		resp := decode(t, serve(r, "/private", revoked.AccessToken))
		assert.Equal(t, apperrors.ErrCodeInvalidToken, resp.Code)
	})

	t.Run("格式错误", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Token abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, apperrors.ErrCodeInvalidToken, decode(t, w).Code)
	})
}

func TestAuth_NilBlacklistAndResolverError(t *testing.T) {
	manager := jwt.NewManager("test-secret", time.Hour, 24*time.Hour)
	pair, err := manager.GenerateToken(3, "carol@shop.local")
	require.NoError(t, err)

	r := newAuthEngine(NewAuthMiddleware(manager, nil, stubResolver{}))
	assert.Equal(t, 0, decode(t, serve(r, "/private", pair.AccessToken)).Code)

	r = newAuthEngine(NewAuthMiddleware(manager, nil, stubResolver{err: errors.New("db down")}))
	assert.Equal(t, apperrors.ErrCodeInternal, decode(t, serve(r, "/private", pair.AccessToken)).Code)
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.ErrorLevel)

	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := serve(r, "/boom", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, apperrors.ErrCodeInternal, decode(t, w).Code)
	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)

	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/items/:id", func(c *gin.Context) { response.Success(c, nil) })

	req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
	req.Header.Set("X-Request-ID", "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "/items/42", fields["path"])

	w = serve(r, "/items/43", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.CORSConfig{
		Enabled:          true,
		AllowOrigins:     []string{"http://shop.local"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           time.Hour,
	}
	newEngine := func(cfg config.CORSConfig) *gin.Engine {
		r := gin.New()
		r.Use(CORS(cfg))
		r.GET("/x", func(c *gin.Context) { response.Success(c, nil) })
		return r
	}
	send := func(r *gin.Engine, method, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/x", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	r := newEngine(cfg)

	w := send(r, http.MethodGet, "http://shop.local")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://shop.local", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))

	w = send(r, http.MethodOptions, "http://shop.local")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = send(r, http.MethodGet, "http://evil.local")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 非浏览器请求不带Origin
	w = send(r, http.MethodGet, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	cfg.Enabled = false
	w = send(newEngine(cfg), http.MethodGet, "http://evil.local")
	assert.Equal(t, http.StatusOK, w.Code)
}
