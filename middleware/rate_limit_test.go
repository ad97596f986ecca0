package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cppla/gram/config"
)

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string, string, int, time.Duration) (bool, error) {
	return false, errors.New("redis: connection refused")
}

func newLimitedRouter(l Limiter, rule config.RateRule) *gin.Engine {
	r := gin.New()
	limited := RateLimit(l, "token", rule, zap.NewNop())
	r.POST("/auth/token", limited, func(ctx *gin.Context) { ctx.Status(http.StatusOK) })
	r.POST("/users", limited, func(ctx *gin.Context) { ctx.Status(http.StatusOK) })
	return r
}

func post(r http.Handler, path, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.RemoteAddr = ip + ":12345"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	r := newLimitedRouter(NewMemoryLimiter(), config.RateRule{Times: 5, Window: time.Minute})

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, post(r, "/auth/token", "10.0.0.1").Code, "request %d", i+1)
	}
	rec := post(r, "/auth/token", "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"detail":"Too many requests"}`, rec.Body.String())

	// independent clients and routes
	assert.Equal(t, http.StatusOK, post(r, "/auth/token", "10.0.0.2").Code)
	assert.Equal(t, http.StatusOK, post(r, "/users", "10.0.0.1").Code)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	r := newLimitedRouter(brokenLimiter{}, config.RateRule{Times: 1, Window: time.Second})
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, post(r, "/auth/token", "10.0.0.1").Code)
	}
}

func TestMemoryLimiter_RefillsAndExpires(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryLimiter()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	ok, _ := m.Allow(ctx, "c", "r", 1, 10*time.Second)
	assert.True(t, ok)
	ok, _ = m.Allow(ctx, "c", "r", 1, 10*time.Second)
	assert.False(t, ok)

	now = now.Add(10 * time.Second)
	ok, _ = m.Allow(ctx, "c", "r", 1, 10*time.Second)
	assert.True(t, ok)

	now = now.Add(3 * time.Hour)
	_, _ = m.Allow(ctx, "other", "r", 1, time.Second)
	m.mu.Lock()
	_, kept := m.limiters["r|c"]
	m.mu.Unlock()
	assert.False(t, kept)
}

func TestAllowAll(t *testing.T) {
	ok, err := AllowAll{}.Allow(context.Background(), "c", "r", 0, time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryLimiter_RefillsWithinWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryLimiter()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ok, _ := m.Allow(ctx, "c", "create_user", 5, time.Hour)
		assert.True(t, ok)
	}
	ok, _ := m.Allow(ctx, "c", "create_user", 5, time.Hour)
	assert.False(t, ok)

	now = now.Add(12 * time.Minute)
	ok, _ = m.Allow(ctx, "c", "create_user", 5, time.Hour)
	assert.True(t, ok, "one token refills every window/limit")
	ok, _ = m.Allow(ctx, "c", "create_user", 5, time.Hour)
	assert.False(t, ok)
}
