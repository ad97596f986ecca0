package middleware

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cppla/gram/config"
	"github.com/cppla/gram/utils"
)

// Limiter decides whether clientKey may call routeKey again within window.
type Limiter interface {
	Allow(ctx context.Context, clientKey, routeKey string, limit int, window time.Duration) (bool, error)
}

// RateLimit rejects requests over rule with 429. The bucket is keyed by the
// client IP, the route pattern and the rule name, so a route with a specific
// rule and the global default count independently. Limiter failures let the
// request through.
func RateLimit(l Limiter, name string, rule config.RateRule, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = utils.Logger
	}
	retryAfter := strconv.Itoa(int(math.Ceil(rule.Window.Seconds())))

	return func(ctx *gin.Context) {
		route := ctx.FullPath()
		if route == "" {
			route = ctx.Request.URL.Path
		}
		routeKey := ctx.Request.Method + " " + route + " " + name

		allowed, err := l.Allow(ctx.Request.Context(), ctx.ClientIP(), routeKey, rule.Times, rule.Window)
		if err != nil {
			log.Warn("rate limiter unavailable, allowing request",
				zap.String("rule", name),
				zap.String("route", route),
				zap.Error(err),
			)
			ctx.Next()
			return
		}
		if !allowed {
			ctx.Header("Retry-After", retryAfter)
			utils.AbortWithError(ctx, utils.ErrRateLimited)
			return
		}
		ctx.Next()
	}
}

// AllowAll never limits. Used when rate limiting is disabled.
type AllowAll struct{}

func (AllowAll) Allow(context.Context, string, string, int, time.Duration) (bool, error) {
	return true, nil
}

type rateLimiter struct {
	limiter *rate.Limiter
	expires time.Time
}

// MemoryLimiter keeps one token bucket per client and route in process
// memory. Buckets hold limit tokens refilled evenly over window and are
// dropped after sitting idle for idleTTL. Unlike the Redis fixed window, a
// bucket may admit more than limit requests inside one window once tokens
// refill, e.g. a sixth create_user call twelve minutes into a 5/hour rule.
type MemoryLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*rateLimiter
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		limiters: map[string]*rateLimiter{},
		idleTTL:  2 * time.Hour,
		now:      time.Now,
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, clientKey, routeKey string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return false, nil
	}
	now := m.now()
	key := routeKey + "|" + clientKey

	m.mu.Lock()
	defer m.mu.Unlock()

	m.cleanupExpiredLocked(now)

	idle := m.idleTTL
	if window > idle {
		idle = window
	}
	l, ok := m.limiters[key]
	if !ok {
		l = &rateLimiter{limiter: rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)}
		m.limiters[key] = l
	}
	l.expires = now.Add(idle)
	return l.limiter.AllowN(now, 1), nil
}

func (m *MemoryLimiter) cleanupExpiredLocked(now time.Time) {
	if now.Sub(m.lastSweep) < time.Minute {
		return
	}
	m.lastSweep = now
	for key, l := range m.limiters {
		if now.After(l.expires) {
			delete(m.limiters, key)
		}
	}
}
