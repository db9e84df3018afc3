package middleware

import (
	"context"
	"sync"
	"time"

	"vanguard/config"
	domainerrors "vanguard/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"golang.org/x/time/rate"
)

const limiterIdleTimeout = 10 * time.Minute

// RateLimitMiddleware throttles sensitive endpoints per client IP using
// token buckets. Each endpoint gets its own bucket family so hammering
// login never starves refresh.
type RateLimitMiddleware struct {
	cfg *config.RateLimitConfig

	mu       sync.Mutex
	limiters map[string]*clientLimiter
	stop     chan struct{}
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimitMiddleware creates the per-endpoint rate limiter. The idle
// eviction loop runs for the lifetime of the application and stops with it.
func NewRateLimitMiddleware(lc fx.Lifecycle, cfg *config.Config) *RateLimitMiddleware {
	m := &RateLimitMiddleware{
		cfg:      cfg.RateLimit,
		limiters: make(map[string]*clientLimiter),
		stop:     make(chan struct{}),
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go m.evictIdle()

			return nil
		},
		OnStop: func(_ context.Context) error {
			close(m.stop)

			return nil
		},
	})

	return m
}

// Limit returns a middleware enforcing the given rule, keyed by endpoint
// name plus client IP.
func (m *RateLimitMiddleware) Limit(endpoint string, rule config.RateLimitRule) echo.MiddlewareFunc {
	limit := rate.Inf
	burst := 1
	if rule.Limit > 0 && rule.Window > 0 {
		limit = rate.Every(rule.Window / time.Duration(rule.Limit))
		burst = rule.Limit
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !m.allow(endpoint+"|"+c.RealIP(), limit, burst) {
				return domainerrors.ErrTooManyRequests
			}

			return next(c)
		}
	}
}

// Register returns the middleware for the register endpoint, and similarly below.
func (m *RateLimitMiddleware) Register() echo.MiddlewareFunc {
	return m.Limit("register", m.rule(func(c *config.RateLimitConfig) config.RateLimitRule { return c.Register }))
}

func (m *RateLimitMiddleware) Login() echo.MiddlewareFunc {
	return m.Limit("login", m.rule(func(c *config.RateLimitConfig) config.RateLimitRule { return c.Login }))
}

func (m *RateLimitMiddleware) Refresh() echo.MiddlewareFunc {
	return m.Limit("refresh", m.rule(func(c *config.RateLimitConfig) config.RateLimitRule { return c.Refresh }))
}

func (m *RateLimitMiddleware) Verify() echo.MiddlewareFunc {
	return m.Limit("verify", m.rule(func(c *config.RateLimitConfig) config.RateLimitRule { return c.Verify }))
}

func (m *RateLimitMiddleware) Resend() echo.MiddlewareFunc {
	return m.Limit("resend", m.rule(func(c *config.RateLimitConfig) config.RateLimitRule { return c.Resend }))
}

func (m *RateLimitMiddleware) rule(pick func(*config.RateLimitConfig) config.RateLimitRule) config.RateLimitRule {
	if m.cfg == nil {
		return config.RateLimitRule{}
	}

	return pick(m.cfg)
}

func (m *RateLimitMiddleware) allow(key string, limit rate.Limit, burst int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	cl, ok := m.limiters[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(limit, burst)}
		m.limiters[key] = cl
	}
	cl.lastSeen = time.Now()

	return cl.limiter.Allow()
}

// evictIdle drops buckets for clients that have gone quiet, bounding memory.
func (m *RateLimitMiddleware) evictIdle() {
	ticker := time.NewTicker(limiterIdleTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.mu.Lock()
			cutoff := time.Now().Add(-limiterIdleTimeout)
			for key, cl := range m.limiters {
				if cl.lastSeen.Before(cutoff) {
					delete(m.limiters, key)
				}
			}
			m.mu.Unlock()
		}
	}
}
