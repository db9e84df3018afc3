package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vanguard/config"
	domainerrors "vanguard/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

func newRateLimitTestContext(remoteAddr string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()

	return e.NewContext(req, rec)
}

func TestRateLimitMiddleware_Limit(t *testing.T) {
	okHandler := func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}

	t.Run("requests over the burst are rejected", func(t *testing.T) {
		m := NewRateLimitMiddleware(fxtest.NewLifecycle(t), &config.Config{})
		handler := m.Limit("login", config.RateLimitRule{Limit: 2, Window: time.Hour})(okHandler)

		c := newRateLimitTestContext("10.0.0.1:1234")
		require.NoError(t, handler(c))
		require.NoError(t, handler(c))

		err := handler(newRateLimitTestContext("10.0.0.1:1234"))
		assert.ErrorIs(t, err, domainerrors.ErrTooManyRequests)
	})

	t.Run("clients are limited independently", func(t *testing.T) {
		m := NewRateLimitMiddleware(fxtest.NewLifecycle(t), &config.Config{})
		handler := m.Limit("login", config.RateLimitRule{Limit: 1, Window: time.Hour})(okHandler)

		require.NoError(t, handler(newRateLimitTestContext("10.0.0.1:1234")))
		assert.Error(t, handler(newRateLimitTestContext("10.0.0.1:1234")))

		// A different client still has a full bucket.
		assert.NoError(t, handler(newRateLimitTestContext("10.0.0.2:1234")))
	})

	t.Run("endpoints are limited independently", func(t *testing.T) {
		m := NewRateLimitMiddleware(fxtest.NewLifecycle(t), &config.Config{})
		rule := config.RateLimitRule{Limit: 1, Window: time.Hour}
		login := m.Limit("login", rule)(okHandler)
		refresh := m.Limit("refresh", rule)(okHandler)

		require.NoError(t, login(newRateLimitTestContext("10.0.0.1:1234")))
		assert.Error(t, login(newRateLimitTestContext("10.0.0.1:1234")))
		assert.NoError(t, refresh(newRateLimitTestContext("10.0.0.1:1234")))
	})

	t.Run("no rule means no limiting", func(t *testing.T) {
		m := NewRateLimitMiddleware(fxtest.NewLifecycle(t), &config.Config{})
		handler := m.Limit("login", config.RateLimitRule{})(okHandler)

		for range 20 {
			require.NoError(t, handler(newRateLimitTestContext("10.0.0.1:1234")))
		}
	})
}

func TestRateLimitMiddleware_EvictionStopsWithLifecycle(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	NewRateLimitMiddleware(lc, &config.Config{})

	lc.RequireStart()
	lc.RequireStop()
}
