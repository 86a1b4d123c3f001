package middleware_test

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

	"github.com/dmitrymomot/livefeed/core/logger"
	"github.com/dmitrymomot/livefeed/middleware"
	"github.com/dmitrymomot/livefeed/pkg/ratelimiter"
)

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (*ratelimiter.Result, error) {
	return nil, errors.New("redis: connection refused")
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	t.Run("rejects over budget", func(t *testing.T) {
		t.Parallel()

		limiter, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.Config{
			Capacity:       2,
			RefillRate:     1,
			RefillInterval: time.Minute,
		})
		require.NoError(t, err)

		r := gin.New()
		r.POST("/api/bookings", middleware.RateLimit(middleware.RateLimitConfig{Limiter: limiter}),
			func(c *gin.Context) { c.Status(http.StatusCreated) })

		for i := range 2 {
			w := serve(r, httptest.NewRequest(http.MethodPost, "/api/bookings", nil))
			assert.Equal(t, http.StatusCreated, w.Code)
			assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
			assert.Equal(t, []string{"1", "0"}[i], w.Header().Get("X-RateLimit-Remaining"))
		}

		w := serve(r, httptest.NewRequest(http.MethodPost, "/api/bookings", nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
		assert.Contains(t, w.Body.String(), `"code":"too_many_requests"`)

		// A different client has its own budget.
		req := httptest.NewRequest(http.MethodPost, "/api/bookings", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		assert.Equal(t, http.StatusCreated, serve(r, req).Code)
	})

	t.Run("fails open", func(t *testing.T) {
		t.Parallel()

		r := gin.New()
		r.POST("/", middleware.RateLimit(middleware.RateLimitConfig{
			Limiter: brokenLimiter{},
			Logger:  logger.Discard(),
		}), func(c *gin.Context) { c.Status(http.StatusCreated) })

		assert.Equal(t, http.StatusCreated, serve(r, httptest.NewRequest(http.MethodPost, "/", nil)).Code)
	})
}
