package middleware

import (
	"log/slog"
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dmitrymomot/livefeed/core/logger"
	"github.com/dmitrymomot/livefeed/core/response"
	"github.com/dmitrymomot/livefeed/pkg/ratelimiter"
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	// Limiter decides each request. Required.
	Limiter ratelimiter.RateLimiter
	// KeyExtractor identifies the caller (default: client IP).
	KeyExtractor func(c *gin.Context) string
	// Logger reports limiter failures (default: slog.Default()).
	Logger *slog.Logger
}

// RateLimit rejects callers over their budget with 429 and sets the
// X-RateLimit-* headers. When the limiter itself fails the request is let
// through.
// Panics if cfg.Limiter is nil.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		panic("ratelimit middleware: limiter is required")
	}
	if cfg.KeyExtractor == nil {
		cfg.KeyExtractor = func(c *gin.Context) string { return c.ClientIP() }
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return func(c *gin.Context) {
		res, err := cfg.Limiter.Allow(c.Request.Context(), cfg.KeyExtractor(c))
		if err != nil {
			cfg.Logger.WarnContext(c.Request.Context(), "rate limiter unavailable",
				logger.Component("ratelimit"),
				logger.Error(err),
			)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(0, res.Remaining)))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

		if !res.Allowed() {
			retry := int(math.Ceil(res.RetryAfter().Seconds()))
			c.Header("Retry-After", strconv.Itoa(retry))
			response.Error(c, response.ErrTooManyRequests.WithDetails(map[string]any{
				"retry_after": retry,
			}))
			return
		}

		c.Next()
	}
}
