package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrymomot/livefeed/core/logger"
	"github.com/dmitrymomot/livefeed/core/response"
)

// Check reports whether one dependency is usable.
type Check func(context.Context) error

// DefaultCheckTimeout bounds every readiness check.
const DefaultCheckTimeout = 3 * time.Second

// Readiness verifies all service dependencies are functioning.
// Returns "READY" if all checks pass, 503 Service Unavailable if any fail.
//
// Example:
//
//	router.GET("/health/ready", health.Readiness(
//		log,
//		pg.Healthcheck(pool),
//		redis.Healthcheck(client),
//	))
func Readiness(log *slog.Logger, checks ...Check) gin.HandlerFunc {
	if log == nil {
		log = logger.Discard()
	}
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultCheckTimeout)
		defer cancel()

		for _, check := range checks {
			if check == nil {
				continue
			}
			if err := check(ctx); err != nil {
				log.ErrorContext(ctx, "Readiness check failed",
					logger.Component("health"),
					logger.Error(err),
				)
				response.Error(c, response.ErrServiceUnavailable)
				return
			}
		}

		c.String(http.StatusOK, "READY")
	}
}
