package middleware

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmitrymomot/livefeed/core/logger"
)

// RequestIDHeader is the default request id header.
const RequestIDHeader = "X-Request-ID"

type requestIDContextKey struct{}

// RequestIDConfig configures the request ID middleware.
type RequestIDConfig struct {
	// Generator creates new request IDs (default: UUID v4).
	Generator func() string
	// HeaderName is the request and response header (default: X-Request-ID).
	HeaderName string
	// TrustIncoming reuses a non-empty id sent by the client.
	TrustIncoming bool
}

// RequestID assigns every request a fresh UUID.
func RequestID() gin.HandlerFunc {
	return RequestIDWithConfig(RequestIDConfig{})
}

// RequestIDWithConfig assigns every request an id, stores it in the gin
// and request contexts and echoes it in the response header.
func RequestIDWithConfig(cfg RequestIDConfig) gin.HandlerFunc {
	if cfg.HeaderName == "" {
		cfg.HeaderName = RequestIDHeader
	}
	if cfg.Generator == nil {
		cfg.Generator = uuid.NewString
	}

	return func(c *gin.Context) {
		var id string
		if cfg.TrustIncoming {
			id = c.GetHeader(cfg.HeaderName)
		}
		if id == "" || len(id) > 128 {
			id = cfg.Generator()
		}

		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), requestIDContextKey{}, id))
		c.Header(cfg.HeaderName, id)
		c.Next()
	}
}

// GetRequestID returns the request id stored by RequestID.
func GetRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDContextKey{}).(string)
	return id, ok
}

// RequestIDExtractor adds request_id to log records written with a request
// context.
func RequestIDExtractor(ctx context.Context) (slog.Attr, bool) {
	id, ok := GetRequestID(ctx)
	if !ok {
		return slog.Attr{}, false
	}
	return logger.RequestID(id), true
}
