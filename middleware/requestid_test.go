package middleware_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/livefeed/core/logger"
	"github.com/dmitrymomot/livefeed/middleware"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates id", func(t *testing.T) {
		t.Parallel()

		var seen string
		r := gin.New()
		r.Use(middleware.RequestID())
		r.GET("/", func(c *gin.Context) {
			seen, _ = middleware.GetRequestID(c.Request.Context())
		})

		w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
		id := w.Header().Get(middleware.RequestIDHeader)
		assert.Len(t, id, 36)
		assert.Equal(t, id, seen)
	})

	t.Run("ignores incoming id by default", func(t *testing.T) {
		t.Parallel()

		r := gin.New()
		r.Use(middleware.RequestID())
		r.GET("/", func(*gin.Context) {})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.RequestIDHeader, "client-chosen")
		w := serve(r, req)
		assert.NotEqual(t, "client-chosen", w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("trusts incoming id when configured", func(t *testing.T) {
		t.Parallel()

		r := gin.New()
		r.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TrustIncoming: true,
			Generator:     func() string { return "generated" },
		}))
		r.GET("/", func(*gin.Context) {})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.RequestIDHeader, "upstream-id")
		assert.Equal(t, "upstream-id", serve(r, req).Header().Get(middleware.RequestIDHeader))

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		assert.Equal(t, "generated", serve(r, req).Header().Get(middleware.RequestIDHeader))
	})

	t.Run("id reaches log records", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithJSONFormatter(),
			logger.WithContextExtractors(middleware.RequestIDExtractor),
		)

		r := gin.New()
		r.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			Generator: func() string { return "req-1" },
		}))
		r.GET("/", func(c *gin.Context) {
			log.InfoContext(c.Request.Context(), "handled")
		})

		serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Contains(t, buf.String(), `"request_id":"req-1"`)
	})
}

func TestRequestIDExtractor_NoID(t *testing.T) {
	t.Parallel()

	_, ok := middleware.RequestIDExtractor(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
