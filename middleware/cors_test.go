package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/livefeed/middleware"
)

func TestCORS(t *testing.T) {
	t.Parallel()

	newEngine := func(cfg middleware.CORSConfig) *gin.Engine {
		r := gin.New()
		r.Use(middleware.CORS(cfg))
		r.GET("/events", func(c *gin.Context) { c.Status(http.StatusOK) })
		return r
	}

	t.Run("allowed origin", func(t *testing.T) {
		t.Parallel()

		r := newEngine(middleware.CORSConfig{AllowedOrigins: []string{"https://app.example"}})
		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		req.Header.Set("Origin", "https://app.example")
		w := serve(r, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("disallowed origin", func(t *testing.T) {
		t.Parallel()

		r := newEngine(middleware.CORSConfig{AllowedOrigins: []string{"https://app.example"}})
		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		req.Header.Set("Origin", "https://evil.example")
		w := serve(r, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		t.Parallel()

		r := newEngine(middleware.CORSConfig{AllowedOrigins: []string{"*"}})
		req := httptest.NewRequest(http.MethodOptions, "/events", nil)
		req.Header.Set("Origin", "https://any.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		w := serve(r, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("disabled without origins", func(t *testing.T) {
		t.Parallel()

		r := newEngine(middleware.CORSConfig{})
		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		req.Header.Set("Origin", "https://app.example")
		w := serve(r, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}
