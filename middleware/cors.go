package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig configures cross-origin access.
type CORSConfig struct {
	// AllowedOrigins lists exact origins; "*" allows any origin.
	AllowedOrigins   []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// CORS answers preflight requests and sets CORS headers for allowed
// origins. WebSocket upgrades are covered too. With no AllowedOrigins it
// returns a no-op handler.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	if len(cfg.AllowedOrigins) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	cc := cors.DefaultConfig()
	cc.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	cc.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", RequestIDHeader}
	cc.ExposeHeaders = []string{RequestIDHeader, "Retry-After"}
	cc.AllowWebSockets = true
	cc.AllowCredentials = cfg.AllowCredentials
	if cfg.MaxAge > 0 {
		cc.MaxAge = cfg.MaxAge
	}

	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			cc.AllowAllOrigins = true
			break
		}
	}
	if !cc.AllowAllOrigins {
		cc.AllowOrigins = cfg.AllowedOrigins
	}

	return cors.New(cc)
}
