package httpapi

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/livefeed/core/health"
	"github.com/dmitrymomot/livefeed/core/logger"
	"github.com/dmitrymomot/livefeed/core/realtime"
	"github.com/dmitrymomot/livefeed/internal/adminauth"
	"github.com/dmitrymomot/livefeed/internal/booking"
	"github.com/dmitrymomot/livefeed/middleware"
	"github.com/dmitrymomot/livefeed/pkg/jwt"
	"github.com/dmitrymomot/livefeed/pkg/ratelimiter"
)

// Config holds HTTP API settings loaded from the environment.
type Config struct {
	CORSOrigins          []string      `env:"HTTP_CORS_ORIGINS" envSeparator:","`
	CORSMaxAge           time.Duration `env:"HTTP_CORS_MAX_AGE" envDefault:"12h"`
	SlowRequestThreshold time.Duration `env:"HTTP_SLOW_REQUEST_THRESHOLD" envDefault:"2s"`
	AccessTokenParam     string        `env:"HTTP_ACCESS_TOKEN_PARAM" envDefault:"access_token"`
}

// Deps are the collaborators served by the router. Hub and Bookings are
// required. Broadcaster defaults to Hub. Optional parts are left out when
// nil: Auth removes the login route, Limiter disables rate limiting and
// Gatherer hides /metrics.
type Deps struct {
	Hub         *realtime.Hub
	Broadcaster realtime.Broadcaster
	Bookings    *booking.Service
	Tokens      *jwt.Service
	Auth        *adminauth.Authenticator
	Limiter     ratelimiter.RateLimiter
	Checks      []health.Check
	Gatherer    prometheus.Gatherer
	Logger      *slog.Logger
}

// NewRouter builds the gin engine with every route mounted.
// Panics if a required dependency is missing.
func NewRouter(cfg Config, deps Deps) *gin.Engine {
	if deps.Hub == nil || deps.Bookings == nil || deps.Tokens == nil {
		panic("httpapi: hub, bookings and tokens are required")
	}
	if deps.Broadcaster == nil {
		deps.Broadcaster = deps.Hub
	}
	if deps.Logger == nil {
		deps.Logger = logger.Discard()
	}
	if cfg.AccessTokenParam == "" {
		cfg.AccessTokenParam = "access_token"
	}

	r := gin.New()
	r.ContextWithFallback = true
	r.Use(
		middleware.RequestID(),
		middleware.Logging(middleware.LoggingConfig{
			Logger:               deps.Logger,
			Skip:                 middleware.SkipPaths("/health/live", "/metrics"),
			SlowRequestThreshold: cfg.SlowRequestThreshold,
			RedactQuery:          []string{cfg.AccessTokenParam},
		}),
		middleware.Recovery(deps.Logger),
		middleware.CORS(middleware.CORSConfig{
			AllowedOrigins: cfg.CORSOrigins,
			MaxAge:         cfg.CORSMaxAge,
		}),
	)

	r.GET("/health/live", health.Liveness)
	r.GET("/health/ready", health.Readiness(deps.Logger, deps.Checks...))
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	streams := &streamHandlers{hub: deps.Hub}
	bookings := &bookingHandlers{svc: deps.Bookings}
	admin := &adminHandlers{hub: deps.Hub, broadcaster: deps.Broadcaster, logger: deps.Logger}

	r.GET("/events", streams.sse(realtime.AudiencePublic))
	r.GET("/ws", streams.websocket(realtime.AudiencePublic))

	limited := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if deps.Limiter == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{middleware.RateLimit(middleware.RateLimitConfig{
			Limiter: deps.Limiter,
			KeyExtractor: func(c *gin.Context) string {
				return c.FullPath() + "|" + c.ClientIP()
			},
			Logger: deps.Logger,
		}), h}
	}

	r.POST("/api/bookings", limited(bookings.create)...)
	if deps.Auth != nil {
		login := &loginHandler{auth: deps.Auth, logger: deps.Logger}
		r.POST("/admin/api/login", limited(login.login)...)
	}

	authed := r.Group("/admin", middleware.JWT(middleware.JWTConfig{
		Service: deps.Tokens,
		TokenExtractor: middleware.JWTFromMultiple(
			middleware.JWTFromAuthHeader(),
			middleware.JWTFromQuery(cfg.AccessTokenParam),
		),
	}))
	authed.GET("/events", streams.sse(realtime.AudienceAuth))
	authed.GET("/ws", streams.websocket(realtime.AudienceAuth))
	authed.GET("/api/bookings", bookings.list)
	authed.GET("/api/bookings/:id", bookings.get)
	authed.PATCH("/api/bookings/:id", bookings.updateStatus)
	authed.POST("/api/broadcast", admin.broadcast)
	authed.GET("/api/stats", admin.stats)

	r.NoRoute(notFound)
	r.NoMethod(methodNotAllowed)
	r.HandleMethodNotAllowed = true

	return r
}
