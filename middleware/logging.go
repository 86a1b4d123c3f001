package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrymomot/livefeed/core/logger"
)

// LoggingConfig configures the request logging middleware.
type LoggingConfig struct {
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Skip excludes requests from logging, e.g. health probes.
	Skip func(c *gin.Context) bool
	// LogLevel for successful requests (default: info).
	LogLevel slog.Level
	// SlowRequestThreshold logs slower requests at warn (default: 5s).
	// Streaming routes should be skipped or they are always slow.
	SlowRequestThreshold time.Duration
	// Component name for structured logging (default: http).
	Component string
	// RedactQuery lists query parameters whose values are masked in logs
	// (default: access_token).
	RedactQuery []string
}

// Logging logs one record per completed request. Status 5xx logs at
// error, 4xx and slow requests at warn.
func Logging(cfg LoggingConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.SlowRequestThreshold <= 0 {
		cfg.SlowRequestThreshold = 5 * time.Second
	}
	if cfg.Component == "" {
		cfg.Component = "http"
	}
	if cfg.RedactQuery == nil {
		cfg.RedactQuery = []string{"access_token"}
	}

	return func(c *gin.Context) {
		if cfg.Skip != nil && cfg.Skip(c) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		attrs := []slog.Attr{
			logger.Component(cfg.Component),
			logger.Method(c.Request.Method),
			logger.Path(c.Request.URL.Path),
			logger.StatusCode(status),
			logger.BytesOut(int64(max(0, c.Writer.Size()))),
			logger.Latency(latency),
			logger.ClientIP(c.ClientIP()),
		}
		if route := c.FullPath(); route != "" {
			attrs = append(attrs, slog.String("route", route))
		}
		if q := c.Request.URL.RawQuery; q != "" {
			attrs = append(attrs, logger.Query(redactQuery(q, cfg.RedactQuery)))
		}

		level := cfg.LogLevel
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
			if len(c.Errors) > 0 {
				errs := make([]error, len(c.Errors))
				for i, e := range c.Errors {
					errs[i] = e.Err
				}
				attrs = append(attrs, logger.Errors(errs...))
			}
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		case latency > cfg.SlowRequestThreshold && !isStream(c):
			level = slog.LevelWarn
			attrs = append(attrs, slog.Bool("slow_request", true))
		}

		cfg.Logger.LogAttrs(c.Request.Context(), level, "HTTP request completed", attrs...)
	}
}

// SkipPaths returns a Skip func matching exact request paths.
func SkipPaths(paths ...string) func(c *gin.Context) bool {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return func(c *gin.Context) bool {
		_, ok := set[c.Request.URL.Path]
		return ok
	}
}

// Streams stay open for the whole session, so their latency says nothing.
func isStream(c *gin.Context) bool {
	if c.Writer.Status() == http.StatusSwitchingProtocols || c.IsWebsocket() {
		return true
	}
	return strings.HasPrefix(c.Writer.Header().Get("Content-Type"), "text/event-stream")
}

func redactQuery(raw string, keys []string) string {
	if len(keys) == 0 {
		return raw
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return raw
	}
	changed := false
	for _, k := range keys {
		if _, ok := values[k]; ok {
			values.Set(k, "REDACTED")
			changed = true
		}
	}
	if !changed {
		return raw
	}
	return values.Encode()
}
