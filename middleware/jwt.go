package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dmitrymomot/livefeed/core/response"
	"github.com/dmitrymomot/livefeed/pkg/jwt"
)

type jwtClaimsContextKey struct{}

// JWTConfig configures the JWT authentication middleware.
type JWTConfig struct {
	// Service verifies tokens. Required.
	Service *jwt.Service
	// TokenExtractor finds the token in the request (default: bearer header).
	TokenExtractor func(c *gin.Context) string
	// ErrorHandler responds to missing or invalid tokens (default: 401 JSON).
	ErrorHandler func(c *gin.Context, err error)
	// Skip bypasses authentication for matching requests.
	Skip func(c *gin.Context) bool
}

// ErrMissingToken is passed to the error handler when no token was found.
var ErrMissingToken = errors.New("missing access token")

// JWT rejects requests without a valid access token. Parsed claims are
// stored in the request context; read them with GetClaims.
// Panics if cfg.Service is nil.
func JWT(cfg JWTConfig) gin.HandlerFunc {
	if cfg.Service == nil {
		panic("jwt middleware: service is required")
	}
	if cfg.TokenExtractor == nil {
		cfg.TokenExtractor = JWTFromAuthHeader()
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *gin.Context, err error) {
			msg := "invalid access token"
			switch {
			case errors.Is(err, ErrMissingToken):
				msg = "access token required"
			case errors.Is(err, jwt.ErrExpiredToken):
				msg = "access token expired"
			}
			c.Header("WWW-Authenticate", `Bearer realm="livefeed"`)
			response.Error(c, response.ErrUnauthorized.WithMessage(msg))
		}
	}

	return func(c *gin.Context) {
		if cfg.Skip != nil && cfg.Skip(c) {
			c.Next()
			return
		}

		token := cfg.TokenExtractor(c)
		if token == "" {
			cfg.ErrorHandler(c, ErrMissingToken)
			c.Abort()
			return
		}

		claims, err := cfg.Service.Parse(token)
		if err != nil {
			cfg.ErrorHandler(c, err)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), jwtClaimsContextKey{}, claims))
		c.Next()
	}
}

// GetClaims returns the claims stored by JWT.
func GetClaims(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(jwtClaimsContextKey{}).(*jwt.Claims)
	return claims, ok
}

// JWTFromAuthHeader reads "Authorization: Bearer <token>".
func JWTFromAuthHeader() func(c *gin.Context) string {
	return func(c *gin.Context) string {
		const prefix = "bearer "
		auth := c.GetHeader("Authorization")
		if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
			return ""
		}
		return strings.TrimSpace(auth[len(prefix):])
	}
}

// JWTFromQuery reads the token from a query parameter. EventSource and
// browser WebSocket clients cannot set headers, so streams use this.
func JWTFromQuery(param string) func(c *gin.Context) string {
	return func(c *gin.Context) string {
		return c.Query(param)
	}
}

// JWTFromCookie reads the token from a cookie.
func JWTFromCookie(name string) func(c *gin.Context) string {
	return func(c *gin.Context) string {
		v, err := c.Cookie(name)
		if err != nil {
			return ""
		}
		return v
	}
}

// JWTFromMultiple tries extractors in order and returns the first token.
func JWTFromMultiple(extractors ...func(c *gin.Context) string) func(c *gin.Context) string {
	return func(c *gin.Context) string {
		for _, extract := range extractors {
			if token := extract(c); token != "" {
				return token
			}
		}
		return ""
	}
}
