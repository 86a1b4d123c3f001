package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// minKeyLength is the HS256 key size recommended by RFC 7518.
const minKeyLength = 32

var (
	ErrInvalidSigningKey = errors.New("jwt: signing key must be at least 32 bytes")
	ErrInvalidToken      = errors.New("jwt: invalid token")
	ErrExpiredToken      = errors.New("jwt: token has expired")
)

// Claims are the claims carried by livefeed access tokens.
type Claims struct {
	gojwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// Service issues and verifies tokens with one shared key.
type Service struct {
	key    []byte
	issuer string
	now    func() time.Time
	leeway time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithIssuer sets the iss claim on issued tokens and requires it on
// parsed ones.
func WithIssuer(iss string) Option {
	return func(s *Service) {
		s.issuer = iss
	}
}

// WithLeeway tolerates clock skew when checking exp and nbf.
func WithLeeway(d time.Duration) Option {
	return func(s *Service) {
		s.leeway = d
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Service signing with key.
func New(key []byte, opts ...Option) (*Service, error) {
	if len(key) < minKeyLength {
		return nil, ErrInvalidSigningKey
	}
	s := &Service{key: key, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewFromString is New with a string key.
func NewFromString(key string, opts ...Option) (*Service, error) {
	return New([]byte(key), opts...)
}

// Generate signs claims. IssuedAt, ExpiresAt (when ttl > 0) and Issuer are
// filled in when unset.
func (s *Service) Generate(claims Claims, ttl time.Duration) (string, error) {
	now := s.now()
	if claims.IssuedAt == nil {
		claims.IssuedAt = gojwt.NewNumericDate(now)
	}
	if claims.ExpiresAt == nil && ttl > 0 {
		claims.ExpiresAt = gojwt.NewNumericDate(now.Add(ttl))
	}
	if claims.Issuer == "" {
		claims.Issuer = s.issuer
	}

	signed, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the token signature and time claims and returns its
// claims. Expired tokens yield ErrExpiredToken; every other failure
// yields ErrInvalidToken.
func (s *Service) Parse(token string) (*Claims, error) {
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithTimeFunc(s.now),
		gojwt.WithLeeway(s.leeway),
	}
	if s.issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	_, err := gojwt.ParseWithClaims(token, claims, func(*gojwt.Token) (any, error) {
		return s.key, nil
	}, opts...)
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, gojwt.ErrTokenExpired):
		return nil, fmt.Errorf("%w: %w", ErrExpiredToken, err)
	default:
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
}
