package adminauth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/livefeed/pkg/jwt"
)

// RoleAdmin is the role claim carried by admin tokens.
const RoleAdmin = "admin"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotConfigured      = errors.New("admin login is not configured")
	ErrWeakPassword       = errors.New("password must be at least 12 characters")
)

// Config holds the single admin account. PasswordHash is a bcrypt hash,
// generate one with `livefeed hash-password`.
type Config struct {
	Email        string        `env:"ADMIN_EMAIL"`
	PasswordHash string        `env:"ADMIN_PASSWORD_HASH"`
	TokenTTL     time.Duration `env:"ADMIN_TOKEN_TTL" envDefault:"12h"`
}

// Enabled reports whether both credentials are set.
func (c Config) Enabled() bool {
	return c.Email != "" && c.PasswordHash != ""
}

// Authenticator exchanges admin credentials for access tokens.
type Authenticator struct {
	email  string
	hash   []byte
	ttl    time.Duration
	tokens *jwt.Service
}

// New creates an Authenticator. It fails with ErrNotConfigured when cfg
// has no credentials and with bcrypt's error when the hash is malformed.
func New(cfg Config, tokens *jwt.Service) (*Authenticator, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	if _, err := bcrypt.Cost([]byte(cfg.PasswordHash)); err != nil {
		return nil, fmt.Errorf("admin password hash: %w", err)
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Authenticator{
		email:  normalizeEmail(cfg.Email),
		hash:   []byte(cfg.PasswordHash),
		ttl:    ttl,
		tokens: tokens,
	}, nil
}

// Token is an issued access token.
type Token struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Login checks the credentials and issues a token for the admin account.
// Unknown emails and wrong passwords fail the same way.
func (a *Authenticator) Login(email, password string) (Token, error) {
	emailOK := subtle.ConstantTimeCompare([]byte(normalizeEmail(email)), []byte(a.email)) == 1
	// bcrypt runs for unknown emails too.
	pwErr := bcrypt.CompareHashAndPassword(a.hash, []byte(password))
	if !emailOK || pwErr != nil {
		return Token{}, ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(a.ttl).Truncate(time.Second)
	signed, err := a.tokens.Generate(jwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   a.email,
			ExpiresAt: gojwt.NewNumericDate(expiresAt),
		},
		Role: RoleAdmin,
	}, a.ttl)
	if err != nil {
		return Token{}, err
	}
	return Token{AccessToken: signed, TokenType: "Bearer", ExpiresAt: expiresAt}, nil
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if len(password) < 12 {
		return "", ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
