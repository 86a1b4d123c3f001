package ratelimiter

import (
	"context"
	"fmt"
	"time"
)

// Config describes a token bucket.
type Config struct {
	Capacity       int           `env:"RATE_LIMIT_CAPACITY" envDefault:"5"`         // maximum tokens, also the burst size
	RefillRate     int           `env:"RATE_LIMIT_REFILL_RATE" envDefault:"1"`      // tokens added per interval
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" envDefault:"1m"` // how often RefillRate tokens are added
}

// Validate reports whether the config describes a usable bucket.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive", ErrInvalidConfig)
	}
	if c.RefillRate <= 0 {
		return fmt.Errorf("%w: refill rate must be positive", ErrInvalidConfig)
	}
	if c.RefillInterval <= 0 {
		return fmt.Errorf("%w: refill interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// Store keeps bucket state per key.
type Store interface {
	// ConsumeTokens takes tokens from the bucket for key, creating a full
	// bucket on first use. remaining goes negative when the bucket could
	// not cover the request.
	ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config) (remaining int, resetAt time.Time, err error)
	Reset(ctx context.Context, key string) error
}

// Result is the outcome of one Allow call.
type Result struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Allowed reports whether the request fit in the bucket.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter is how long a rejected caller should wait.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(0, time.Until(r.ResetAt))
}

// RateLimiter decides whether a request identified by key may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
}

// Bucket is a token bucket RateLimiter backed by a Store.
type Bucket struct {
	store Store
	cfg   Config
}

var _ RateLimiter = (*Bucket)(nil)

// NewBucket creates a Bucket. The config is validated once here.
func NewBucket(store Store, cfg Config) (*Bucket, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Bucket{store: store, cfg: cfg}, nil
}

// Allow consumes one token for key.
func (b *Bucket) Allow(ctx context.Context, key string) (*Result, error) {
	return b.AllowN(ctx, key, 1)
}

// AllowN consumes n tokens for key.
func (b *Bucket) AllowN(ctx context.Context, key string, n int) (*Result, error) {
	if n <= 0 {
		return nil, ErrInvalidTokenCount
	}

	remaining, resetAt, err := b.store.ConsumeTokens(ctx, key, n, b.cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	return &Result{
		Limit:     b.cfg.Capacity,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

// Reset refills the bucket for key.
func (b *Bucket) Reset(ctx context.Context, key string) error {
	return b.store.Reset(ctx, key)
}
