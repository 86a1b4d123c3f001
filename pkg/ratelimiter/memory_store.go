package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/livefeed/core/logger"
)

// staleAfter is how long an untouched bucket is kept before cleanup.
const staleAfter = time.Hour

type bucket struct {
	tokens     int
	lastRefill time.Time
	lastAccess time.Time
}

// MemoryStore keeps buckets in process memory. Stale buckets are dropped by
// the cleanup loop started with Run.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	cleanupInterval time.Duration
	logger          *slog.Logger
	now             func() time.Time

	bucketsCreated atomic.Int64
	bucketsRemoved atomic.Int64
}

var _ Store = (*MemoryStore)(nil)

// MemoryStoreStats is a point-in-time view of the store.
type MemoryStoreStats struct {
	BucketsCreated int64
	BucketsRemoved int64
	ActiveBuckets  int
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithCleanupInterval sets how often stale buckets are removed.
func WithCleanupInterval(interval time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if interval > 0 {
			ms.cleanupInterval = interval
		}
	}
}

func WithMemoryStoreLogger(log *slog.Logger) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if log != nil {
			ms.logger = log
		}
	}
}

// WithMemoryStoreClock replaces time.Now.
func WithMemoryStoreClock(now func() time.Time) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if now != nil {
			ms.now = now
		}
	}
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		buckets:         make(map[string]*bucket),
		cleanupInterval: 5 * time.Minute,
		logger:          logger.Discard(),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(ms)
	}
	return ms
}

func (ms *MemoryStore) ConsumeTokens(_ context.Context, key string, tokens int, cfg Config) (int, time.Time, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	b, ok := ms.buckets[key]
	if !ok {
		b = &bucket{tokens: cfg.Capacity, lastRefill: now}
		ms.buckets[key] = b
		ms.bucketsCreated.Add(1)
	}

	// Cap the interval count so huge gaps cannot overflow the token math.
	maxIntervals := int64(cfg.Capacity/cfg.RefillRate + 1)
	intervals := int(min(int64(now.Sub(b.lastRefill)/cfg.RefillInterval), maxIntervals))
	if intervals > 0 {
		b.tokens = min(b.tokens+intervals*cfg.RefillRate, cfg.Capacity)
		b.lastRefill = now
	}

	b.tokens -= tokens
	b.lastAccess = now
	remaining := b.tokens

	// A rejected request does not hold its tokens.
	if remaining < 0 {
		b.tokens += tokens
	}

	return remaining, b.lastRefill.Add(cfg.RefillInterval), nil
}

func (ms *MemoryStore) Reset(_ context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.buckets, key)
	return nil
}

// Run returns an errgroup function that removes stale buckets until ctx is
// canceled.
func (ms *MemoryStore) Run(ctx context.Context) func() error {
	return func() error {
		ticker := time.NewTicker(ms.cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if n := ms.removeStale(); n > 0 {
					ms.logger.DebugContext(ctx, "rate limit buckets removed",
						logger.Component("ratelimiter"),
						logger.Count("removed", n),
					)
				}
			}
		}
	}
}

func (ms *MemoryStore) removeStale() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	removed := 0
	for key, b := range ms.buckets {
		if now.Sub(b.lastAccess) > staleAfter {
			delete(ms.buckets, key)
			removed++
		}
	}
	ms.bucketsRemoved.Add(int64(removed))
	return removed
}

// Stats returns current store statistics.
func (ms *MemoryStore) Stats() MemoryStoreStats {
	ms.mu.Lock()
	active := len(ms.buckets)
	ms.mu.Unlock()

	return MemoryStoreStats{
		BucketsCreated: ms.bucketsCreated.Load(),
		BucketsRemoved: ms.bucketsRemoved.Load(),
		ActiveBuckets:  active,
	}
}
