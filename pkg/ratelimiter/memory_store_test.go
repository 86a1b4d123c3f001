package ratelimiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/livefeed/pkg/ratelimiter"
)

func TestMemoryStore_Cleanup(t *testing.T) {
	t.Parallel()

	clock := newManualClock()
	store := ratelimiter.NewMemoryStore(
		ratelimiter.WithMemoryStoreClock(clock.Now),
		ratelimiter.WithCleanupInterval(5*time.Millisecond),
	)
	cfg := ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Second}

	_, _, err := store.ConsumeTokens(context.Background(), "old", 1, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Stats().ActiveBuckets)

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	g.Go(store.Run(gctx))

	clock.Advance(2 * time.Hour)
	require.Eventually(t, func() bool { return store.Stats().ActiveBuckets == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, g.Wait())

	stats := store.Stats()
	assert.Equal(t, int64(1), stats.BucketsCreated)
	assert.Equal(t, int64(1), stats.BucketsRemoved)
}

func TestMemoryStore_ConsumeTokens(t *testing.T) {
	t.Parallel()

	store := ratelimiter.NewMemoryStore()
	cfg := ratelimiter.Config{Capacity: 10, RefillRate: 2, RefillInterval: time.Hour}
	ctx := context.Background()

	remaining, resetAt, err := store.ConsumeTokens(ctx, "k", 4, cfg)
	require.NoError(t, err)
	assert.Equal(t, 6, remaining)
	assert.False(t, resetAt.IsZero())

	remaining, _, err = store.ConsumeTokens(ctx, "k", 8, cfg)
	require.NoError(t, err)
	assert.Equal(t, -2, remaining)

	remaining, _, err = store.ConsumeTokens(ctx, "k", 6, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
}
