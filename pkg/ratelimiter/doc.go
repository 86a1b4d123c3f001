// Package ratelimiter implements token bucket rate limiting with pluggable
// state storage.
//
// A Bucket holds Capacity tokens and gains RefillRate tokens every
// RefillInterval. Each Allow call takes one token; a call that finds the
// bucket empty is rejected and takes nothing.
//
//	store := ratelimiter.NewMemoryStore()
//	limiter, err := ratelimiter.NewBucket(store, ratelimiter.Config{
//		Capacity:       10,
//		RefillRate:     1,
//		RefillInterval: 6 * time.Second,
//	})
//
//	res, err := limiter.Allow(ctx, clientIP)
//	if err == nil && !res.Allowed() {
//		// reject, retry after res.RetryAfter()
//	}
//
// MemoryStore keeps state per process; run its cleanup loop with
// g.Go(store.Run(ctx)). RedisStore shares buckets between processes and
// expires them in Redis.
package ratelimiter
