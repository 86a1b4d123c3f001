package ratelimiter

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// consumeScript runs the same refill and consume steps as MemoryStore
// atomically inside Redis. The bucket hash holds tokens and the last
// refill time in milliseconds.
var consumeScript = redis.NewScript(`
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local cost = tonumber(ARGV[4])
local now = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'refill')
local tokens = tonumber(state[1])
local refill = tonumber(state[2])
if tokens == nil then
	tokens = capacity
	refill = now
end

local intervals = math.floor((now - refill) / interval)
local cap = math.floor(capacity / rate) + 1
if intervals > cap then intervals = cap end
if intervals > 0 then
	tokens = math.min(tokens + intervals * rate, capacity)
	refill = now
end

local remaining = tokens - cost
if remaining >= 0 then
	tokens = remaining
end

redis.call('HSET', key, 'tokens', tokens, 'refill', refill)
redis.call('PEXPIRE', key, interval * (cap + 1))
return {remaining, refill + interval}
`)

// RedisStore shares buckets between processes through Redis.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a store keeping buckets under prefix.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &RedisStore{client: client, prefix: prefix, now: time.Now}
}

func (s *RedisStore) ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config) (int, time.Time, error) {
	res, err := consumeScript.Run(ctx, s.client, []string{s.prefix + key},
		cfg.Capacity,
		cfg.RefillRate,
		max(1, cfg.RefillInterval.Milliseconds()),
		tokens,
		s.now().UnixMilli(),
	).Int64Slice()
	if err != nil {
		return 0, time.Time{}, err
	}
	return int(res[0]), time.UnixMilli(res[1]), nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
