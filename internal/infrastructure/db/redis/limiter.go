package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/casedesk/session-guard/internal/core/domain"
	"github.com/casedesk/session-guard/internal/core/ratelimit"
)

const limiterPrefix = "casedesk:ratelimit:"

// slidingWindow prunes, counts and conditionally records in one round trip.
// Scores are unix milliseconds. Returns {allowed, count, oldestScore}.
var slidingWindow = redis.NewScript(`
local key    = KEYS[1]
local now    = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max    = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < max then
  redis.call('ZADD', key, now, ARGV[4])
  redis.call('PEXPIRE', key, window)
  count = count + 1
  allowed = 1
end
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local oldestScore = now
if oldest[2] then
  oldestScore = tonumber(oldest[2])
end
return {allowed, count, oldestScore}
`)

// Limiter is the Redis form of ratelimit.Limiter: one sorted set per key,
// so every process sharing the database sees the same buckets.
type Limiter struct {
	client      redis.Cmdable
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

func NewLimiter(client redis.Cmdable, maxAttempts int, window time.Duration) *Limiter {
	if maxAttempts <= 0 {
		maxAttempts = ratelimit.DefaultMaxAttempts
	}
	if window <= 0 {
		window = ratelimit.DefaultWindow
	}
	return &Limiter{
		client:      client,
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
	}
}

func (l *Limiter) Check(ctx context.Context, key string) (domain.RateLimitResult, error) {
	now := l.now()
	res, err := slidingWindow.Run(ctx, l.client,
		[]string{limiterPrefix + key},
		now.UnixMilli(), l.window.Milliseconds(), l.maxAttempts, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return domain.RateLimitResult{}, fmt.Errorf("redis rate limit %s: %w", key, err)
	}
	if len(res) != 3 {
		return domain.RateLimitResult{}, fmt.Errorf("redis rate limit %s: unexpected reply %v", key, res)
	}

	reset := time.UnixMilli(res[2]).Add(l.window)
	if res[0] == 0 {
		return domain.RateLimitResult{
			Allowed:    false,
			Remaining:  0,
			ResetTime:  reset,
			RetryAfter: ratelimit.RetryAfterSeconds(reset.Sub(now)),
		}, nil
	}
	return domain.RateLimitResult{
		Allowed:   true,
		Remaining: l.maxAttempts - int(res[1]),
		ResetTime: reset,
	}, nil
}

func (l *Limiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, limiterPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis rate limit reset %s: %w", key, err)
	}
	return nil
}
