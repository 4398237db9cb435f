package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed one-minute window counter keyed by client and
// window start. INCR and EXPIRE run in one transaction.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter allows requestsPerMinute plus burst requests per window.
func NewRedisLimiter(client *redis.Client, prefix string, requestsPerMinute, burst int) *RedisLimiter {
	if burst < 0 {
		burst = 0
	}
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		limit:  requestsPerMinute + burst,
		window: time.Minute,
		now:    time.Now,
	}
}

func (r *RedisLimiter) Backend() string { return "redis" }

func (r *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := r.now()
	windowStart := now.Truncate(r.window)
	redisKey := r.windowKey(key, windowStart)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limit counter: %w", err)
	}

	count := int(incr.Val())
	if count > r.limit {
		return Decision{
			Allowed:    false,
			Limit:      r.limit,
			RetryAfter: windowStart.Add(r.window).Sub(now),
		}, nil
	}
	return Decision{Allowed: true, Limit: r.limit, Remaining: r.limit - count}, nil
}

func (r *RedisLimiter) windowKey(key string, windowStart time.Time) string {
	return fmt.Sprintf("%s:%s:%d", r.prefix, key, windowStart.Unix())
}
