package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window limiter backed by Redis, for deployments
// where several worker instances should share one budget per client.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRedis creates a Redis-backed limiter allowing limit requests per key per
// window.
func NewRedis(client *redis.Client, limit int, windowSize time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: windowSize}
}

// Allow increments the key's window counter atomically. The expiry is set
// only when the counter is created, so the window boundary is stable.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := fmt.Sprintf("ratelimit:%s", key)

	count, err := l.client.Incr(ctx, bucket).Result()
	if err != nil {
		return false, fmt.Errorf("increment rate limit counter: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, bucket, l.window).Err(); err != nil {
			return false, fmt.Errorf("set rate limit expiry: %w", err)
		}
	}
	return count <= int64(l.limit), nil
}

var _ Limiter = (*RedisLimiter)(nil)
