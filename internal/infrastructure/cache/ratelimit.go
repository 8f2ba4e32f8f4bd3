package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter counts requests per key in fixed windows shared by all
// instances
type RedisRateLimiter struct {
	client    redis.Cmdable
	keyPrefix string
	limit     int64
	window    time.Duration
}

// NewRedisRateLimiter allows limit hits per key and window
func NewRedisRateLimiter(client redis.Cmdable, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:    client,
		keyPrefix: "ratelimit:",
		limit:     int64(limit),
		window:    window,
	}
}

// Allow records a hit for key and reports whether it is within the limit
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.keyPrefix + key
	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return count <= l.limit, nil
}
