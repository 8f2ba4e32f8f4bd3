package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/stockroute/backend/internal/domain/shared"
)

// RedisLocker hands out short-lived distributed locks backed by Redis
type RedisLocker struct {
	client    *redislock.Client
	keyPrefix string
}

// NewRedisLocker creates a locker on an existing Redis client
func NewRedisLocker(client redislock.RedisClient) *RedisLocker {
	return &RedisLocker{
		client:    redislock.New(client),
		keyPrefix: "lock:",
	}
}

// Lock obtains key for ttl without waiting. A held key yields
// shared.ErrConcurrencyConflict.
func (l *RedisLocker) Lock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	lock, err := l.client.Obtain(ctx, l.keyPrefix+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, shared.ErrConcurrencyConflict
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}

	return func(ctx context.Context) error {
		err := lock.Release(ctx)
		if errors.Is(err, redislock.ErrLockNotHeld) {
			return nil
		}
		return err
	}, nil
}
