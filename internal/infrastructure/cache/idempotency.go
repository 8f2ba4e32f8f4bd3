package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PendingResult marks a key whose first request is still running
const PendingResult = "pending"

// DefaultIdempotencyTTL is how long a key and its result are remembered
const DefaultIdempotencyTTL = 24 * time.Hour

// RedisIdempotencyStore remembers Idempotency-Key headers of sale creation
// requests across instances. A key moves from PendingResult to the created
// resource id, or is released when the request fails.
type RedisIdempotencyStore struct {
	client    redis.Cmdable
	keyPrefix string
	ttl       time.Duration
}

// NewRedisIdempotencyStore creates a store on an existing client
func NewRedisIdempotencyStore(client redis.Cmdable, ttl time.Duration) *RedisIdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: "idempotency:",
		ttl:       ttl,
	}
}

// Claim reserves key for the caller. When the key is already known it
// returns false and the stored result, which is PendingResult while the
// first request runs.
func (s *RedisIdempotencyStore) Claim(ctx context.Context, key string) (bool, string, error) {
	claimed, err := s.client.SetNX(ctx, s.keyPrefix+key, PendingResult, s.ttl).Result()
	if err != nil {
		return false, "", fmt.Errorf("claim idempotency key: %w", err)
	}
	if claimed {
		return true, "", nil
	}

	result, err := s.client.Get(ctx, s.keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		// Expired between SETNX and GET; try once more.
		claimed, err = s.client.SetNX(ctx, s.keyPrefix+key, PendingResult, s.ttl).Result()
		if err != nil {
			return false, "", fmt.Errorf("claim idempotency key: %w", err)
		}
		return claimed, PendingResult, nil
	}
	if err != nil {
		return false, "", fmt.Errorf("read idempotency key: %w", err)
	}
	return false, result, nil
}

// Complete stores the result of a claimed key
func (s *RedisIdempotencyStore) Complete(ctx context.Context, key, result string) error {
	if err := s.client.Set(ctx, s.keyPrefix+key, result, s.ttl).Err(); err != nil {
		return fmt.Errorf("complete idempotency key: %w", err)
	}
	return nil
}

// Release forgets a claimed key so the request can be retried
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}
