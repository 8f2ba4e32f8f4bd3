package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryIdempotencyStore is the single-instance fallback used when Redis is
// disabled. Expired keys are swept lazily, at most once per TTL, while
// claiming.
type MemoryIdempotencyStore struct {
	mu        sync.Mutex
	keys      map[string]memoryKey
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

type memoryKey struct {
	result  string
	expires time.Time
}

func NewMemoryIdempotencyStore(ttl time.Duration) *MemoryIdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &MemoryIdempotencyStore{keys: make(map[string]memoryKey), ttl: ttl, now: time.Now}
}

func (s *MemoryIdempotencyStore) Claim(_ context.Context, key string) (bool, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= s.ttl {
		s.sweepLocked(now)
	}
	if k, ok := s.keys[key]; ok && now.Before(k.expires) {
		return false, k.result, nil
	}
	s.keys[key] = memoryKey{result: PendingResult, expires: now.Add(s.ttl)}
	return true, "", nil
}

func (s *MemoryIdempotencyStore) Complete(_ context.Context, key, result string) error {
	s.mu.Lock()
	s.keys[key] = memoryKey{result: result, expires: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.keys, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryIdempotencyStore) sweepLocked(now time.Time) {
	for key, k := range s.keys {
		if !now.Before(k.expires) {
			delete(s.keys, key)
		}
	}
	s.lastSweep = now
}

func (s *MemoryIdempotencyStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}
