package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stockroute/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Limiter decides whether one more request for key is allowed
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimiter is an in-memory fixed window limiter for single instance
// deployments
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   int
	window  time.Duration
	now     func() time.Time
	done    chan struct{}
	stop    sync.Once
}

type client struct {
	tokens    int
	lastReset time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*client),
		limit:   limit,
		window:  window,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go rl.cleanupLoop(window * 2)
	return rl
}

func (rl *RateLimiter) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := rl.now()
			for key, c := range rl.clients {
				if now.Sub(c.lastReset) > rl.window*2 {
					delete(rl.clients, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Allow checks if a request from the given key should be allowed
func (rl *RateLimiter) Allow(_ context.Context, key string) (bool, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	c, exists := rl.clients[key]
	if !exists || now.Sub(c.lastReset) >= rl.window {
		rl.clients[key] = &client{tokens: rl.limit - 1, lastReset: now}
		return rl.limit > 0, nil
	}
	if c.tokens > 0 {
		c.tokens--
		return true, nil
	}
	return false, nil
}

// Close stops the cleanup goroutine
func (rl *RateLimiter) Close() {
	rl.stop.Do(func() { close(rl.done) })
}

// ClientIPKey keys requests by client IP under prefix
func ClientIPKey(prefix string) func(*gin.Context) string {
	return func(c *gin.Context) string {
		return prefix + ":" + c.ClientIP()
	}
}

// RateLimitByKey rejects requests over the limiter's budget with 429.
// Limiter failures let the request through.
func RateLimitByKey(limiter Limiter, keyFunc func(*gin.Context) string, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		key := keyFunc(c)

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Error("Rate limiter unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.",
				getRequestIDFromContext(c),
			))
			return
		}

		c.Next()
	}
}
