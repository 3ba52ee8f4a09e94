package shimhttp

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter enforces a fixed-window per-key request budget in Redis. It is
// grounded on the INCR+EXPIRE fixed-window-counter pattern, the same
// shape kubernaut's redis cache client wraps around go-redis.
type Limiter struct {
	client *redis.Client
	window time.Duration
}

// NewLimiter creates a Limiter against the given Redis options. It does not
// connect eagerly; callers that want an early failure should Ping first.
func NewLimiter(opts *redis.Options, window time.Duration) *Limiter {
	return &Limiter{client: redis.NewClient(opts), window: window}
}

// NewLimiterFromClient wraps an already-constructed client, used by tests
// to point the limiter at a miniredis instance.
func NewLimiterFromClient(client *redis.Client, window time.Duration) *Limiter {
	return &Limiter{client: client, window: window}
}

// Allow increments the counter for key (scoped by bucket, e.g. "global" or
// "execute") and reports whether the caller is still within limit requests
// for the current window. The first increment in a window sets its
// expiry; later increments within the same window do not extend it,
// matching a fixed (not sliding) window.
func (l *Limiter) Allow(ctx context.Context, bucket, key string, limit int) (bool, error) {
	redisKey := fmt.Sprintf("ratelimit:%s:%s", bucket, key)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("rate limiter increment: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return false, fmt.Errorf("rate limiter set expiry: %w", err)
		}
	}

	return count <= int64(limit), nil
}

// Close releases the underlying Redis connection pool.
func (l *Limiter) Close() error {
	return l.client.Close()
}
