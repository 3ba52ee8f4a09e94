package shimhttp

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewLimiterFromClient(client, time.Minute), mr
}

func TestLimiter_AllowsWithinBudget(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, "global", "1.2.3.4", 3)
		if err != nil {
			t.Fatalf("Allow: %v", err)
		}
		if !ok {
			t.Fatalf("request %d should be allowed within a 3-request budget", i+1)
		}
	}
}

func TestLimiter_RejectsOverBudget(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := limiter.Allow(ctx, "global", "1.2.3.4", 3); err != nil {
			t.Fatalf("Allow: %v", err)
		}
	}

	ok, err := limiter.Allow(ctx, "global", "1.2.3.4", 3)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if ok {
		t.Fatal("4th request should be rejected against a 3-request budget")
	}
}

func TestLimiter_BucketsAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := limiter.Allow(ctx, "global", "1.2.3.4", 2); err != nil {
			t.Fatalf("Allow: %v", err)
		}
	}

	ok, err := limiter.Allow(ctx, "execute", "1.2.3.4", 2)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if !ok {
		t.Fatal("a different bucket for the same key should have its own budget")
	}
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := limiter.Allow(ctx, "global", "1.2.3.4", 2); err != nil {
			t.Fatalf("Allow: %v", err)
		}
	}

	ok, err := limiter.Allow(ctx, "global", "5.6.7.8", 2)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if !ok {
		t.Fatal("a different source address should have its own budget")
	}
}
