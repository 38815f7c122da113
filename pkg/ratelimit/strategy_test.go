package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func TestInMemoryRateLimiter_IsLimited_IsPerKey(t *testing.T) {
	ctx := context.Background()
	limiter := NewInMemoryRateLimiter(1, time.Second)

	limited, err := limiter.IsLimited(ctx, "client-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limited {
		t.Fatalf("first request for client-a should not be limited")
	}

	limited, err = limiter.IsLimited(ctx, "client-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !limited {
		t.Fatalf("second immediate request for client-a should be limited")
	}

	limited, err = limiter.IsLimited(ctx, "client-b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limited {
		t.Fatalf("first request for client-b should not be limited (per-key limiter)")
	}
}

func TestRedisRateLimiter_SlidingWindow(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	limiter := NewRateLimiter(&RateLimitConfig{Requests: 2, Window: time.Minute, Redis: client})
	if _, ok := limiter.(*RedisRateLimiter); !ok {
		t.Fatalf("expected a Redis-backed limiter when a client is configured, got %T", limiter)
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		limited, err := limiter.IsLimited(ctx, "10.0.0.1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if limited {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	limited, err := limiter.IsLimited(ctx, "10.0.0.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !limited {
		t.Fatalf("third request inside the window should be limited")
	}

	if !mr.Exists("waitlist:ratelimit:10.0.0.1") {
		t.Fatalf("expected prefixed sorted-set key in redis")
	}
}

func TestRedisRateLimiter_ReturnsErrorWhenRedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	limiter := NewRedisRateLimiter(client, 1, time.Minute, nil)
	if _, err := limiter.IsLimited(context.Background(), "k"); err == nil {
		t.Fatalf("expected an error when redis is unreachable")
	}
}
