package factory

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/heijo-app/waitlist/pkg/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type redisCache struct {
	client *redis.Client
}

func (c *redisCache) Ping(ctx context.Context) error { return c.client.Ping(ctx).Err() }

func (c *redisCache) GetClient() *redis.Client { return c.client }

type pingOnly struct{}

func (pingOnly) Ping(context.Context) error { return nil }

func TestDefaultRateLimiterFactory_InMemoryWithoutRedis(t *testing.T) {
	f := NewDefaultRateLimiterFactory("submission", 2, time.Minute, pingOnly{}, nil)

	limiter := f.CreateRateLimiter()
	_, ok := limiter.(*ratelimit.InMemoryRateLimiter)
	assert.True(t, ok)

	requests, window := limiter.GetLimitDetails()
	assert.Equal(t, 2, requests)
	assert.Equal(t, time.Minute, window)
}

func TestDefaultRateLimiterFactory_UsesRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := NewDefaultRateLimiterFactory("submission", 1, time.Minute, &redisCache{client: client}, nil)

	limiter := f.CreateRateLimiter()
	_, ok := limiter.(*ratelimit.RedisRateLimiter)
	require.True(t, ok)

	limited, err := limiter.IsLimited(context.Background(), "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, limited)

	limited, err = limiter.IsLimited(context.Background(), "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, limited)

	assert.True(t, mr.Exists("waitlist:ratelimit:submission:203.0.113.7"))
}

func TestNewFactoryContainer(t *testing.T) {
	c := NewFactoryContainer(
		&RateLimitConfig{Requests: 30, Window: time.Minute},
		&RateLimitConfig{Requests: 10, Window: time.Minute},
		nil,
	)

	submissions, _ := c.SubmissionLimiterFactory.CreateRateLimiter().GetLimitDetails()
	health, _ := c.HealthLimiterFactory.CreateRateLimiter().GetLimitDetails()

	assert.Equal(t, 30, submissions)
	assert.Equal(t, 10, health)
}
