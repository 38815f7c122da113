package factory

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/heijo-app/waitlist/pkg/ratelimit"
)

type Cache interface {
	Ping(ctx context.Context) error
}

type RedisClientProvider interface {
	GetClient() *redis.Client
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Logger   ratelimit.Logger
	Scope    string
}

type RateLimiterFactory interface {
	CreateRateLimiter() ratelimit.RateLimiter
}

// DefaultRateLimiterFactory shares Redis with the global limiter when a cache is
// configured, so per-endpoint limits hold across instances.
type DefaultRateLimiterFactory struct {
	config *ratelimit.RateLimitConfig
}

func NewDefaultRateLimiterFactory(scope string, requests int, window time.Duration, cache Cache, logger ratelimit.Logger) *DefaultRateLimiterFactory {
	var redisClient *redis.Client
	if cache != nil {
		if provider, ok := cache.(RedisClientProvider); ok {
			redisClient = provider.GetClient()
		}
	}

	return &DefaultRateLimiterFactory{
		config: &ratelimit.RateLimitConfig{
			Requests: requests,
			Window:   window,
			Redis:    redisClient,
			Logger:   logger,
			Scope:    scope,
		},
	}
}

func (f *DefaultRateLimiterFactory) CreateRateLimiter() ratelimit.RateLimiter {
	return ratelimit.NewRateLimiter(f.config)
}

type FactoryContainer struct {
	// SubmissionLimiterFactory builds the limiters guarding signup endpoints.
	SubmissionLimiterFactory RateLimiterFactory
	// HealthLimiterFactory guards /health, which touches every backing service.
	HealthLimiterFactory RateLimiterFactory
}

func NewFactoryContainer(submissions, health *RateLimitConfig, cache Cache) *FactoryContainer {
	return &FactoryContainer{
		SubmissionLimiterFactory: NewDefaultRateLimiterFactory(submissions.Scope, submissions.Requests, submissions.Window, cache, submissions.Logger),
		HealthLimiterFactory:     NewDefaultRateLimiterFactory(health.Scope, health.Requests, health.Window, cache, health.Logger),
	}
}
