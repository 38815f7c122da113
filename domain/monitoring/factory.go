package monitoring

import (
	"time"

	"github.com/heijo-app/waitlist/config/router"
	"github.com/heijo-app/waitlist/internal/log"
	"github.com/heijo-app/waitlist/pkg/factory"
	"github.com/heijo-app/waitlist/pkg/ratelimit"
)

type MonitoringControllerFactory interface {
	CreateController() *router.RESTController
}

type DefaultMonitoringControllerFactory struct {
	store              Store
	cache              Cache
	notifier           NotifierStatus
	logger             *log.Logger
	startTime          time.Time
	rateLimiterFactory factory.RateLimiterFactory
}

func NewMonitoringControllerFactory(
	store Store,
	cache Cache,
	notifier NotifierStatus,
	logger *log.Logger,
	startTime time.Time,
	rateLimiterFactory factory.RateLimiterFactory,
) MonitoringControllerFactory {
	return &DefaultMonitoringControllerFactory{
		store:              store,
		cache:              cache,
		notifier:           notifier,
		logger:             logger,
		startTime:          startTime,
		rateLimiterFactory: rateLimiterFactory,
	}
}

func (f *DefaultMonitoringControllerFactory) CreateController() *router.RESTController {
	var limiter ratelimit.RateLimiter
	if f.rateLimiterFactory != nil {
		limiter = f.rateLimiterFactory.CreateRateLimiter()
	}
	return NewMonitoringController(f.store, f.cache, f.notifier, f.logger, f.startTime, limiter)
}
