package waitlist

import (
	"sync"

	"github.com/heijo-app/waitlist/config/router"
	"github.com/heijo-app/waitlist/internal/log"
	"github.com/heijo-app/waitlist/pkg/factory"
	"github.com/heijo-app/waitlist/pkg/ratelimit"
)

type WaitlistServiceFactory interface {
	CreateService() WaitlistService
	CreateController() *router.RESTController
}

// DefaultWaitlistServiceFactory builds one service and shares it between the
// JSON controller and the landing page, so metrics are registered once.
type DefaultWaitlistServiceFactory struct {
	repository         WaitlistRepository
	logger             *log.Logger
	config             ServiceConfig
	rateLimiterFactory factory.RateLimiterFactory

	once    sync.Once
	service WaitlistService
}

func NewWaitlistServiceFactory(
	repository WaitlistRepository,
	logger *log.Logger,
	config ServiceConfig,
	rateLimiterFactory factory.RateLimiterFactory,
) WaitlistServiceFactory {
	return &DefaultWaitlistServiceFactory{
		repository:         repository,
		logger:             logger,
		config:             config,
		rateLimiterFactory: rateLimiterFactory,
	}
}

func (f *DefaultWaitlistServiceFactory) CreateService() WaitlistService {
	f.once.Do(func() {
		f.service = NewWaitlistService(f.logger, f.repository, f.config)
	})
	return f.service
}

func (f *DefaultWaitlistServiceFactory) CreateController() *router.RESTController {
	var limiter ratelimit.RateLimiter
	if f.rateLimiterFactory != nil {
		limiter = f.rateLimiterFactory.CreateRateLimiter()
	}
	return NewWaitlistController(f.CreateService(), limiter)
}
