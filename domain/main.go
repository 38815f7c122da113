package domain

import (
	"time"

	"github.com/heijo-app/waitlist/config"
	"github.com/heijo-app/waitlist/domain/landing"
	"github.com/heijo-app/waitlist/domain/monitoring"
	"github.com/heijo-app/waitlist/domain/waitlist"
	"github.com/heijo-app/waitlist/pkg/constants"
	"github.com/heijo-app/waitlist/pkg/factory"
)

// SetupCoreDomain wires the store, the shared waitlist service and every
// controller onto the router.
func SetupCoreDomain(appConfig *config.ApplicationConfig) error {
	repository, err := waitlist.NewRepositoryForStore(appConfig.Store, appConfig.DB)
	if err != nil {
		return err
	}

	factories := factory.NewFactoryContainer(
		&factory.RateLimitConfig{
			Requests: appConfig.Config.SubmissionRateLimit,
			Window:   time.Minute,
			Logger:   appConfig.Logger,
			Scope:    "submission",
		},
		&factory.RateLimitConfig{
			Requests: constants.HealthRequestsPerMinute,
			Window:   time.Minute,
			Logger:   appConfig.Logger,
			Scope:    "health",
		},
		appConfig.Cache,
	)

	serviceConfig := waitlist.ServiceConfig{
		SiteName:   appConfig.Site.Name,
		Registerer: appConfig.RouterService.MetricsRegisterer(),
	}
	if appConfig.Notifier != nil {
		serviceConfig.Notifier = appConfig.Notifier
	}

	waitlistFactory := waitlist.NewWaitlistServiceFactory(repository, appConfig.Logger, serviceConfig, factories.SubmissionLimiterFactory)

	var notifierStatus monitoring.NotifierStatus
	if appConfig.Notifier != nil {
		notifierStatus = appConfig.Notifier
	}

	monitoringFactory := monitoring.NewMonitoringControllerFactory(
		repository, appConfig.Cache, notifierStatus, appConfig.Logger, appConfig.StartedAt, factories.HealthLimiterFactory,
	)

	appConfig.RouterService.MountController(monitoringFactory.CreateController())
	appConfig.RouterService.MountController(waitlistFactory.CreateController())
	appConfig.RouterService.MountController(landing.NewLandingController(
		waitlistFactory.CreateService(),
		*appConfig.Site,
		factories.SubmissionLimiterFactory.CreateRateLimiter(),
	))

	return nil
}
