package monitoring

import (
	"context"
	"time"

	"github.com/heijo-app/waitlist/config/router"
	"github.com/heijo-app/waitlist/internal/log"
	"github.com/heijo-app/waitlist/pkg/ratelimit"
)

const healthCheckTimeout = 3 * time.Second

type Cache interface {
	Ping(ctx context.Context) error
}

// Store is the subset of the entry repository the health check needs.
type Store interface {
	Ping(ctx context.Context) error
	Backend() string
}

// NotifierStatus is satisfied by *notify.Dispatcher.
type NotifierStatus interface {
	Provider() string
}

type HealthStatus struct {
	Store        int    `json:"store"`         // 1 = healthy, 0 = unhealthy
	StoreBackend string `json:"store_backend"` // postgres, sqlite or csv
	Cache        int    `json:"cache"`         // 1 = healthy, 0 = unhealthy/not configured
	Notifier     string `json:"notifier"`      // active provider, "none" when disabled
	Uptime       int    `json:"uptime"`        // uptime in seconds
}

type MonitoringController struct {
	store     Store
	cache     Cache
	notifier  NotifierStatus
	logger    *log.Logger
	startTime time.Time
}

func NewMonitoringController(
	store Store,
	cache Cache,
	notifier NotifierStatus,
	logger *log.Logger,
	startTime time.Time,
	limiter ratelimit.RateLimiter,
) *router.RESTController {
	ctrl := &MonitoringController{
		store:     store,
		cache:     cache,
		notifier:  notifier,
		logger:    logger,
		startTime: startTime,
	}

	return router.NewRESTController(
		"MonitoringController",
		"/",
		func(routerService *router.RouterService, controller *router.RESTController) {
			routerService.AddGetHandler(controller, limiter, "health", func(c *router.RequestContext) *router.ServiceResult {
				return ctrl.healthCheck(c)
			})
		},
	)
}

func (ctrl *MonitoringController) healthCheck(c *router.RequestContext) *router.ServiceResult {
	logger := log.GetLoggerInstanceFromContext(c.Request.Context(), ctrl.logger)

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	status := ctrl.performHealthChecks(ctx, logger)
	if status.Store == 0 {
		return router.ServiceUnavailableResult(status, "waitlist store is unavailable")
	}

	return router.OKResult(status, "waitlist health check completed")
}

func (ctrl *MonitoringController) performHealthChecks(ctx context.Context, logger *log.Logger) HealthStatus {
	status := HealthStatus{
		Notifier: "none",
		Uptime:   int(time.Since(ctrl.startTime).Seconds()),
	}

	checkStore(ctx, ctrl.store, &status, logger)
	checkCache(ctx, ctrl.cache, &status, logger)

	if ctrl.notifier != nil {
		status.Notifier = ctrl.notifier.Provider()
	}

	return status
}

func checkStore(ctx context.Context, store Store, status *HealthStatus, logger *log.Logger) {
	if store == nil {
		logger.Error("Store not configured")
		return
	}

	status.StoreBackend = store.Backend()
	if err := store.Ping(ctx); err != nil {
		logger.Error("Store health check failed", "backend", status.StoreBackend, "error", err)
		return
	}

	status.Store = 1
	logger.Debug("Store health check passed", "backend", status.StoreBackend)
}

func checkCache(ctx context.Context, cache Cache, status *HealthStatus, logger *log.Logger) {
	if cache == nil {
		logger.Debug("Cache not configured, cache health check skipped")
		return
	}

	if err := cache.Ping(ctx); err != nil {
		logger.Error("Cache health check failed", "error", err)
		return
	}

	status.Cache = 1
	logger.Debug("Cache health check passed")
}
