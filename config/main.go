package config

import (
	"context"
	"time"

	"github.com/heijo-app/waitlist/config/router"
	"github.com/heijo-app/waitlist/internal/log"
	"github.com/heijo-app/waitlist/internal/models"
	"github.com/heijo-app/waitlist/pkg/constants"
	"github.com/heijo-app/waitlist/pkg/notify"
	"github.com/heijo-app/waitlist/pkg/utils"
	"gorm.io/gorm"
)

type ApplicationConfig struct {
	DB              *gorm.DB
	RouterService   *router.RouterService
	Logger          *log.Logger
	Cache           Cache
	Config          *AppConfig
	Store           *StoreConfig
	Notifier        *notify.Dispatcher
	Site            *SiteConfig
	StartedAt       time.Time
	TracingShutdown func(context.Context) error
}

type AppConfig struct {
	RateLimitRequests   int
	RateLimitWindow     time.Duration
	SubmissionRateLimit int
	RequestTimeout      time.Duration
	CORSAllowedOrigin   string
}

// SiteConfig holds the copy rendered on the landing page and passed to email templates.
type SiteConfig struct {
	Name       string
	Tagline    string
	Invitation string
}

func NewAppConfig() *AppConfig {
	return &AppConfig{
		RateLimitRequests:   utils.GetEnvIntOrDefault("RATE_LIMIT_REQUESTS", constants.DefaultRateLimitRequests),
		RateLimitWindow:     utils.GetEnvDurationOrDefault("RATE_LIMIT_WINDOW", constants.DefaultRateLimitWindow()),
		SubmissionRateLimit: utils.GetEnvIntOrDefault("RATE_LIMIT_SUBMISSIONS", constants.SubmissionRequestsPerMinute),
		RequestTimeout:      utils.GetEnvDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		CORSAllowedOrigin:   utils.GetEnvTrimmedOrDefault("CORS_ALLOWED_ORIGIN", "*"),
	}
}

func NewSiteConfig() *SiteConfig {
	return &SiteConfig{
		Name:       utils.GetEnvTrimmedOrDefault("SITE_NAME", "Heijō"),
		Tagline:    utils.GetEnvTrimmedOrDefault("SITE_TAGLINE", "Micro-moments. Macro-clarity."),
		Invitation: utils.GetEnvTrimmedOrDefault("SITE_INVITATION", "Come breathe with me. Join the waitlist."),
	}
}

// Cleanup runs after the HTTP server has stopped, releasing resources in reverse
// dependency order. Tracing goes last so spans from draining notifications are exported.
func (ac *ApplicationConfig) Cleanup() {
	if ac.Notifier != nil {
		CloseDispatcher(ac.Notifier, ac.Logger, 10*time.Second)
	}

	if ac.RouterService != nil {
		ac.RouterService.Cleanup()
	}

	CloseCache(ac.Cache, ac.Logger)

	CloseDatabase(ac.DB, ac.Logger)

	if ac.TracingShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ac.TracingShutdown(ctx); err != nil {
			ac.Logger.Error("Failed to shutdown tracer provider", "error", err)
		}
	}

	ac.Logger.Info("Application cleanup completed")
}

func LoadApplicationConfiguration(logger *log.Logger, autoMigrate bool) (*ApplicationConfig, error) {
	InitializeEnvFile(logger)

	if autoMigrate {
		appEnv := GetAppEnv()
		if err := ValidateAutoMigrateAllowed(appEnv); err != nil {
			return nil, err
		}
		if appEnv == "" {
			logger.Warn("APP_ENV not set; allowing --auto-migrate as development")
		}
	}

	storeConfig := NewStoreConfig()
	notifyConfig := NewNotifyConfig()

	if err := ValidateStartup(storeConfig, notifyConfig); err != nil {
		logger.Error("Startup configuration rejected", "error", err)
		return nil, err
	}

	ac := &ApplicationConfig{
		Logger:    logger,
		Config:    NewAppConfig(),
		Store:     storeConfig,
		Site:      NewSiteConfig(),
		StartedAt: time.Now(),
	}

	tracingShutdown, err := SetupTracing(logger)
	if err != nil {
		return nil, err
	}
	ac.TracingShutdown = tracingShutdown

	db, err := OpenStoreDatabase(logger, storeConfig, defaultDBConfig())
	if err != nil {
		ac.Cleanup()
		return nil, err
	}
	ac.DB = db

	if autoMigrate && db != nil {
		if err := AutoMigrate(logger, db, models.ModelRegistry...); err != nil {
			ac.Cleanup()
			return nil, err
		}
	}

	ac.Cache = NewCacheConfig().NewCacheOrNil(logger)

	registry := router.NewMetricsRegistry()

	ac.Notifier, err = NewNotificationDispatcher(logger, notifyConfig, registry)
	if err != nil {
		ac.Cleanup()
		return nil, err
	}

	ac.RouterService = router.CreateRouterService(logger, ac.Cache, &router.RouterConfig{
		RateLimitRequests: ac.Config.RateLimitRequests,
		RateLimitWindow:   ac.Config.RateLimitWindow,
		RequestTimeout:    ac.Config.RequestTimeout,
		CORSAllowedOrigin: ac.Config.CORSAllowedOrigin,
		Registry:          registry,
	})

	logger.Info("Application configuration loaded",
		"store", storeConfig.Backend,
		"notifier", ac.Notifier.Provider(),
		"cache", ac.Cache != nil,
	)

	return ac, nil
}
