package config

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/heijo-app/waitlist/internal/log"
	"github.com/heijo-app/waitlist/pkg/circuitbreaker"
	"github.com/heijo-app/waitlist/pkg/constants"
	"github.com/heijo-app/waitlist/pkg/notify"
	"github.com/heijo-app/waitlist/pkg/utils"
	"github.com/prometheus/client_golang/prometheus"
)

type NotifyConfig struct {
	Provider string
	Timeout  time.Duration
	EmailJS  notify.EmailJSConfig
	SES      notify.SESConfig
}

func NewNotifyConfig() *NotifyConfig {
	return &NotifyConfig{
		Provider: strings.ToLower(utils.GetEnvTrimmedOrDefault("NOTIFY_PROVIDER", notify.ProviderNone)),
		Timeout:  utils.GetEnvDurationOrDefault("NOTIFY_TIMEOUT", constants.DefaultNotifyTimeout),
		EmailJS: notify.EmailJSConfig{
			Endpoint:   utils.GetEnvTrimmedOrDefault("EMAILJS_ENDPOINT", constants.DefaultEmailJSEndpoint),
			ServiceID:  utils.GetEnvTrimmed("EMAILJS_SERVICE_ID"),
			TemplateID: utils.GetEnvTrimmed("EMAILJS_TEMPLATE_ID"),
			PublicKey:  utils.GetEnvTrimmed("EMAILJS_PUBLIC_KEY"),
			PrivateKey: utils.GetEnvTrimmed("EMAILJS_PRIVATE_KEY"),
		},
		SES: notify.SESConfig{
			Region: utils.GetEnvTrimmedOrDefault("SES_REGION",
				utils.GetEnvTrimmedOrDefault("AWS_REGION", constants.DefaultSESRegion)),
			FromAddress:     utils.GetEnvTrimmed("SES_FROM_ADDRESS"),
			FromName:        utils.GetEnvTrimmed("SES_FROM_NAME"),
			Subject:         utils.GetEnvTrimmed("SES_SUBJECT"),
			AccessKeyID:     utils.GetEnvTrimmed("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: utils.GetEnvTrimmed("AWS_SECRET_ACCESS_KEY"),
		},
	}
}

func (nc *NotifyConfig) Problems() []string {
	var missing []string

	switch nc.Provider {
	case "", notify.ProviderNone:
		return nil
	case notify.ProviderEmailJS:
		missing = nc.EmailJS.Missing()
	case notify.ProviderSES:
		missing = nc.SES.Missing()
	default:
		return []string{fmt.Sprintf("NOTIFY_PROVIDER must be one of %s, %s, %s; got %q",
			notify.ProviderNone, notify.ProviderEmailJS, notify.ProviderSES, nc.Provider)}
	}

	problems := make([]string, 0, len(missing))
	for _, name := range missing {
		problems = append(problems, fmt.Sprintf("missing %s (required by NOTIFY_PROVIDER=%s)", name, nc.Provider))
	}
	return problems
}

func (nc *NotifyConfig) NewSender(ctx context.Context) (notify.Sender, error) {
	switch nc.Provider {
	case "", notify.ProviderNone:
		return notify.NoopSender{}, nil
	case notify.ProviderEmailJS:
		return notify.NewEmailJSSender(nc.EmailJS, &http.Client{Timeout: nc.Timeout})
	case notify.ProviderSES:
		return notify.NewSESSender(ctx, nc.SES)
	default:
		return nil, fmt.Errorf("unsupported NOTIFY_PROVIDER %q", nc.Provider)
	}
}

// NewNotificationDispatcher wires the configured sender behind a circuit breaker.
func NewNotificationDispatcher(logger *log.Logger, nc *NotifyConfig, reg prometheus.Registerer) (*notify.Dispatcher, error) {
	sender, err := nc.NewSender(context.Background())
	if err != nil {
		logger.Error("Failed to create notification sender", "provider", nc.Provider, "error", err)
		return nil, err
	}

	dispatcher := notify.NewDispatcher(sender, logger, notify.DispatcherConfig{
		Timeout:    nc.Timeout,
		Breaker:    circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig()),
		Registerer: reg,
	})

	logger.Info("Notification dispatcher ready", "provider", sender.Name(), "timeout", nc.Timeout)
	return dispatcher, nil
}

func CloseDispatcher(dispatcher *notify.Dispatcher, logger *log.Logger, timeout time.Duration) {
	if dispatcher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := dispatcher.Close(ctx); err != nil {
		logger.Warn("Notification dispatcher did not drain before deadline", "error", err)
		return
	}
	logger.Info("Notification dispatcher drained")
}
