package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/heijo-app/waitlist/internal/log"
	"github.com/heijo-app/waitlist/pkg/circuitbreaker"
	apperrors "github.com/heijo-app/waitlist/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSent     = "sent"
	OutcomeFailed   = "failed"
	OutcomeRejected = "circuit_open"
	OutcomeDropped  = "dropped"
)

type DispatcherConfig struct {
	Timeout time.Duration
	Breaker circuitbreaker.CircuitBreaker
	// Registerer is optional; nil keeps the counters unregistered.
	Registerer prometheus.Registerer
}

// Dispatcher sends notifications in the background. Callers never wait on the
// provider; each send gets its own bounded deadline.
type Dispatcher struct {
	sender  Sender
	logger  *log.Logger
	timeout time.Duration
	breaker circuitbreaker.CircuitBreaker
	sent    *prometheus.CounterVec

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(sender Sender, logger *log.Logger, cfg DispatcherConfig) *Dispatcher {
	if sender == nil {
		sender = NoopSender{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Breaker == nil {
		cfg.Breaker = circuitbreaker.NewCircuitBreaker(nil)
	}

	sent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "waitlist_notifications_total",
		Help: "Thank-you notifications by provider and outcome.",
	}, []string{"provider", "outcome"})
	if cfg.Registerer != nil {
		cfg.Registerer.MustRegister(sent)
	}

	return &Dispatcher{
		sender:  sender,
		logger:  logger,
		timeout: cfg.Timeout,
		breaker: cfg.Breaker,
		sent:    sent,
	}
}

func (d *Dispatcher) Provider() string {
	return d.sender.Name()
}

// Dispatch returns immediately. The request context only contributes values
// (correlation id, logger); its cancellation does not abort the send.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) {
	logger := log.GetLoggerInstanceFromContext(ctx, d.logger)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.record(OutcomeDropped)
		logger.Warn("Notification dropped, dispatcher is shutting down", "recipient", log.RedactEmail(msg.To))
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	detached := context.WithoutCancel(ctx)

	go func() {
		defer d.wg.Done()
		_ = d.send(detached, logger, msg)
	}()
}

func (d *Dispatcher) send(ctx context.Context, logger *log.Logger, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	err := d.breaker.Call(func() (err error) {
		// This runs off the request goroutine, outside gin's recovery.
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("notify: %s sender panicked: %v", d.sender.Name(), r)
			}
		}()
		return d.sender.Send(ctx, msg)
	})

	switch {
	case err == nil:
		d.record(OutcomeSent)
		logger.Info("Notification sent",
			"provider", d.sender.Name(),
			"recipient", log.RedactEmail(msg.To),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	case errors.Is(err, circuitbreaker.ErrCircuitOpen):
		d.record(OutcomeRejected)
		logger.Warn("Notification skipped, provider circuit open", "provider", d.sender.Name())
	default:
		err = apperrors.NewNotificationError("thank-you email not delivered", err)
		d.record(OutcomeFailed)
		logger.Error("Notification failed",
			"provider", d.sender.Name(),
			"recipient", log.RedactEmail(msg.To),
			"error", err,
		)
	}

	return err
}

func (d *Dispatcher) record(outcome string) {
	d.sent.WithLabelValues(d.sender.Name(), outcome).Inc()
}

// Close stops accepting work and waits for in-flight sends or ctx expiry.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
