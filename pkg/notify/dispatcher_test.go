package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/heijo-app/waitlist/internal/log"
	"github.com/heijo-app/waitlist/pkg/circuitbreaker"
	apperrors "github.com/heijo-app/waitlist/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestDispatcher(t *testing.T, cfg DispatcherConfig) (*MockSender, *Dispatcher) {
	t.Helper()

	ctrl := gomock.NewController(t)
	sender := NewMockSender(ctrl)
	sender.EXPECT().Name().Return("fake").AnyTimes()

	if cfg.Registerer == nil {
		cfg.Registerer = prometheus.NewRegistry()
	}

	return sender, NewDispatcher(sender, log.NewDiscardLogger(), cfg)
}

func drain(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))
}

func outcomes(d *Dispatcher, outcome string) float64 {
	return testutil.ToFloat64(d.sent.WithLabelValues("fake", outcome))
}

func TestDispatcher_SendsInBackground(t *testing.T) {
	sender, d := newTestDispatcher(t, DispatcherConfig{Timeout: time.Second})

	msg := Message{To: "user@example.com", TemplateParams: map[string]string{"site_name": "Heijo"}}
	sender.EXPECT().Send(gomock.Any(), msg).Return(nil)

	d.Dispatch(context.Background(), msg)
	drain(t, d)

	assert.Equal(t, float64(1), outcomes(d, OutcomeSent))
	assert.Equal(t, "fake", d.Provider())
}

func TestDispatcher_FailureIsSwallowed(t *testing.T) {
	sender, d := newTestDispatcher(t, DispatcherConfig{Timeout: time.Second})
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("provider 502"))

	d.Dispatch(context.Background(), Message{To: "user@example.com"})
	drain(t, d)

	assert.Equal(t, float64(1), outcomes(d, OutcomeFailed))
}

func TestDispatcher_SenderPanicIsContained(t *testing.T) {
	sender, d := newTestDispatcher(t, DispatcherConfig{Timeout: time.Second})
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, Message) error {
		panic("provider client bug")
	}).Times(2)

	d.Dispatch(context.Background(), Message{To: "user@example.com"})
	drain(t, d)
	assert.Equal(t, float64(1), outcomes(d, OutcomeFailed))

	err := d.send(context.Background(), d.logger, Message{To: "user@example.com"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeNotificationError, apperrors.GetErrorType(err))
	assert.Contains(t, err.Error(), "provider client bug")
}

func TestDispatcher_BoundsSlowProviders(t *testing.T) {
	sender, d := newTestDispatcher(t, DispatcherConfig{Timeout: 20 * time.Millisecond})

	var sendErr error
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, _ Message) error {
		<-ctx.Done()
		sendErr = ctx.Err()
		return sendErr
	})

	d.Dispatch(context.Background(), Message{To: "user@example.com"})
	drain(t, d)

	assert.ErrorIs(t, sendErr, context.DeadlineExceeded)
	assert.Equal(t, float64(1), outcomes(d, OutcomeFailed))
}

func TestDispatcher_DetachedFromRequestCancellation(t *testing.T) {
	sender, d := newTestDispatcher(t, DispatcherConfig{Timeout: time.Second})

	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), log.CorrelatedIDKey, "req-1"))

	sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, _ Message) error {
		assert.NoError(t, ctx.Err(), "request cancellation must not reach the provider call")
		assert.Equal(t, "req-1", ctx.Value(log.CorrelatedIDKey))
		return nil
	})

	d.Dispatch(ctx, Message{To: "user@example.com"})
	cancel()
	drain(t, d)

	assert.Equal(t, float64(1), outcomes(d, OutcomeSent))
}

func TestDispatcher_CircuitOpensOnRepeatedFailure(t *testing.T) {
	breaker := circuitbreaker.NewCircuitBreaker(&circuitbreaker.Config{
		FailureThreshold: 1,
		RecoveryTimeout:  time.Hour,
		SuccessThreshold: 1,
	})
	sender, d := newTestDispatcher(t, DispatcherConfig{Timeout: time.Second, Breaker: breaker})

	sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("down")).Times(1)

	err := d.send(context.Background(), d.logger, Message{To: "a@example.com"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeNotificationError, apperrors.GetErrorType(err))

	err = d.send(context.Background(), d.logger, Message{To: "b@example.com"})

	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	assert.Equal(t, float64(1), outcomes(d, OutcomeFailed))
	assert.Equal(t, float64(1), outcomes(d, OutcomeRejected))
}

func TestDispatcher_DropsAfterClose(t *testing.T) {
	_, d := newTestDispatcher(t, DispatcherConfig{})
	drain(t, d)

	d.Dispatch(context.Background(), Message{To: "late@example.com"})

	assert.Equal(t, float64(1), outcomes(d, OutcomeDropped))
}

func TestDispatcher_CloseHonoursDeadline(t *testing.T) {
	sender, d := newTestDispatcher(t, DispatcherConfig{Timeout: time.Second})

	release := make(chan struct{})
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, Message) error {
		<-release
		return nil
	})

	d.Dispatch(context.Background(), Message{To: "user@example.com"})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)

	close(release)
	drain(t, d)
}

func TestNoopSender(t *testing.T) {
	assert.NoError(t, NoopSender{}.Send(context.Background(), Message{To: "user@example.com"}))
	assert.ErrorIs(t, NoopSender{}.Send(context.Background(), Message{}), ErrNoRecipient)
	assert.Equal(t, ProviderNone, NoopSender{}.Name())
}
