package waitlist

import (
	"context"
	"time"

	"github.com/heijo-app/waitlist/internal/log"
	"github.com/heijo-app/waitlist/internal/models"
	apperrors "github.com/heijo-app/waitlist/pkg/errors"
	"github.com/heijo-app/waitlist/pkg/notify"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=service.go -destination=service_mock_test.go -package=waitlist

const tracerName = "github.com/heijo-app/waitlist/domain/waitlist"

const (
	outcomeAccepted = "accepted"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
)

type WaitlistService interface {
	// CreateEntry validates and stores a signup, then schedules the thank-you email.
	CreateEntry(ctx context.Context, req *CreateWaitlistEntryRequest) (*WaitlistEntryResponse, error)

	// ImportEntry stores a replayed entry with its original timestamp. No email is sent.
	ImportEntry(ctx context.Context, email string, submittedAt time.Time) error

	// ListEntries returns every stored entry, oldest first.
	ListEntries(ctx context.Context) ([]WaitlistEntryResponse, error)
}

// Notifier is satisfied by *notify.Dispatcher. Dispatch must not block.
type Notifier interface {
	Dispatch(ctx context.Context, msg notify.Message)
}

type ServiceConfig struct {
	SiteName   string
	Notifier   Notifier
	Registerer prometheus.Registerer
}

type waitlistService struct {
	logger      *log.Logger
	repository  WaitlistRepository
	notifier    Notifier
	siteName    string
	backend     string
	submissions *prometheus.CounterVec
}

func NewWaitlistService(logger *log.Logger, repository WaitlistRepository, cfg ServiceConfig) WaitlistService {
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "waitlist_submissions_total",
		Help: "Waitlist submissions by outcome.",
	}, []string{"backend", "outcome"})
	if cfg.Registerer != nil {
		cfg.Registerer.MustRegister(submissions)
	}

	return &waitlistService{
		logger:      logger,
		repository:  repository,
		notifier:    cfg.Notifier,
		siteName:    cfg.SiteName,
		backend:     repository.Backend(),
		submissions: submissions,
	}
}

func (s *waitlistService) CreateEntry(ctx context.Context, req *CreateWaitlistEntryRequest) (*WaitlistEntryResponse, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "waitlist.CreateEntry")
	defer span.End()

	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil {
		logger.Error("CreateEntry received empty request")
		return nil, apperrors.NewInvalidRequestError(MessageInvalidRequestBody, nil)
	}

	if err := ValidateEmail(req.Email); err != nil {
		s.record(outcomeRejected)
		logger.Warn("Rejected waitlist submission", "reason", err.Error())
		return nil, apperrors.NewInvalidRequestError(messageForValidationError(err), err)
	}

	span.SetAttributes(
		attribute.String("waitlist.backend", s.backend),
		attribute.String("waitlist.email_domain", domainOf(req.Email)),
	)

	entry, err := s.repository.CreateEntry(ctx, ToWaitlistEntryModel(req))
	if err != nil {
		s.record(outcomeFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "store write failed")
		logger.Error("Failed to store waitlist entry", "email", log.RedactEmail(req.Email), "error", err)
		return nil, err
	}

	s.record(outcomeAccepted)
	logger.Info("Waitlist entry stored", "email", log.RedactEmail(entry.Email), "backend", s.backend)

	s.notify(ctx, entry)

	response := ToWaitlistEntryResponse(entry)
	return &response, nil
}

func (s *waitlistService) notify(ctx context.Context, entry *models.WaitlistEntry) {
	if s.notifier == nil {
		return
	}

	s.notifier.Dispatch(ctx, notify.Message{
		To: entry.Email,
		TemplateParams: map[string]string{
			"email":     entry.Email,
			"site_name": s.siteName,
		},
	})
}

func (s *waitlistService) ImportEntry(ctx context.Context, email string, submittedAt time.Time) error {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if err := ValidateEmail(email); err != nil {
		return apperrors.NewInvalidRequestError(messageForValidationError(err), err)
	}

	if _, err := s.repository.CreateEntry(ctx, &models.WaitlistEntry{Email: email, SubmittedAt: submittedAt}); err != nil {
		logger.Error("Failed to import waitlist entry", "email", log.RedactEmail(email), "error", err)
		return err
	}

	return nil
}

func (s *waitlistService) ListEntries(ctx context.Context) ([]WaitlistEntryResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	entries, err := s.repository.ListEntries(ctx)
	if err != nil {
		logger.Error("Failed to list waitlist entries", "error", err)
		return nil, err
	}

	responses := make([]WaitlistEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, ToWaitlistEntryResponse(entry))
	}

	return responses, nil
}

func (s *waitlistService) record(outcome string) {
	s.submissions.WithLabelValues(s.backend, outcome).Inc()
}
