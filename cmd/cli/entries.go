package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/heijo-app/waitlist/config"
	"github.com/heijo-app/waitlist/domain/waitlist"
	"github.com/heijo-app/waitlist/internal/log"
	"github.com/heijo-app/waitlist/internal/models"
	apperrors "github.com/heijo-app/waitlist/pkg/errors"
)

type importResult struct {
	Imported int
	Skipped  int
}

// openWaitlistService builds a service over STORE_BACKEND with no notifier,
// so imports never send email.
func openWaitlistService(logger *log.Logger) (waitlist.WaitlistService, func(), error) {
	store := config.NewStoreConfig()
	if problems := store.Problems(); len(problems) > 0 {
		return nil, nil, &config.StartupError{Problems: problems}
	}

	db, err := config.OpenStoreDatabase(logger, store, nil)
	if err != nil {
		return nil, nil, err
	}

	repository, err := waitlist.NewRepositoryForStore(store, db)
	if err != nil {
		config.CloseDatabase(db, logger)
		return nil, nil, err
	}

	cleanup := func() { config.CloseDatabase(db, logger) }
	return waitlist.NewWaitlistService(logger, repository, waitlist.ServiceConfig{}), cleanup, nil
}

func exportEntries(ctx context.Context, service waitlist.WaitlistService, w io.Writer) (int, error) {
	entries, err := service.ListEntries(ctx)
	if err != nil {
		return 0, err
	}

	for _, entry := range entries {
		if _, err := io.WriteString(w, waitlist.FormatCSVLine(entry.Email, entry.SubmittedAt)); err != nil {
			return 0, fmt.Errorf("write export: %w", err)
		}
	}

	return len(entries), nil
}

// importEntries stops on the first store failure; malformed lines and invalid
// addresses are logged and skipped.
func importEntries(ctx context.Context, service waitlist.WaitlistService, r io.Reader, logger *log.Logger) (importResult, error) {
	var result importResult

	err := waitlist.ScanCSVEntries(ctx, r, func(line int, entry *models.WaitlistEntry, err error) error {
		if err != nil {
			result.Skipped++
			logger.Warn("Skipping malformed line", "line", line, "error", err.Error())
			return nil
		}

		if err := service.ImportEntry(ctx, entry.Email, entry.SubmittedAt.UTC().Truncate(time.Second)); err != nil {
			if apperrors.GetErrorType(err) == apperrors.ErrorTypeInvalidRequest {
				result.Skipped++
				logger.Warn("Skipping invalid entry", "line", line, "email", log.RedactEmail(entry.Email))
				return nil
			}
			return fmt.Errorf("line %d: %w", line, err)
		}

		result.Imported++
		return nil
	})

	return result, err
}
