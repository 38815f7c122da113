package waitlist

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/heijo-app/waitlist/config"
	"github.com/heijo-app/waitlist/internal/models"
	apperrors "github.com/heijo-app/waitlist/pkg/errors"
	"gorm.io/gorm"
)

//go:generate mockgen -source=repository.go -destination=repository_mock_test.go -package=waitlist

type WaitlistRepository interface {
	// CreateEntry appends one entry. Duplicate emails are stored as separate entries.
	CreateEntry(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error)
	// ListEntries returns every stored entry, oldest first.
	ListEntries(ctx context.Context) ([]*models.WaitlistEntry, error)
	// Ping reports whether the store can currently accept writes.
	Ping(ctx context.Context) error
	// Backend names the store, e.g. "postgres" or "csv".
	Backend() string
}

// NewRepositoryForStore picks the backend selected by STORE_BACKEND.
func NewRepositoryForStore(store *config.StoreConfig, db *gorm.DB) (WaitlistRepository, error) {
	switch store.Backend {
	case config.StoreBackendPostgres, config.StoreBackendSQLite:
		if db == nil {
			return nil, fmt.Errorf("store backend %q requires a database connection", store.Backend)
		}
		return NewWaitlistRepository(db), nil
	case config.StoreBackendCSV:
		return NewCSVRepository(store.CSVPath), nil
	default:
		return nil, fmt.Errorf("unsupported store backend %q", store.Backend)
	}
}

type waitlistRepository struct {
	db *gorm.DB
}

func NewWaitlistRepository(db *gorm.DB) WaitlistRepository {
	return &waitlistRepository{db: db}
}

func (wr *waitlistRepository) CreateEntry(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
	if err := wr.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, apperrors.NewDatabaseError(MessageSaveFailed, err)
	}

	return entry, nil
}

func (wr *waitlistRepository) ListEntries(ctx context.Context) ([]*models.WaitlistEntry, error) {
	var entries []*models.WaitlistEntry

	if err := wr.db.WithContext(ctx).Order("created_at asc, id asc").Find(&entries).Error; err != nil {
		return nil, apperrors.NewDatabaseError("unable to fetch waitlist entries", err)
	}

	return entries, nil
}

func (wr *waitlistRepository) Ping(ctx context.Context) error {
	sqlDB, err := wr.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (wr *waitlistRepository) Backend() string {
	return wr.db.Dialector.Name()
}

// csvRepository appends "<email>","<RFC3339 timestamp>" lines to a flat file.
// There is no size bound and no rotation.
type csvRepository struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

func NewCSVRepository(path string) WaitlistRepository {
	return &csvRepository{path: path, now: time.Now}
}

func (cr *csvRepository) CreateEntry(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewDatabaseError(MessageSaveFailed, err)
	}

	if entry.SubmittedAt.IsZero() {
		entry.SubmittedAt = cr.now().UTC()
	}

	line := FormatCSVLine(entry.Email, entry.SubmittedAt.UTC().Format(time.RFC3339))

	cr.mu.Lock()
	defer cr.mu.Unlock()

	f, err := os.OpenFile(cr.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, apperrors.NewDatabaseError(MessageSaveFailed, err)
	}

	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return nil, apperrors.NewDatabaseError(MessageSaveFailed, err)
	}

	if err := f.Close(); err != nil {
		return nil, apperrors.NewDatabaseError(MessageSaveFailed, err)
	}

	return entry, nil
}

func (cr *csvRepository) ListEntries(ctx context.Context) ([]*models.WaitlistEntry, error) {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	f, err := os.Open(cr.path)
	if errors.Is(err, os.ErrNotExist) {
		return []*models.WaitlistEntry{}, nil
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("unable to read waitlist file", err)
	}
	defer f.Close()

	return ReadCSVEntries(ctx, f)
}

func (cr *csvRepository) Ping(_ context.Context) error {
	dir := filepath.Dir(cr.path)
	info, err := os.Stat(dir)
	if err != nil {
		return apperrors.NewUnavailableError("waitlist directory unavailable", err)
	}
	if !info.IsDir() {
		return apperrors.NewUnavailableError("waitlist directory unavailable", fmt.Errorf("%s is not a directory", dir))
	}
	return nil
}

func (cr *csvRepository) Backend() string {
	return config.StoreBackendCSV
}

// FormatCSVLine renders one record of the flat-file format, newline included.
func FormatCSVLine(email, submittedAt string) string {
	return quoteCSVField(email) + "," + quoteCSVField(submittedAt) + "\n"
}

// quoteCSVField always quotes; encoding/csv only quotes when it has to.
func quoteCSVField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// ReadCSVEntries parses the flat-file log format and fails on the first bad line.
func ReadCSVEntries(ctx context.Context, r io.Reader) ([]*models.WaitlistEntry, error) {
	entries := []*models.WaitlistEntry{}

	err := ScanCSVEntries(ctx, r, func(line int, entry *models.WaitlistEntry, err error) error {
		if err != nil {
			return err
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// ScanCSVEntries calls fn once per record. Per-line problems are passed to fn
// rather than aborting, so callers can skip them; a non-nil return from fn stops the scan.
func ScanCSVEntries(ctx context.Context, r io.Reader, fn func(line int, entry *models.WaitlistEntry, err error) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}

		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			if err := fn(parseErr.StartLine, nil, apperrors.NewInvalidRequestError(fmt.Sprintf("malformed record on line %d", parseErr.StartLine), err)); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}

		line, _ := reader.FieldPos(0)

		switch {
		case len(record) != 2:
			err = fn(line, nil, apperrors.NewInvalidRequestError(fmt.Sprintf("expected 2 fields on line %d, got %d", line, len(record)), nil))
		default:
			submittedAt, parseTimeErr := time.Parse(time.RFC3339, record[1])
			if parseTimeErr != nil {
				err = fn(line, nil, apperrors.NewInvalidRequestError(fmt.Sprintf("invalid timestamp on line %d", line), parseTimeErr))
			} else {
				err = fn(line, &models.WaitlistEntry{Email: record[0], SubmittedAt: submittedAt}, nil)
			}
		}

		if err != nil {
			return err
		}
	}
}
