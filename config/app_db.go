package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/heijo-app/waitlist/internal/log"
	"github.com/heijo-app/waitlist/pkg/retry"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type DBConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	SSLMode         string // Default: "require" for prod safety
	ConnectAttempts int
}

func defaultDBConfig() *DBConfig {
	return &DBConfig{
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: time.Minute,
		SSLMode:         "require",
		ConnectAttempts: 5,
	}
}

// OpenStoreDatabase returns nil for the csv backend, which needs no database.
func OpenStoreDatabase(logger *log.Logger, store *StoreConfig, cfg *DBConfig) (*gorm.DB, error) {
	switch store.Backend {
	case StoreBackendPostgres:
		return NewDatabase(logger, cfg)
	case StoreBackendSQLite:
		return NewSQLiteDatabase(logger, store.SQLitePath)
	case StoreBackendCSV:
		logger.Info("Using flat-file store; no database connection opened", "path", store.CSVPath)
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported STORE_BACKEND %q", store.Backend)
	}
}

func NewDatabase(logger *log.Logger, cfg *DBConfig) (*gorm.DB, error) {
	if cfg == nil {
		cfg = defaultDBConfig()
	}

	appDatabaseURL := sanitizeEnv(GetValueFromEnvironmentVariable("APP_DATABASE_URL", ""))

	dsn, err := buildDSNFromEnv(appDatabaseURL, logger, cfg)
	if err != nil {
		return nil, err
	}

	var gdb *gorm.DB
	connect := func() error {
		var openErr error
		gdb, openErr = openAndPing(postgres.Open(dsn), cfg)
		if openErr != nil {
			logger.Warn("Database connection attempt failed", "error", openErr)
		}
		return openErr
	}

	attempts := cfg.ConnectAttempts
	if attempts <= 0 {
		attempts = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	policy := retry.NewExponentialBackoff(&retry.Config{
		MaxAttempts: attempts,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
		Multiplier:  2,
	})
	if err := policy.Execute(ctx, connect); err != nil {
		logger.Error("Failed to connect to database", "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("Database connection established successfully")
	return gdb, nil
}

// NewSQLiteDatabase backs local development and single-node deployments.
func NewSQLiteDatabase(logger *log.Logger, path string) (*gorm.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}

	gdb, err := openAndPing(sqlite.Open(path), &DBConfig{MaxIdleConns: 1, MaxOpenConns: 1})
	if err != nil {
		logger.Error("Failed to open SQLite database", "path", path, "error", err)
		return nil, fmt.Errorf("failed to open sqlite database %q: %w", path, err)
	}

	logger.Info("SQLite database opened", "path", path)
	return gdb, nil
}

func openAndPing(dialector gorm.Dialector, cfg *DBConfig) (*gorm.DB, error) {
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return gdb, nil
}

func buildDSNFromEnv(appDatabaseURL string, logger *log.Logger, cfg *DBConfig) (string, error) {
	if strings.TrimSpace(appDatabaseURL) != "" {
		logger.Info("Using APP_DATABASE_URL for database connection")
		return appDatabaseURL, nil
	}

	params := getDatabaseEnvParams()
	if missing := params.missing(); len(missing) > 0 {
		logger.Error("Missing required database environment variables", "missing_vars", strings.Join(missing, ", "))
		return "", fmt.Errorf("missing required database env vars: %s", strings.Join(missing, ", "))
	}

	port, err := strconv.Atoi(params.port)
	if err != nil {
		logger.Error("Invalid POSTGRES_PORT", "error", err)
		return "", fmt.Errorf("invalid POSTGRES_PORT %q: %w", params.port, err)
	}

	ssl := params.ssl
	if ssl == "" {
		ssl = cfg.SSLMode
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		params.host, port, params.user, params.pass, params.dbName, ssl,
	)

	logger.Info("Connecting to database",
		"host", params.host,
		"port", port,
		"user", params.user,
		"dbname", params.dbName,
		"sslmode", ssl,
	)
	return dsn, nil
}

type databaseEnvParams struct {
	host, port, user, pass, dbName, ssl string
}

func (p databaseEnvParams) missing() []string {
	var missing []string

	if p.host == "" {
		missing = append(missing, "POSTGRES_HOST")
	}
	if p.port == "" {
		missing = append(missing, "POSTGRES_PORT")
	}
	if p.user == "" {
		missing = append(missing, "POSTGRES_USER")
	}
	if p.dbName == "" {
		missing = append(missing, "POSTGRES_DB_NAME")
	}

	return missing
}

func getDatabaseEnvParams() databaseEnvParams {
	return databaseEnvParams{
		host:   sanitizeEnv(GetValueFromEnvironmentVariable("POSTGRES_HOST", "")),
		port:   sanitizeEnv(GetValueFromEnvironmentVariable("POSTGRES_PORT", "")),
		user:   sanitizeEnv(GetValueFromEnvironmentVariable("POSTGRES_USER", "")),
		pass:   sanitizeEnv(GetValueFromEnvironmentVariable("POSTGRES_PASSWORD", "")),
		dbName: sanitizeEnv(GetValueFromEnvironmentVariable("POSTGRES_DB_NAME", "")),
		ssl:    sanitizeEnv(GetValueFromEnvironmentVariable("POSTGRES_SSLMODE", "")),
	}
}

func sanitizeEnv(v string) string {
	s := strings.TrimSpace(v)

	if len(s) >= 2 && ((s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'')) {
		s = s[1 : len(s)-1]
	}

	return s
}

func AutoMigrate(logger *log.Logger, db *gorm.DB, models ...interface{}) error {
	if db == nil {
		logger.Error("Cannot migrate: db is empty")
		return fmt.Errorf("cannot migrate: db is empty")
	}

	if err := db.AutoMigrate(models...); err != nil {
		logger.Error("Database migration failed", "error", err)
		return fmt.Errorf("auto-migrate failed: %w", err)
	}

	logger.Info("Database migration completed successfully")

	return nil
}

func CloseDatabase(db *gorm.DB, logger *log.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Failed to get SQL DB instance", "error", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		logger.Error("Failed to close database", "error", err)
	} else {
		logger.Info("Database closed successfully")
	}
}
