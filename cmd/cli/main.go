package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/heijo-app/waitlist/config"
	"github.com/heijo-app/waitlist/internal/log"
	"github.com/heijo-app/waitlist/pkg/constants"
	"github.com/heijo-app/waitlist/pkg/migrations"
	"github.com/heijo-app/waitlist/pkg/utils"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

func main() {
	logger := log.NewLoggerWithJSONOutput()

	config.InitializeEnvFile(logger) // Load envs early for CLI consistency

	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "migrate":
		if err := runMigrate(logger); err != nil {
			logger.Error("Database migration failed", "error", err.Error())
			os.Exit(1)
		}
		return

	case "export-csv":
		dest := ""
		if len(args) > 1 {
			dest = args[1]
		}
		if err := runExport(logger, dest); err != nil {
			logger.Error("Export failed", "error", err.Error())
			os.Exit(1)
		}
		return

	case "import-csv":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "import-csv requires a file path")
			printUsage()
			os.Exit(1)
		}
		if err := runImport(logger, args[1]); err != nil {
			logger.Error("Import failed", "error", err.Error())
			os.Exit(1)
		}
		return

	case "help", "-h", "--help":
		printUsage()
		return

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func runMigrate(logger *log.Logger) error {
	store := config.NewStoreConfig()
	if !store.UsesDatabase() {
		logger.Info("Store backend has no schema; nothing to migrate", "backend", store.Backend)
		return nil
	}

	db, err := config.OpenStoreDatabase(logger, store, nil)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer config.CloseDatabase(db, logger)

	driver, err := migrations.DriverForDialect(db.Dialector.Name())
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	err = migrations.Up(ctx, sqlDB, migrations.Config{
		Dir:             utils.GetEnvTrimmedOrDefault("MIGRATIONS_DIR", constants.DefaultMigrationsDir),
		Driver:          driver,
		MigrationsTable: constants.DefaultMigrationsTable,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	logger.Info("Database migrations completed", "driver", driver)
	return nil
}

func runExport(logger *log.Logger, dest string) error {
	service, cleanup, err := openWaitlistService(logger)
	if err != nil {
		return err
	}
	defer cleanup()

	out := os.Stdout
	if dest != "" {
		f, err := os.Create(dest)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	n, err := exportEntries(context.Background(), service, out)
	if err != nil {
		return err
	}

	if dest != "" {
		printer.Printf("Exported %d entries to %s\n", n, dest)
	}
	return nil
}

func runImport(logger *log.Logger, path string) error {
	service, cleanup, err := openWaitlistService(logger)
	if err != nil {
		return err
	}
	defer cleanup()

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := importEntries(context.Background(), service, f, logger)
	if err != nil {
		return err
	}

	printer.Printf("Imported %d entries, skipped %d\n", result.Imported, result.Skipped)
	return nil
}

func printUsage() {
	fmt.Println("Usage: cli <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  migrate              Run database migrations for STORE_BACKEND and exit")
	fmt.Println("  export-csv [path]    Write every entry as \"email\",\"timestamp\" lines (stdout by default)")
	fmt.Println("  import-csv <path>    Load entries from a flat-file log, skipping bad lines")
}
