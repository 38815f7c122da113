package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/heijo-app/waitlist/pkg/constants"
	"github.com/heijo-app/waitlist/pkg/utils"
)

const (
	StoreBackendPostgres = "postgres"
	StoreBackendSQLite   = "sqlite"
	StoreBackendCSV      = "csv"
)

// StoreConfig selects where waitlist entries are persisted.
type StoreConfig struct {
	Backend    string
	SQLitePath string
	CSVPath    string
}

func NewStoreConfig() *StoreConfig {
	return &StoreConfig{
		Backend:    strings.ToLower(utils.GetEnvTrimmedOrDefault("STORE_BACKEND", StoreBackendPostgres)),
		SQLitePath: utils.GetEnvTrimmedOrDefault("SQLITE_PATH", constants.DefaultSQLitePath),
		CSVPath:    utils.GetEnvTrimmedOrDefault("WAITLIST_CSV_PATH", constants.DefaultCSVPath),
	}
}

func (sc *StoreConfig) UsesDatabase() bool {
	return sc.Backend == StoreBackendPostgres || sc.Backend == StoreBackendSQLite
}

// Problems lists every configuration issue for the selected backend.
func (sc *StoreConfig) Problems() []string {
	switch sc.Backend {
	case StoreBackendPostgres:
		if sanitizeEnv(GetValueFromEnvironmentVariable("APP_DATABASE_URL", "")) != "" {
			return nil
		}
		var problems []string
		for _, name := range getDatabaseEnvParams().missing() {
			problems = append(problems, "missing "+name+" (or set APP_DATABASE_URL)")
		}
		return problems
	case StoreBackendSQLite:
		return nil
	case StoreBackendCSV:
		dir := filepath.Dir(sc.CSVPath)
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return []string{fmt.Sprintf("WAITLIST_CSV_PATH directory %q does not exist", dir)}
		}
		return nil
	default:
		return []string{fmt.Sprintf("STORE_BACKEND must be one of %s, %s, %s; got %q",
			StoreBackendPostgres, StoreBackendSQLite, StoreBackendCSV, sc.Backend)}
	}
}
