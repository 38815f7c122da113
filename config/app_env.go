package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/heijo-app/waitlist/internal/log"
	"github.com/heijo-app/waitlist/pkg/utils"
	"github.com/joho/godotenv"
)

const AppEnvKey = "APP_ENV"

// autoMigrateEnvs are the APP_ENV values under which the server may create the
// emails table itself; everywhere else `cli migrate` owns the schema.
var autoMigrateEnvs = []string{"", "dev", "development", "local", "test", "testing"}

// InitializeEnvFile loads ENV_FILE (default .env) without overriding variables
// already set in the process environment.
func InitializeEnvFile(logger *log.Logger) {
	if utils.GetEnvBoolOrDefault("SKIP_DOTENV", false) {
		logger.Info("Skipping env file load (SKIP_DOTENV=true)")
		return
	}

	path := utils.GetEnvTrimmedOrDefault("ENV_FILE", ".env")
	if err := godotenv.Load(path); err != nil {
		logger.Warn("Env file not loaded", "path", path, "error", err.Error())
		return
	}

	logger.Info("Environment variables loaded", "path", path)
}

func GetValueFromEnvironmentVariable(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultValue
}

func GetAppEnv() string {
	return strings.ToLower(strings.TrimSpace(os.Getenv(AppEnvKey)))
}

func ValidateAutoMigrateAllowed(appEnv string) error {
	env := strings.ToLower(strings.TrimSpace(appEnv))

	for _, allowed := range autoMigrateEnvs {
		if env == allowed {
			return nil
		}
	}

	return fmt.Errorf("--auto-migrate is not allowed when %s=%q; run `cli migrate` instead", AppEnvKey, env)
}
