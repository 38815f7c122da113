package config

import (
	"strings"
)

// StartupError carries every configuration problem found, so operators fix them in one pass.
type StartupError struct {
	Problems []string
}

func (e *StartupError) Error() string {
	return "invalid startup configuration: " + strings.Join(e.Problems, "; ")
}

func ValidateStartup(store *StoreConfig, notifier *NotifyConfig) error {
	var problems []string

	problems = append(problems, store.Problems()...)
	problems = append(problems, notifier.Problems()...)

	if len(problems) > 0 {
		return &StartupError{Problems: problems}
	}
	return nil
}
