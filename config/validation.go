package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks that every field the server cannot run without is set.
// The Gemini key is deliberately excluded: the recommendation endpoint
// answers 500 per-request when it is missing.
func Validate(cfg *Config) error {
	var errors []string

	required := []struct {
		name  string
		value string
	}{
		{"SERVER_PORT", cfg.ServerPort},
		{"DB_HOST", cfg.DBHost},
		{"DB_PORT", cfg.DBPort},
		{"DB_USER", cfg.DBUser},
		{"DB_NAME", cfg.DBName},
	}
	for _, field := range required {
		if field.value == "" {
			errors = append(errors, fmt.Sprintf("required environment variable %s is not set", field.name))
		}
	}

	if cfg.RedisURL == "" && (cfg.RedisHost == "" || cfg.RedisPort == "") {
		errors = append(errors, "either REDIS_URL or REDIS_HOST and REDIS_PORT must be set")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "\n"))
	}

	return nil
}
