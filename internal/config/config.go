package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const envPrefix = "WARNMODE_"

// Config holds process settings read from the environment.
type Config struct {
	BaseURL   string        `validate:"omitempty,url"`
	Path      string        `validate:"required"`
	Timeout   time.Duration `validate:"gt=0"`
	LogLevel  string        `validate:"oneof=trace debug info warn error fatal panic disabled"`
	Listen    string        `validate:"required"`
	DBPath    string        `validate:"required"`
	Retention time.Duration `validate:"gt=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads the given .env files (".env" when none are named; a missing
// file is ignored), then the WARNMODE_* variables, and validates the result.
// Variables already set in the environment win over .env entries.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	timeout, err := durationEnv("TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	retention, err := durationEnv("RETENTION", "168h")
	if err != nil {
		return nil, err
	}
	c := &Config{
		BaseURL:   getEnv("BASE_URL", ""),
		Path:      getEnv("PATH", "**.php"),
		Timeout:   timeout,
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		Listen:    getEnv("LISTEN", ":8080"),
		DBPath:    getEnv("DB", "warnmode.db"),
		Retention: retention,
	}
	if err := validate.Struct(c); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

// RequireBaseURL reports an error unless a usable base URL is configured.
func (c *Config) RequireBaseURL() error {
	if err := validate.Var(c.BaseURL, "required,url"); err != nil {
		return fmt.Errorf("%sBASE_URL must be set to a URL: %w", envPrefix, err)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(envPrefix + key); v != "" {
		return v
	}
	return def
}

func durationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s%s %q: %w", envPrefix, key, raw, err)
	}
	return d, nil
}
