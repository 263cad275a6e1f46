package demo

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the demo application's settings.
type Config struct {
	LogLevel      string
	LogFormat     string
	CountStart    int
	CountEnd      int
	CountInterval time.Duration
	// HTTPAddr is the status server address; empty disables the server.
	HTTPAddr string
}

// LoadConfig reads envFile into the environment and builds a Config from
// it. With an empty envFile a .env in the working directory is loaded if
// present. Variables already set in the environment take precedence.
func LoadConfig(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else {
		// Non-fatal: .env is optional
		_ = godotenv.Load()
	}

	var errs []error
	cfg := &Config{
		LogLevel:      env("LOG_LEVEL", "info"),
		LogFormat:     env("LOG_FORMAT", "text"),
		CountStart:    envInt("COUNT_START", 1, &errs),
		CountEnd:      envInt("COUNT_END", 50, &errs),
		CountInterval: envDuration("COUNT_INTERVAL", 100*time.Millisecond, &errs),
		HTTPAddr:      env("HTTP_ADDR", ""),
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	var errs []error
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json; got %q", c.LogFormat))
	}
	if c.CountEnd < c.CountStart {
		errs = append(errs, fmt.Errorf("COUNT_END (%d) is before COUNT_START (%d)", c.CountEnd, c.CountStart))
	}
	if c.CountInterval < 0 {
		errs = append(errs, fmt.Errorf("COUNT_INTERVAL must not be negative; got %s", c.CountInterval))
	}
	return errors.Join(errs...)
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return i
}

func envDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}
