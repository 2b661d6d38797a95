// Package config loads runtime settings from the environment.
//
// Values come from ROLLCALL_* environment variables, optionally seeded from
// a .env file. Command-line flags override whatever Load returns.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	FormatText = "text"
	FormatJSON = "json"
)

// Config holds application configuration.
type Config struct {
	Driver          string
	DBPath          string
	DatabaseURL     string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Driver:          DriverSQLite,
		DBPath:          "./rollcall.db",
		HTTPAddr:        ":8080",
		LogLevel:        "info",
		LogFormat:       FormatText,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load reads configuration from environment variables.
//
// If envFile is non-empty it must exist and is loaded first. Otherwise a
// ./.env file is loaded when present. Variables already set in the process
// environment always win over file values.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load env file: %w", err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	def := Default()
	cfg := Config{
		Driver:      strings.ToLower(getenv("ROLLCALL_DB_DRIVER", def.Driver)),
		DBPath:      getenv("ROLLCALL_DB_PATH", def.DBPath),
		DatabaseURL: strings.TrimSpace(getenv("ROLLCALL_DATABASE_URL", "")),
		HTTPAddr:    getenv("ROLLCALL_HTTP_ADDR", def.HTTPAddr),
		LogLevel:    strings.ToLower(getenv("ROLLCALL_LOG_LEVEL", def.LogLevel)),
		LogFormat:   strings.ToLower(getenv("ROLLCALL_LOG_FORMAT", def.LogFormat)),
	}

	timeout, err := getenvDuration("ROLLCALL_SHUTDOWN_TIMEOUT", def.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.ShutdownTimeout = timeout

	return cfg, nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	switch c.Driver {
	case DriverSQLite:
		if c.DBPath == "" {
			errs = append(errs, errors.New("db path is required for the sqlite driver"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("database url is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown db driver %q (want sqlite or postgres)", c.Driver))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != FormatText && c.LogFormat != FormatJSON {
		errs = append(errs, fmt.Errorf("unknown log format %q (want text or json)", c.LogFormat))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown timeout must be positive"))
	}
	return errors.Join(errs...)
}

// ParseLevel maps debug|info|warn|error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", s)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
