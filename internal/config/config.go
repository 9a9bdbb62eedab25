// Package config loads seriesd configuration from command-line flags,
// environment variables and an optional .env file.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Store     StoreConfig
	Server    ServerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string `env:"ENV" envDefault:"development"`
	// DataDir holds the database and the token key.
	DataDir string `env:"DATA_DIR"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT"` // json or pretty; empty picks by environment
}

// StoreConfig selects the storage backend.
type StoreConfig struct {
	Driver string `env:"STORE_DRIVER" envDefault:"sqlite"`
	// Path defaults to {data dir}/series.db for sqlite and {data dir}/badger for badger.
	Path string `env:"STORE_PATH"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        `env:"SERVER_PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	CORSOrigins  []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
}

// AuthConfig holds token configuration.
type AuthConfig struct {
	// AccessTokenKey is filled in by auth.LoadOrGenerateKey at startup.
	AccessTokenKey      []byte        `env:"-"`
	AccessTokenDuration time.Duration `env:"ACCESS_TOKEN_DURATION" envDefault:"24h"`
}

// RateLimitConfig bounds write requests per client.
type RateLimitConfig struct {
	Enabled  bool    `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	WriteRPS float64 `env:"RATE_LIMIT_WRITE_RPS" envDefault:"5"`
	Burst    int     `env:"RATE_LIMIT_BURST" envDefault:"20"`
}

// Load builds the configuration with precedence:
// 1. Command-line flags in args (highest priority).
// 2. Environment variables.
// 3. The .env file named by -env-file.
// 4. Default values.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("seriesd", flag.ContinueOnError)

	envName := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	logFormat := fs.String("log-format", "", "Log format (json, pretty)")
	dataDir := fs.String("data-dir", "", "Directory for the database and keys")
	driver := fs.String("store", "", "Store driver (sqlite, badger)")
	storePath := fs.String("store-path", "", "Path of the database")
	port := fs.String("port", "", "Server port (default: 8080)")
	tokenDuration := fs.String("access-token-duration", "", "Access token lifetime (e.g. 24h)")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// A missing .env file is fine.
	if err := loadEnvFile(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", *envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	override(&cfg.App.Environment, *envName)
	override(&cfg.Logger.Level, *logLevel)
	override(&cfg.Logger.Format, *logFormat)
	override(&cfg.App.DataDir, *dataDir)
	override(&cfg.Store.Driver, *driver)
	override(&cfg.Store.Path, *storePath)
	override(&cfg.Server.Port, *port)
	if *tokenDuration != "" {
		d, err := time.ParseDuration(*tokenDuration)
		if err != nil {
			return nil, fmt.Errorf("invalid access token duration %q: %w", *tokenDuration, err)
		}
		cfg.Auth.AccessTokenDuration = d
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that all config values are present and valid.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Logger.Format {
	case "", "json", "pretty":
	default:
		return fmt.Errorf("invalid log format: %s (must be json or pretty)", c.Logger.Format)
	}

	switch c.Store.Driver {
	case DriverSQLite, DriverBadger:
	default:
		return fmt.Errorf("invalid store driver: %s (must be sqlite or badger)", c.Store.Driver)
	}

	if c.Store.Path == "" {
		return errors.New("store path cannot be empty after expansion")
	}
	if c.Auth.AccessTokenDuration <= 0 {
		return errors.New("access token duration must be positive")
	}
	if c.RateLimit.Enabled && (c.RateLimit.WriteRPS <= 0 || c.RateLimit.Burst <= 0) {
		return errors.New("rate limit rps and burst must be positive")
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

func (c *Config) expandPaths() error {
	if c.App.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		c.App.DataDir = filepath.Join(home, ".seriesd")
	}
	dir, err := expandPath(c.App.DataDir)
	if err != nil {
		return fmt.Errorf("invalid data dir: %w", err)
	}
	c.App.DataDir = dir

	if c.Store.Path == "" {
		name := "series.db"
		if c.Store.Driver == DriverBadger {
			name = "badger"
		}
		c.Store.Path = filepath.Join(c.App.DataDir, name)
		return nil
	}
	p, err := expandPath(c.Store.Path)
	if err != nil {
		return fmt.Errorf("invalid store path: %w", err)
	}
	c.Store.Path = p
	return nil
}

// expandPath expands ~ and makes the path absolute.
func expandPath(path string) (string, error) {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, rest)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return abs, nil
}

func override(dst *string, flagValue string) {
	if flagValue != "" {
		*dst = flagValue
	}
}

// loadEnvFile loads KEY=value lines into the environment without replacing
// variables that are already set.
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- operator-supplied path
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("failed to set env var %s: %w", key, err)
		}
	}
	return scanner.Err()
}
