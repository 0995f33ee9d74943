// Package config loads the console's runtime configuration from the
// environment, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full runtime configuration
type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	DatabasePath    string        `env:"DATABASE_PATH" envDefault:"admin_console.db"`
	UseHTTPS        bool          `env:"USE_HTTPS" envDefault:"false"`
	SessionLifetime time.Duration `env:"SESSION_LIFETIME" envDefault:"1h"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ReasonMinLength int           `env:"REASON_MIN_LENGTH" envDefault:"10"`
	TraceStdout     bool          `env:"TRACE_STDOUT" envDefault:"false"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTIssuer string        `env:"JWT_ISSUER" envDefault:"admin-console"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	OIDC OIDCConfig `envPrefix:"OIDC_"`
}

// OIDCConfig configures interactive login. An empty domain disables it.
type OIDCConfig struct {
	Domain       string `env:"DOMAIN"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	CallbackURL  string `env:"CALLBACK_URL"`
	RoleClaim    string `env:"ROLE_CLAIM" envDefault:"role"`
}

// Enabled reports whether OIDC login is configured
func (c OIDCConfig) Enabled() bool {
	return c.Domain != ""
}

// Load reads an optional .env file and parses the environment
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load the env vars: %w", err)
	}
	return Parse()
}

// Parse parses the environment without touching .env files
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ReasonMinLength < 1 {
		return fmt.Errorf("REASON_MIN_LENGTH must be at least 1, got %d", c.ReasonMinLength)
	}
	if c.OIDC.Enabled() && (c.OIDC.ClientID == "" || c.OIDC.CallbackURL == "") {
		return errors.New("OIDC_CLIENT_ID and OIDC_CALLBACK_URL are required when OIDC_DOMAIN is set")
	}
	return nil
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
