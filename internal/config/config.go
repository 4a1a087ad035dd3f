// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"KOINONIA_DB_PATH" envDefault:"./data/koinonia.db"`
	SessionSecret string `env:"KOINONIA_SESSION_SECRET,required"`
	ServerHost    string `env:"KOINONIA_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"KOINONIA_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"KOINONIA_ENV" envDefault:"development"`
	LogLevel      string `env:"KOINONIA_LOG_LEVEL" envDefault:"info"`

	// Identity provider
	IdentitySecret string        `env:"KOINONIA_IDENTITY_SECRET,required"` // HS256 key shared with the sign-in provider
	IdentityIssuer string        `env:"KOINONIA_IDENTITY_ISSUER"`          // Optional expected iss claim
	SessionTTL     time.Duration `env:"KOINONIA_SESSION_TTL" envDefault:"24h"`

	// Comma separated addresses promoted to admin at startup
	AdminEmails []string `env:"KOINONIA_ADMIN_EMAILS" envSeparator:","`

	// Cache configuration
	RedisURL    string `env:"KOINONIA_REDIS_URL"`                           // Optional Redis URL for distributed caching
	CachePrefix string `env:"KOINONIA_CACHE_PREFIX" envDefault:"koinonia:"` // Redis key prefix
	CacheTTL    int    `env:"KOINONIA_CACHE_TTL" envDefault:"60"`           // Listing cache TTL in seconds

	// Public submission rate limit, per client IP
	SubmitRate  float64 `env:"KOINONIA_SUBMIT_RATE" envDefault:"0.2"` // tokens per second
	SubmitBurst int     `env:"KOINONIA_SUBMIT_BURST" envDefault:"5"`

	RequestTimeout time.Duration `env:"KOINONIA_REQUEST_TIMEOUT" envDefault:"30s"`

	// Prometheus exposition listens apart from the API; empty disables it
	MetricsAddr string `env:"KOINONIA_METRICS_ADDR" envDefault:"127.0.0.1:9091"`

	// Housekeeping
	EventRetentionDays int    `env:"KOINONIA_EVENT_RETENTION_DAYS" envDefault:"90"`
	ScanSchedule       string `env:"KOINONIA_SCAN_SCHEDULE" envDefault:"@daily"`
	PurgeSchedule      string `env:"KOINONIA_PURGE_SCHEDULE" envDefault:"@daily"`

	// Comma separated origins allowed to make cookie authenticated writes
	TrustedOrigins []string `env:"KOINONIA_TRUSTED_ORIGINS" envSeparator:","`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// CacheTTLDuration returns CacheTTL as a duration.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// MinSecretLength is the minimum required length for the session and
// identity secrets.
const MinSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := validateSecret("KOINONIA_SESSION_SECRET", cfg.SessionSecret); err != nil {
		return nil, err
	}
	if err := validateSecret("KOINONIA_IDENTITY_SECRET", cfg.IdentitySecret); err != nil {
		return nil, err
	}
	if cfg.SessionSecret == cfg.IdentitySecret {
		return nil, fmt.Errorf("KOINONIA_IDENTITY_SECRET must differ from KOINONIA_SESSION_SECRET")
	}

	if cfg.SubmitRate <= 0 || cfg.SubmitBurst < 1 {
		return nil, fmt.Errorf("KOINONIA_SUBMIT_RATE must be positive and KOINONIA_SUBMIT_BURST at least 1")
	}
	if cfg.EventRetentionDays < 1 {
		return nil, fmt.Errorf("KOINONIA_EVENT_RETENTION_DAYS must be at least 1, got %d", cfg.EventRetentionDays)
	}

	cfg.AdminEmails = cleanList(cfg.AdminEmails, true)
	cfg.TrustedOrigins = cleanList(cfg.TrustedOrigins, false)

	return cfg, nil
}

func validateSecret(name, secret string) error {
	if len(secret) < MinSecretLength {
		return fmt.Errorf("%s must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			name, MinSecretLength, len(secret))
	}

	for _, weak := range knownWeakSecrets {
		if secret == weak {
			return fmt.Errorf("%s is a known default value and must not be used; "+
				"generate a secure secret with: openssl rand -base64 32", name)
		}
	}

	if !hasMinimumEntropy(secret) {
		slog.Warn(name + " has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}
	return nil
}

func cleanList(in []string, lower bool) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if lower {
			s = strings.ToLower(s)
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
