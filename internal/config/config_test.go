// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"testing"
	"time"
)

const (
	testSessionSecret  = "test-secret-key-32-bytes-long!!!"
	testIdentitySecret = "test-identity-key-32-bytes-long!"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func setRequired(t *testing.T) {
	t.Helper()
	os.Clearenv()
	setEnv(t, "KOINONIA_SESSION_SECRET", testSessionSecret)
	setEnv(t, "KOINONIA_IDENTITY_SECRET", testIdentitySecret)
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "./data/koinonia.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/koinonia.db")
	}
	if cfg.ServerHost != "localhost" {
		t.Errorf("ServerHost = %q, want %q", cfg.ServerHost, "localhost")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want %q", cfg.Env, "development")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %v, want 24h", cfg.SessionTTL)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.RequestTimeout)
	}
	if cfg.SubmitBurst != 5 {
		t.Errorf("SubmitBurst = %d, want 5", cfg.SubmitBurst)
	}
	if cfg.EventRetentionDays != 90 {
		t.Errorf("EventRetentionDays = %d, want 90", cfg.EventRetentionDays)
	}
	if cfg.ScanSchedule != "@daily" {
		t.Errorf("ScanSchedule = %q, want %q", cfg.ScanSchedule, "@daily")
	}
	if cfg.MetricsAddr != "127.0.0.1:9091" {
		t.Errorf("MetricsAddr = %q, want %q", cfg.MetricsAddr, "127.0.0.1:9091")
	}
	if len(cfg.AdminEmails) != 0 {
		t.Errorf("AdminEmails = %v, want empty", cfg.AdminEmails)
	}
	if cfg.UseRedisCache() {
		t.Error("UseRedisCache() = true without KOINONIA_REDIS_URL")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequired(t)
	setEnv(t, "KOINONIA_DB_PATH", "/custom/path.db")
	setEnv(t, "KOINONIA_SERVER_HOST", "0.0.0.0")
	setEnv(t, "KOINONIA_SERVER_PORT", "3000")
	setEnv(t, "KOINONIA_ENV", "production")
	setEnv(t, "KOINONIA_LOG_LEVEL", "debug")
	setEnv(t, "KOINONIA_ADMIN_EMAILS", " Pastor@Example.com, ,elder@example.com")
	setEnv(t, "KOINONIA_REDIS_URL", "redis://localhost:6379/0")
	setEnv(t, "KOINONIA_CACHE_TTL", "120")
	setEnv(t, "KOINONIA_SESSION_TTL", "2h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "/custom/path.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "/custom/path.db")
	}
	if cfg.ServerAddr() != "0.0.0.0:3000" {
		t.Errorf("ServerAddr() = %q, want %q", cfg.ServerAddr(), "0.0.0.0:3000")
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true for production")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	want := []string{"pastor@example.com", "elder@example.com"}
	if len(cfg.AdminEmails) != len(want) {
		t.Fatalf("AdminEmails = %v, want %v", cfg.AdminEmails, want)
	}
	for i := range want {
		if cfg.AdminEmails[i] != want[i] {
			t.Errorf("AdminEmails[%d] = %q, want %q", i, cfg.AdminEmails[i], want[i])
		}
	}
	if !cfg.UseRedisCache() {
		t.Error("UseRedisCache() = false with KOINONIA_REDIS_URL set")
	}
	if cfg.CacheTTLDuration() != 2*time.Minute {
		t.Errorf("CacheTTLDuration() = %v, want 2m", cfg.CacheTTLDuration())
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("SessionTTL = %v, want 2h", cfg.SessionTTL)
	}
}

func TestLoad_RequiredSecrets(t *testing.T) {
	os.Clearenv()
	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail when no secrets are set")
	}

	os.Clearenv()
	setEnv(t, "KOINONIA_SESSION_SECRET", testSessionSecret)
	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail when KOINONIA_IDENTITY_SECRET is not set")
	}
}

func TestLoad_SecretTooShort(t *testing.T) {
	tests := []struct {
		name   string
		secret string
	}{
		{"empty", ""},
		{"short", "short"},
		{"31_bytes", "1234567890123456789012345678901"}, // 31 bytes
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			setEnv(t, "KOINONIA_SESSION_SECRET", tt.secret)

			if _, err := Load(); err == nil {
				t.Fatalf("Load() should fail with %d-byte session secret", len(tt.secret))
			}

			setRequired(t)
			setEnv(t, "KOINONIA_IDENTITY_SECRET", tt.secret)

			if _, err := Load(); err == nil {
				t.Fatalf("Load() should fail with %d-byte identity secret", len(tt.secret))
			}
		})
	}
}

func TestLoad_KnownWeakSecret(t *testing.T) {
	setRequired(t)
	setEnv(t, "KOINONIA_SESSION_SECRET", knownWeakSecrets[0])

	if _, err := Load(); err == nil {
		t.Fatal("Load() should reject a known default secret")
	}
}

func TestLoad_SameSecrets(t *testing.T) {
	setRequired(t)
	setEnv(t, "KOINONIA_IDENTITY_SECRET", testSessionSecret)

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail when both secrets are equal")
	}
}

func TestLoad_InvalidRateLimit(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero rate", "KOINONIA_SUBMIT_RATE", "0"},
		{"zero burst", "KOINONIA_SUBMIT_BURST", "0"},
		{"zero retention", "KOINONIA_EVENT_RETENTION_DAYS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			setEnv(t, tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load() should fail with %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	tests := []struct {
		secret string
		want   bool
	}{
		{"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", false},
		{"abcdefghABCDEFGH", false},
		{"abcABC123", true},
		{"abc123!!!", true},
	}

	for _, tt := range tests {
		if got := hasMinimumEntropy(tt.secret); got != tt.want {
			t.Errorf("hasMinimumEntropy(%q) = %v, want %v", tt.secret, got, tt.want)
		}
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"development", true},
		{"production", false},
		{"staging", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := Config{Env: tt.env}
			if got := cfg.IsDevelopment(); got != tt.want {
				t.Errorf("IsDevelopment() = %v, want %v", got, tt.want)
			}
		})
	}
}
