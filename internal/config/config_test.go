package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("REMINDER_POLL_INTERVAL", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.ReminderPollInterval != 60*time.Second {
		t.Fatalf("expected default poll interval, got %s", cfg.ReminderPollInterval)
	}
	if cfg.ReminderBatchSize != 50 {
		t.Fatalf("expected default batch size, got %d", cfg.ReminderBatchSize)
	}
	if !cfg.UseMockAgents {
		t.Fatalf("expected mock agents enabled by default")
	}
	if cfg.EmailProvider != "mock" {
		t.Fatalf("expected mock email provider by default, got %s", cfg.EmailProvider)
	}
	if cfg.AccessTokenTTL != 24*time.Hour {
		t.Fatalf("expected 24h token ttl, got %s", cfg.AccessTokenTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("USE_MOCK_AGENTS", "false")
	t.Setenv("EMAIL_PROVIDER", "SES")
	t.Setenv("REMINDER_POLL_INTERVAL", "30s")
	t.Setenv("REMINDER_BATCH_SIZE", "25")
	t.Setenv("APPOINTMENTS_TABLE", "appointments_staging")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.UseMockAgents {
		t.Fatalf("expected mock agents disabled")
	}
	if cfg.EmailProvider != "ses" {
		t.Fatalf("expected normalized email provider, got %s", cfg.EmailProvider)
	}
	if cfg.ReminderPollInterval != 30*time.Second {
		t.Fatalf("expected poll interval override, got %s", cfg.ReminderPollInterval)
	}
	if cfg.ReminderBatchSize != 25 {
		t.Fatalf("expected batch size override, got %d", cfg.ReminderBatchSize)
	}
	if cfg.AppointmentsTable != "appointments_staging" {
		t.Fatalf("expected table override, got %s", cfg.AppointmentsTable)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://admin.example.com" {
		t.Fatalf("expected parsed origins, got %v", cfg.CORSAllowedOrigins)
	}
}
