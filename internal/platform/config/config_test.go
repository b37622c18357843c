package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr :8080, got %s", cfg.Addr)
	}
	if cfg.OperatorName != "payroll-admin" {
		t.Fatalf("expected default operator payroll-admin, got %s", cfg.OperatorName)
	}
	if cfg.TokenTTL != time.Hour {
		t.Fatalf("expected default token TTL 1h, got %s", cfg.TokenTTL)
	}
	if !cfg.RunMigrations {
		t.Fatalf("expected migrations enabled by default")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_ADDR", ":9000")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "10")

	cfg := Load()
	if cfg.Addr != ":9000" {
		t.Fatalf("expected addr :9000, got %s", cfg.Addr)
	}
	if cfg.TokenTTL != 30*time.Minute {
		t.Fatalf("expected TTL 30m, got %s", cfg.TokenTTL)
	}
	if cfg.MetricsEnabled {
		t.Fatalf("expected metrics disabled")
	}
	if cfg.RateLimitPerMinute != 10 {
		t.Fatalf("expected rate limit 10, got %d", cfg.RateLimitPerMinute)
	}
}

func TestLoadIgnoresMalformedEnv(t *testing.T) {
	t.Setenv("TOKEN_TTL", "soon")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "lots")

	cfg := Load()
	if cfg.TokenTTL != time.Hour {
		t.Fatalf("expected fallback TTL 1h, got %s", cfg.TokenTTL)
	}
	if cfg.RateLimitPerMinute != 60 {
		t.Fatalf("expected fallback rate limit 60, got %d", cfg.RateLimitPerMinute)
	}
}

func TestValidate(t *testing.T) {
	base := Load()
	if err := base.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	production := base
	production.Environment = "production"
	if err := production.Validate(); err == nil {
		t.Fatalf("production without JWT secret must fail validation")
	}
	production.JWTSecret = "secret"
	production.OperatorPassHash = "$2a$10$hash"
	if err := production.Validate(); err != nil {
		t.Fatalf("production with credentials should validate: %v", err)
	}

	tiny := base
	tiny.MaxBodyBytes = 10
	if err := tiny.Validate(); err == nil {
		t.Fatalf("tiny body limit must fail validation")
	}

	noTTL := base
	noTTL.TokenTTL = 0
	if err := noTTL.Validate(); err == nil {
		t.Fatalf("zero token TTL must fail validation")
	}
}
