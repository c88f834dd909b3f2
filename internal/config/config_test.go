package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ServerPort == "" {
		t.Fatalf("expected default server port")
	}
	if cfg.PostgresURL == "" {
		t.Fatalf("expected default postgres url")
	}
	if cfg.SweepStaleness <= 0 {
		t.Fatalf("expected default sweep staleness")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9000")
	t.Setenv("POSTGRES_URL", "postgres://example")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SWEEP_STALENESS", "2h")
	t.Setenv("FACTS_CACHE_TTL", "1m")

	cfg := Load()
	if cfg.ServerPort != ":9000" {
		t.Fatalf("expected override port")
	}
	if cfg.PostgresURL != "postgres://example" {
		t.Fatalf("expected override postgres")
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("expected override redis")
	}
	if cfg.SweepStaleness != 2*time.Hour {
		t.Fatalf("expected override staleness, got %v", cfg.SweepStaleness)
	}
	if cfg.FactsCacheTTL != time.Minute {
		t.Fatalf("expected override facts ttl, got %v", cfg.FactsCacheTTL)
	}
}
