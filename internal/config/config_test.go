package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8001 {
		t.Fatalf("unexpected port %d", cfg.Port)
	}
	if cfg.FetchTimeout != 30*time.Second {
		t.Fatalf("unexpected fetch timeout %v", cfg.FetchTimeout)
	}
	if !cfg.CacheEnabled || cfg.CacheType != "file" {
		t.Fatalf("unexpected cache settings enabled=%v type=%q", cfg.CacheEnabled, cfg.CacheType)
	}
	if cfg.UserAgent == "" {
		t.Fatalf("expected default user agent")
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("CACHE_TYPE", " BBolt ")
	t.Setenv("FETCH_TIMEOUT_SECONDS", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9100 || !cfg.DevMode {
		t.Fatalf("env not applied: port=%d dev=%v", cfg.Port, cfg.DevMode)
	}
	if cfg.CacheType != "bbolt" {
		t.Fatalf("cache type not normalized: %q", cfg.CacheType)
	}
	if cfg.FetchTimeout != 5*time.Second {
		t.Fatalf("unexpected fetch timeout %v", cfg.FetchTimeout)
	}
}

func TestLoadRejectsInvalidTimeout(t *testing.T) {
	t.Setenv("ANALYSIS_TIMEOUT_SECONDS", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero analysis timeout")
	}
}

func TestOriginsSplitsAndTrims(t *testing.T) {
	cfg := &Config{AllowedOrigins: "http://a.test, ,http://b.test "}
	got := cfg.Origins()
	if len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Fatalf("unexpected origins %v", got)
	}
}
