package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env to be production, got %q", cfg.App.Env)
	}

	if cfg.Store.Driver != StoreDriverFile {
		t.Fatalf("expected default file store driver, got %q", cfg.Store.Driver)
	}

	if cfg.Assistant.MaxRequests != 50 {
		t.Fatalf("expected default request budget of 50, got %d", cfg.Assistant.MaxRequests)
	}
	if cfg.Assistant.RetryThreshold != 3 {
		t.Fatalf("expected default retry threshold of 3, got %d", cfg.Assistant.RetryThreshold)
	}
	if cfg.Assistant.HistoryWindow != 4 {
		t.Fatalf("expected default history window of 4, got %d", cfg.Assistant.HistoryWindow)
	}

	if cfg.Notifications.Retention != 100 {
		t.Fatalf("expected default retention of 100, got %d", cfg.Notifications.Retention)
	}

	if cfg.AI.Timeout != 30*time.Second {
		t.Fatalf("expected AI timeout 30s, got %v", cfg.AI.Timeout)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RejectsUnknownStoreDriver(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvStoreDriver, "dynamo")

	if _, err := Load(); err == nil {
		t.Fatal("expected unsupported store driver to return an error")
	}
}

func TestStoreConfig_IsRedis(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvStoreDriver, "redis")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if !cfg.Store.IsRedis() {
		t.Fatal("expected redis driver to be selected")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvPort, "8081")
}
