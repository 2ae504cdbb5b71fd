package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Backend.BaseURL != "http://localhost:8000" {
		t.Errorf("expected default base URL, got %q", cfg.Backend.BaseURL)
	}
	if cfg.Cache.ServiceTTL != 5*time.Second {
		t.Errorf("expected default service TTL 5s, got %v", cfg.Cache.ServiceTTL)
	}
	if cfg.Workflow.OutcomeRevert != 5*time.Second {
		t.Errorf("expected default outcome revert 5s, got %v", cfg.Workflow.OutcomeRevert)
	}
	if cfg.Gateway.Port != 8090 {
		t.Errorf("expected default gateway port 8090, got %d", cfg.Gateway.Port)
	}
	if cfg.Gateway.GinMode != "release" {
		t.Errorf("expected default gin mode release, got %q", cfg.Gateway.GinMode)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
backend:
  base_url: "http://appliance.local:8000"
  request_timeout: 3s
cache:
  service_ttl: 2s
gateway:
  port: 9999
misc:
  log_level: debug
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Backend.BaseURL != "http://appliance.local:8000" {
		t.Errorf("expected file base URL, got %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.RequestTimeout != 3*time.Second {
		t.Errorf("expected request timeout 3s, got %v", cfg.Backend.RequestTimeout)
	}
	if cfg.Cache.ServiceTTL != 2*time.Second {
		t.Errorf("expected service TTL 2s, got %v", cfg.Cache.ServiceTTL)
	}
	if cfg.Gateway.Port != 9999 {
		t.Errorf("expected gateway port 9999, got %d", cfg.Gateway.Port)
	}
	if cfg.Misc.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %q", cfg.Misc.LogLevel)
	}
	// untouched sections keep defaults
	if cfg.Cache.SystemTTL != 30*time.Second {
		t.Errorf("expected default system TTL, got %v", cfg.Cache.SystemTTL)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("TRACKCTL_BACKEND_BASE_URL", "http://override.local:8000")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Backend.BaseURL != "http://override.local:8000" {
		t.Errorf("expected env override to win, got %q", cfg.Backend.BaseURL)
	}
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	content := `
backend:
  base_url: "not-a-url"
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadConfig(dir); err == nil {
		t.Error("expected validation error for invalid base URL")
	}
}

func TestStartWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("misc:\n  log_level: info\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 1)
	err := StartWatcher(ctx, dir, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	if err != nil {
		t.Fatalf("start watcher: %v", err)
	}

	if err := os.WriteFile(path, []byte("misc:\n  log_level: debug\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Misc.LogLevel != "debug" {
			t.Errorf("expected reloaded log level debug, got %q", cfg.Misc.LogLevel)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload callback")
	}
}

func TestStartWatcher_RequiresCallback(t *testing.T) {
	if err := StartWatcher(context.Background(), t.TempDir(), nil); err == nil {
		t.Error("expected error for nil callback")
	}
}
