package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv(envAPITimeout, "")
	t.Setenv(envConcurrency, "")

	cfg, err := New("/tmp/todosync-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APITimeout != DefaultAPITimeout {
		t.Errorf("expected timeout %v, got %v", DefaultAPITimeout, cfg.APITimeout)
	}
	if cfg.Concurrency != DefaultConcurrency {
		t.Errorf("expected concurrency %d, got %d", DefaultConcurrency, cfg.Concurrency)
	}
	if cfg.SessionPath() != filepath.Join("/tmp/todosync-test", SessionDir) {
		t.Errorf("unexpected session path %q", cfg.SessionPath())
	}
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv(envAPITimeout, "250ms")
	t.Setenv(envConcurrency, "3")

	cfg, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APITimeout != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %v", cfg.APITimeout)
	}
	if cfg.Concurrency != 3 {
		t.Errorf("expected 3, got %d", cfg.Concurrency)
	}
}

func TestNew_InvalidEnv(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"bad duration", envAPITimeout, "soon"},
		{"negative duration", envAPITimeout, "-1s"},
		{"bad concurrency", envConcurrency, "many"},
		{"zero concurrency", envConcurrency, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(envAPITimeout, "")
			t.Setenv(envConcurrency, "")
			t.Setenv(tt.key, tt.value)
			if _, err := New(t.TempDir()); err == nil {
				t.Errorf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := DefaultConfigDir(); got != filepath.Join("/xdg", AppName) {
		t.Errorf("unexpected dir %q", got)
	}
}

func TestZeroConfigFallbacks(t *testing.T) {
	cfg := &Config{}
	if cfg.Timeout() != DefaultAPITimeout {
		t.Errorf("expected default timeout, got %v", cfg.Timeout())
	}
	if cfg.MaxConcurrency() != DefaultConcurrency {
		t.Errorf("expected default concurrency, got %d", cfg.MaxConcurrency())
	}
}
