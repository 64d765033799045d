package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.ResultsPath != "results.json" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.HTTPTimeout != 15*time.Second || cfg.RevealDelay != 5*time.Second {
		t.Fatalf("unexpected durations: %v %v", cfg.HTTPTimeout, cfg.RevealDelay)
	}
	if cfg.LogLevel != slog.LevelInfo || cfg.DemoMode || cfg.InlineActions != 3 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DEMO_MODE", "true")
	t.Setenv("REVEAL_DELAY", "250ms")
	t.Setenv("INLINE_ACTIONS", "-2")
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" || cfg.LogLevel != slog.LevelDebug || !cfg.DemoMode {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.RevealDelay != 250*time.Millisecond {
		t.Fatalf("reveal delay: %v", cfg.RevealDelay)
	}
	if cfg.InlineActions != 0 {
		t.Fatalf("negative inline count must clamp to 0, got %d", cfg.InlineActions)
	}
}

func TestFromEnvError(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "soon")
	_, err := FromEnv()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
