package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_BIND_ADDR", ":9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BindAddr != ":9090" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":9090")
	}
	if cfg.BrainProvider != "auto" {
		t.Fatalf("BrainProvider = %q, want %q", cfg.BrainProvider, "auto")
	}
	if cfg.MaxLoopDepth != 6 {
		t.Fatalf("MaxLoopDepth = %d, want 6", cfg.MaxLoopDepth)
	}
	if cfg.ThinkingPause != 800*time.Millisecond {
		t.Fatalf("ThinkingPause = %v, want 800ms", cfg.ThinkingPause)
	}
	if cfg.DatabaseURL != "" {
		t.Fatalf("DatabaseURL = %q, want empty default", cfg.DatabaseURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("DEBATE_MAX_LOOP_DEPTH", "10")
	t.Setenv("DEBATE_THINKING_PAUSE", "50ms")
	t.Setenv("GEMINI_API_KEY", "  secret  ")
	t.Setenv("APP_ALLOW_ANY_ORIGIN", "yes")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxLoopDepth != 10 {
		t.Fatalf("MaxLoopDepth = %d, want 10", cfg.MaxLoopDepth)
	}
	if cfg.ThinkingPause != 50*time.Millisecond {
		t.Fatalf("ThinkingPause = %v, want 50ms", cfg.ThinkingPause)
	}
	if cfg.GeminiAPIKey != "secret" {
		t.Fatalf("GeminiAPIKey = %q, want trimmed value", cfg.GeminiAPIKey)
	}
	if !cfg.AllowAnyOrigin {
		t.Fatalf("AllowAnyOrigin = false, want true")
	}
}

func TestLoadRejectsNonPositiveDepth(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("DEBATE_MAX_LOOP_DEPTH", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected validation error for zero loop depth")
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("DEBATE_THINKING_PAUSE", "soon")

	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error for bad duration")
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_SESSION_INACTIVITY_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"APP_ALLOW_ANY_ORIGIN",
		"BRAIN_PROVIDER",
		"GEMINI_API_KEY",
		"GEMINI_BASE_URL",
		"GEMINI_MODEL",
		"DEBATE_MAX_LOOP_DEPTH",
		"DEBATE_THINKING_PAUSE",
		"DEBATE_SPEECH_POLL_INTERVAL",
		"PERSONA_CONFIG_PATH",
		"DATABASE_URL",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
