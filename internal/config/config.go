package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the debate service.
type Config struct {
	BindAddr                 string
	ShutdownTimeout          time.Duration
	SessionInactivityTimeout time.Duration
	MetricsNamespace         string

	AllowAnyOrigin bool

	BrainProvider string

	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiModel   string

	MaxLoopDepth       int
	ThinkingPause      time.Duration
	SpeechPollInterval time.Duration
	PersonaConfigPath  string

	DatabaseURL string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:          envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace:  envOrDefault("APP_METRICS_NAMESPACE", "dialettica"),
		AllowAnyOrigin:    false,
		BrainProvider:     envOrDefault("BRAIN_PROVIDER", "auto"),
		GeminiBaseURL:     envOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiModel:       envOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiAPIKey:      stringsTrimSpace("GEMINI_API_KEY"),
		PersonaConfigPath: stringsTrimSpace("PERSONA_CONFIG_PATH"),
		DatabaseURL:       stringsTrimSpace("DATABASE_URL"),
		MaxLoopDepth:      6,
		// Matches the human cadence of the debate: a short beat between
		// turns and a coarse poll while the voice drains.
		ThinkingPause:            800 * time.Millisecond,
		SpeechPollInterval:       200 * time.Millisecond,
		ShutdownTimeout:          15 * time.Second,
		SessionInactivityTimeout: 10 * time.Minute,
	}
	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionInactivityTimeout, err = durationFromEnv("APP_SESSION_INACTIVITY_TIMEOUT", cfg.SessionInactivityTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.ThinkingPause, err = durationFromEnv("DEBATE_THINKING_PAUSE", cfg.ThinkingPause)
	if err != nil {
		return Config{}, err
	}
	cfg.SpeechPollInterval, err = durationFromEnv("DEBATE_SPEECH_POLL_INTERVAL", cfg.SpeechPollInterval)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxLoopDepth, err = intFromEnv("DEBATE_MAX_LOOP_DEPTH", cfg.MaxLoopDepth)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	if cfg.SessionInactivityTimeout < 5*time.Second {
		return Config{}, fmt.Errorf("APP_SESSION_INACTIVITY_TIMEOUT must be at least 5s")
	}
	if cfg.MaxLoopDepth <= 0 {
		return Config{}, fmt.Errorf("DEBATE_MAX_LOOP_DEPTH must be positive")
	}
	if cfg.ThinkingPause < 0 {
		return Config{}, fmt.Errorf("DEBATE_THINKING_PAUSE must not be negative")
	}
	if cfg.SpeechPollInterval <= 0 {
		return Config{}, fmt.Errorf("DEBATE_SPEECH_POLL_INTERVAL must be positive")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
