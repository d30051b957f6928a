package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("VOICE_BASE_URL", "")

	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.StoreBackend != "file" {
		t.Errorf("StoreBackend = %q, want file", cfg.StoreBackend)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %s, want 24h", cfg.SessionTTL)
	}
	if cfg.VoiceBaseURL != "" {
		t.Errorf("VoiceBaseURL = %q, want empty (calls disabled)", cfg.VoiceBaseURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("RATE_LIMIT_REQUESTS", "3")
	t.Setenv("DEBUG", "true")

	cfg := Load()

	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want 9090", cfg.ServerPort)
	}
	if cfg.StoreBackend != "sqlite" {
		t.Errorf("StoreBackend = %q, want sqlite", cfg.StoreBackend)
	}
	if cfg.SessionTTL != 90*time.Minute {
		t.Errorf("SessionTTL = %s, want 90m", cfg.SessionTTL)
	}
	if cfg.RateLimitRequests != 3 {
		t.Errorf("RateLimitRequests = %d, want 3", cfg.RateLimitRequests)
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true")
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("SESSION_TTL", "soon")
	t.Setenv("RATE_LIMIT_REQUESTS", "many")

	cfg := Load()

	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %s, want the 24h default", cfg.SessionTTL)
	}
	if cfg.RateLimitRequests != 10 {
		t.Errorf("RateLimitRequests = %d, want the default 10", cfg.RateLimitRequests)
	}
}
