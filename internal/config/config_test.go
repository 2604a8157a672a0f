package config

import (
	"strings"
	"testing"
	"time"
)

var allKeys = []string{
	"PORT", "API_KEY", "LOG_LEVEL", "LOG_FILE",
	"LLM_PROVIDER", "GROQ_API_KEY", "GROQ_BASE_URL", "ANTHROPIC_API_KEY", "AI_MODEL", "REPLY_TIMEOUT",
	"CALLBACK_URL", "CALLBACK_TIMEOUT", "MAX_MESSAGES", "MIN_MESSAGES_FOR_INTEL", "RANDOM_SEED",
	"NATS_URL", "NATS_TOKEN", "DATABASE_URL", "REDIS_URL", "CALLBACK_CLAIM_TTL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.LLMProvider != ProviderGroq {
		t.Errorf("expected default provider groq, got %s", cfg.LLMProvider)
	}
	if cfg.AIModel != "mixtral-8x7b-32768" {
		t.Errorf("expected default model, got %s", cfg.AIModel)
	}
	if cfg.ReplyTimeout != 10*time.Second {
		t.Errorf("expected 10s reply timeout, got %v", cfg.ReplyTimeout)
	}
	if cfg.CallbackURL != "https://hackathon.guvi.in/api/updateHoneyPotFinalResult" {
		t.Errorf("expected default callback url, got %s", cfg.CallbackURL)
	}
	if cfg.CallbackTimeout != 5*time.Second {
		t.Errorf("expected 5s callback timeout, got %v", cfg.CallbackTimeout)
	}
	if cfg.MaxMessages != 25 {
		t.Errorf("expected max messages 25, got %d", cfg.MaxMessages)
	}
	if cfg.MinMessages != 1 {
		t.Errorf("expected min messages 1, got %d", cfg.MinMessages)
	}
	if cfg.NatsURL != "" || cfg.DatabaseURL != "" || cfg.RedisURL != "" {
		t.Errorf("expected optional backends off by default, got %+v", cfg)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9999")
	t.Setenv("API_KEY", "k")
	t.Setenv("LLM_PROVIDER", "Anthropic")
	t.Setenv("REPLY_TIMEOUT", "750ms")
	t.Setenv("CALLBACK_TIMEOUT", "3")
	t.Setenv("MAX_MESSAGES", "30")
	t.Setenv("RANDOM_SEED", "42")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg := Load()

	if cfg.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.Port)
	}
	if cfg.LLMProvider != ProviderAnthropic {
		t.Errorf("expected provider to be lowercased, got %s", cfg.LLMProvider)
	}
	if cfg.ReplyTimeout != 750*time.Millisecond {
		t.Errorf("expected 750ms, got %v", cfg.ReplyTimeout)
	}
	if cfg.CallbackTimeout != 3*time.Second {
		t.Errorf("expected plain seconds to parse, got %v", cfg.CallbackTimeout)
	}
	if cfg.MaxMessages != 30 {
		t.Errorf("expected 30, got %d", cfg.MaxMessages)
	}
	if cfg.RandomSeed != 42 {
		t.Errorf("expected seed 42, got %d", cfg.RandomSeed)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("unexpected redis url %s", cfg.RedisURL)
	}
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "not-a-number")
	t.Setenv("REPLY_TIMEOUT", "soon")

	cfg := Load()

	if cfg.Port != 8000 {
		t.Errorf("expected fallback port 8000, got %d", cfg.Port)
	}
	if cfg.ReplyTimeout != 10*time.Second {
		t.Errorf("expected fallback timeout, got %v", cfg.ReplyTimeout)
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "API_KEY") {
		t.Errorf("expected missing API_KEY error, got %v", err)
	}

	cfg.APIKey = "k"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}

	cfg.LLMProvider = "openai"
	cfg.MaxMessages = 0
	err = cfg.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	for _, want := range []string{"LLM_PROVIDER", "MAX_MESSAGES"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %s in %v", want, err)
		}
	}
}
