package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LLM providers.
const (
	ProviderGroq      = "groq"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

type Config struct {
	Port     int
	APIKey   string
	LogLevel string
	LogFile  string

	LLMProvider     string
	GroqAPIKey      string
	GroqBaseURL     string
	AnthropicAPIKey string
	AIModel         string
	ReplyTimeout    time.Duration

	CallbackURL     string
	CallbackTimeout time.Duration
	MaxMessages     int
	MinMessages     int
	RandomSeed      uint64

	NatsURL     string
	NatsToken   string
	DatabaseURL string
	RedisURL    string
	ClaimTTL    time.Duration
}

func Load() Config {
	return Config{
		Port:     envInt("PORT", 8000),
		APIKey:   envStr("API_KEY", ""),
		LogLevel: envStr("LOG_LEVEL", "info"),
		LogFile:  envStr("LOG_FILE", ""),

		LLMProvider:     strings.ToLower(envStr("LLM_PROVIDER", ProviderGroq)),
		GroqAPIKey:      envStr("GROQ_API_KEY", ""),
		GroqBaseURL:     envStr("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		AnthropicAPIKey: envStr("ANTHROPIC_API_KEY", ""),
		AIModel:         envStr("AI_MODEL", "mixtral-8x7b-32768"),
		ReplyTimeout:    envDuration("REPLY_TIMEOUT", 10*time.Second),

		CallbackURL:     envStr("CALLBACK_URL", "https://hackathon.guvi.in/api/updateHoneyPotFinalResult"),
		CallbackTimeout: envDuration("CALLBACK_TIMEOUT", 5*time.Second),
		MaxMessages:     envInt("MAX_MESSAGES", 25),
		MinMessages:     envInt("MIN_MESSAGES_FOR_INTEL", 1),
		RandomSeed:      uint64(envInt("RANDOM_SEED", 0)),

		NatsURL:     envStr("NATS_URL", ""),
		NatsToken:   envStr("NATS_TOKEN", ""),
		DatabaseURL: envStr("DATABASE_URL", ""),
		RedisURL:    envStr("REDIS_URL", ""),
		ClaimTTL:    envDuration("CALLBACK_CLAIM_TTL", 24*time.Hour),
	}
}

// Validate reports every setting that would keep the service from starting.
func (c Config) Validate() error {
	var errs []error
	if c.APIKey == "" {
		errs = append(errs, errors.New("API_KEY is required"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.MaxMessages <= 0 {
		errs = append(errs, fmt.Errorf("MAX_MESSAGES must be positive, got %d", c.MaxMessages))
	}
	if c.MinMessages < 0 {
		errs = append(errs, fmt.Errorf("MIN_MESSAGES_FOR_INTEL must not be negative, got %d", c.MinMessages))
	}
	if c.ReplyTimeout <= 0 {
		errs = append(errs, errors.New("REPLY_TIMEOUT must be positive"))
	}
	if c.CallbackTimeout <= 0 {
		errs = append(errs, errors.New("CALLBACK_TIMEOUT must be positive"))
	}
	switch c.LLMProvider {
	case ProviderGroq, ProviderAnthropic, ProviderNone:
	default:
		errs = append(errs, fmt.Errorf("LLM_PROVIDER %q is not one of groq, anthropic, none", c.LLMProvider))
	}
	return errors.Join(errs...)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envDuration accepts Go durations ("750ms") or plain seconds ("5").
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
