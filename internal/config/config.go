// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing or malformed, Load returns an
// error and the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LLM providers understood by the structuring client.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

// Config holds all runtime configuration for the opportunity service.
type Config struct {
	Port        string
	GRPCPort    string
	DatabaseURL string
	RedisURL    string // optional: empty disables the search cache and sync events
	FrontendURL string
	LogLevel    string
	LogDev      bool

	SerpAPIKey        string
	SearchConcurrency int     // 1 keeps the fan-out sequential
	SearchRPS         float64 // outbound requests per second to the search provider
	SearchCacheTTL    time.Duration
	SearchTimeout     time.Duration

	LLMProvider     string
	GeminiAPIKey    string
	GeminiModel     string
	AnthropicAPIKey string
	AnthropicModel  string
	LLMTimeout      time.Duration

	TargetYear int // year embedded in search queries
	MinYear    int // opportunities dated before this year are rejected by the model

	RetentionWindow time.Duration
	SyncInterval    time.Duration // minimum age of the last sync before the scheduler runs again
	SyncCron        string
	SyncOnStartup   bool
}

// Load reads environment variables (after merging a .env file when present)
// and returns a validated Config.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	year := time.Now().Year()

	cfg := &Config{
		Port:        getEnv("PORT", "3001"),
		GRPCPort:    getEnv("GRPC_PORT", "9091"),
		DatabaseURL: dbURL,
		RedisURL:    os.Getenv("REDIS_URL"),
		FrontendURL: os.Getenv("FRONTEND_URL"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		SerpAPIKey: os.Getenv("SERPAPI_KEY"),

		LLMProvider:     getEnv("LLM_PROVIDER", ProviderGemini),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-5"),

		SyncCron: getEnv("SYNC_CRON", "0 * * * *"),
	}

	var err error
	if cfg.LogDev, err = getBool("LOG_DEV", false); err != nil {
		return nil, err
	}
	if cfg.SyncOnStartup, err = getBool("SYNC_ON_STARTUP", true); err != nil {
		return nil, err
	}
	if cfg.SearchConcurrency, err = getPositiveInt("SEARCH_CONCURRENCY", 1); err != nil {
		return nil, err
	}
	if cfg.TargetYear, err = getPositiveInt("TARGET_YEAR", year); err != nil {
		return nil, err
	}
	if cfg.MinYear, err = getPositiveInt("MIN_YEAR", cfg.TargetYear); err != nil {
		return nil, err
	}
	if cfg.SearchRPS, err = getPositiveFloat("SEARCH_RPS", 1); err != nil {
		return nil, err
	}

	durations := []struct {
		key  string
		def  time.Duration
		dst  *time.Duration
		zero bool // whether 0 is an accepted value
	}{
		{"SEARCH_CACHE_TTL", time.Hour, &cfg.SearchCacheTTL, true},
		{"SEARCH_TIMEOUT", 30 * time.Second, &cfg.SearchTimeout, false},
		{"LLM_TIMEOUT", 60 * time.Second, &cfg.LLMTimeout, false},
		{"RETENTION_WINDOW", 7 * 24 * time.Hour, &cfg.RetentionWindow, false},
		{"SYNC_INTERVAL", 24 * time.Hour, &cfg.SyncInterval, false},
	}
	for _, d := range durations {
		v, err := getDuration(d.key, d.def, d.zero)
		if err != nil {
			return nil, err
		}
		*d.dst = v
	}

	switch cfg.LLMProvider {
	case ProviderGemini, ProviderAnthropic:
	default:
		return nil, fmt.Errorf("LLM_PROVIDER must be %q or %q, got %q", ProviderGemini, ProviderAnthropic, cfg.LLMProvider)
	}

	return cfg, nil
}

// LLMModel returns the model name for the configured provider.
func (c *Config) LLMModel() string {
	if c.LLMProvider == ProviderAnthropic {
		return c.AnthropicModel
	}
	return c.GeminiModel
}

// LLMAPIKey returns the API key for the configured provider.
func (c *Config) LLMAPIKey() string {
	if c.LLMProvider == ProviderAnthropic {
		return c.AnthropicAPIKey
	}
	return c.GeminiAPIKey
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, s)
	}
	return v, nil
}

func getPositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, s)
	}
	return v, nil
}

func getPositiveFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive number, got %q", key, s)
	}
	return v, nil
}

func getDuration(key string, def time.Duration, allowZero bool) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := time.ParseDuration(s)
	if err != nil || v < 0 || (v == 0 && !allowZero) {
		return 0, fmt.Errorf("%s must be a positive duration (e.g. 30s, 24h), got %q", key, s)
	}
	return v, nil
}
