// Package config provides environment configuration for the API server.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	AllowedOrigins     []string

	// Datastore settings
	DatabaseURL string

	// LLM settings
	OpenAIAPIKey    string
	AnthropicAPIKey string
	LLMProvider     string
	ChatModel       string
	ChatTemperature float64
	ChatMaxTokens   int
	ChatTimeout     time.Duration

	// Admin auth
	JWTSecret string

	// Rate limiting (public surface)
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Config cache
	ConfigCacheTTL time.Duration

	// Catalog scraper
	ScraperEnabled  bool
	ScraperSchedule string
	ScraperTimeout  time.Duration

	// Background writes
	WorkerQueueSize int
	WorkerCount     int

	// Logging
	LogLevel    string
	Environment string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "3000"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
		AllowedOrigins:     getListEnv("ALLOWED_ORIGINS", []string{"https://*", "http://*"}),

		// Datastore
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/chatech?sslmode=disable"),

		// LLM
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		LLMProvider:     getEnv("LLM_PROVIDER", "openai"),
		ChatModel:       getEnv("CHAT_MODEL", "gpt-4o-mini"),
		ChatTemperature: getFloatEnv("CHAT_TEMPERATURE", 0.7),
		ChatMaxTokens:   getIntEnv("CHAT_MAX_TOKENS", 500),
		ChatTimeout:     getDurationEnv("CHAT_TIMEOUT", 30*time.Second),

		// Admin auth
		JWTSecret: getEnv("JWT_SECRET", "development-secret-change-in-production"),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Config cache
		ConfigCacheTTL: getDurationEnv("CONFIG_CACHE_TTL", 5*time.Minute),

		// Scraper
		ScraperEnabled:  getBoolEnv("SCRAPER_ENABLED", true),
		ScraperSchedule: getEnv("SCRAPER_SCHEDULE", "@every 24h"),
		ScraperTimeout:  getDurationEnv("SCRAPER_TIMEOUT", 10*time.Second),

		// Background writes
		WorkerQueueSize: getIntEnv("WORKER_QUEUE_SIZE", 256),
		WorkerCount:     getIntEnv("WORKER_COUNT", 2),

		// Logging
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Environment: getEnv("ENVIRONMENT", "production"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
