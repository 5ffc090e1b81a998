// Package config provides configuration for the backend.
package config

import (
	"os"
	"strconv"
	"time"
)

// Mode selection. NUTRIAI_MODE=MOCK swaps the Gemini client for a
// deterministic mock, which is how local development and CI run.
const (
	EnvMode  = "NUTRIAI_MODE"
	ModeMock = "MOCK"
)

// Config holds the backend configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Session store. Empty DatabaseURL selects the in-memory store.
	DatabaseURL string

	// Gemini settings
	GeminiAPIKey   string
	GeminiModel    string
	LLMTemperature float64
	LLMMaxTokens   int
	LLMTimeout     time.Duration

	// OpenFoodFacts settings
	OFFBaseURL  string
	OFFTimeout  time.Duration
	OFFCacheTTL time.Duration

	// Ingredient knowledge base
	KBPath string

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:       getEnvInt("HTTP_PORT", 8080),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		LLMTemperature: getEnvFloat("LLM_TEMPERATURE", 0.3),
		LLMMaxTokens:   getEnvInt("LLM_MAX_TOKENS", 1024),
		LLMTimeout:     time.Duration(getEnvInt("LLM_TIMEOUT_MS", 60000)) * time.Millisecond,
		OFFBaseURL:     getEnv("OFF_BASE_URL", "https://world.openfoodfacts.org"),
		OFFTimeout:     time.Duration(getEnvInt("OFF_TIMEOUT_MS", 10000)) * time.Millisecond,
		OFFCacheTTL:    time.Duration(getEnvInt("OFF_CACHE_TTL_MS", 300000)) * time.Millisecond,
		KBPath:         getEnv("KB_PATH", "data/ingredient_kb_seed.json"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

// MockMode reports whether the mock reasoning client should be used.
func MockMode() bool {
	return os.Getenv(EnvMode) == ModeMock
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
