package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// HTTP surface
	CORSAllowedOrigins []string
	SessionRatePerSec  float64
	SessionRateBurst   int

	// Generation service
	GeminiAPIKey      string
	GeminiModelID     string
	OpenAIAPIKey      string
	OpenAIModelID     string
	LLMMaxAttempts    int
	LLMRetryBaseDelay time.Duration
	LLMRatePerSecond  float64
	LLMRateBurst      int
	LLMTemperature    float64
	LLMCallTimeout    time.Duration

	// Transcript cache
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	TranscriptTTL time.Duration

	// Outcome persistence
	DatabaseURL      string
	OutcomeScriptURL string
	OutcomeTimeout   time.Duration

	// Script rendering
	PricingFile       string
	PaymentAccount    string
	ExemptCohorts     []string
	PromoCohortMarker string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
		SessionRatePerSec:  getEnvAsFloat("SESSION_RATE_PER_SECOND", 1),
		SessionRateBurst:   getEnvAsInt("SESSION_RATE_BURST", 5),

		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:     getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModelID:     getEnv("OPENAI_MODEL_ID", "gpt-4o-mini"),
		LLMMaxAttempts:    getEnvAsInt("LLM_MAX_ATTEMPTS", 3),
		LLMRetryBaseDelay: getEnvAsDuration("LLM_RETRY_BASE_DELAY", time.Second),
		LLMRatePerSecond:  getEnvAsFloat("LLM_RATE_PER_SECOND", 3),
		LLMRateBurst:      getEnvAsInt("LLM_RATE_BURST", 5),
		LLMTemperature:    getEnvAsFloat("LLM_TEMPERATURE", 0.2),
		LLMCallTimeout:    getEnvAsDuration("LLM_CALL_TIMEOUT", 60*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		TranscriptTTL: getEnvAsDuration("TRANSCRIPT_TTL", 30*24*time.Hour),

		DatabaseURL:      getEnv("DATABASE_URL", ""),
		OutcomeScriptURL: getEnv("OUTCOME_SCRIPT_URL", ""),
		OutcomeTimeout:   getEnvAsDuration("OUTCOME_TIMEOUT", 15*time.Second),

		PricingFile:       getEnv("PRICING_FILE", ""),
		PaymentAccount:    getEnv("PAYMENT_ACCOUNT", ""),
		ExemptCohorts:     getEnvAsList("EXEMPT_COHORTS", []string{"돈냄"}),
		PromoCohortMarker: getEnv("PROMO_COHORT_MARKER", "이벤트"),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blank entries.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
