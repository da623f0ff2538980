package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Completion service (Perplexity-compatible chat completions API)
	CompletionAPIKey  string
	CompletionBaseURL string
	CompletionModel   string

	// HTTP client
	HTTPTimeout time.Duration

	// Resource limits
	MaxConcurrentCoordinations int

	// Inventory snapshot cache
	InventoryCacheTTL time.Duration

	// Observability
	OTLPEndpoint string

	// Seed data overrides (optional YAML files; empty means built-in seeds)
	PatientsFile  string
	InventoryFile string

	// Operator auth. Auth is disabled when OperatorKeyHash is empty.
	OperatorKeyHash string // bcrypt hash of the shared operator key
	JWTSecret       string
	JWTAccessTTL    time.Duration
}

// Load reads configuration from environment variables with defaults.
// The completion API key is deliberately not validated here: a missing key
// surfaces as a service-call failure on the first request.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		CompletionAPIKey:  getEnv("PERPLEXITY_API_KEY", ""),
		CompletionBaseURL: getEnv("PERPLEXITY_BASE_URL", "https://api.perplexity.ai"),
		CompletionModel:   getEnv("COMPLETION_MODEL", "sonar-pro"),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 30*time.Second),

		MaxConcurrentCoordinations: getEnvInt("MAX_CONCURRENT_COORDINATIONS", 10),

		InventoryCacheTTL: getEnvDuration("INVENTORY_CACHE_TTL", 1*time.Minute),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		PatientsFile:  getEnv("PATIENTS_FILE", ""),
		InventoryFile: getEnv("INVENTORY_FILE", ""),

		OperatorKeyHash: getEnv("OPERATOR_KEY_HASH", ""),
		JWTSecret:       getEnv("JWT_SECRET", "medicoord-default-dev-secret-change-me"),
		JWTAccessTTL:    getEnvDuration("JWT_ACCESS_TTL", 1*time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
