package core

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the process configuration, sourced from environment variables.
type Config struct {
	LogLevel string

	// Model gateway
	APIKey         string // required
	BaseURL        string
	RequestTimeout time.Duration

	// Per-stage model overrides; empty means use the policy defaults
	BusinessModel  string
	DesignModel    string
	SynthesisModel string

	// HTTP front end
	HTTPPort       int
	AllowedOrigins []string

	// Optional YAML overlay for the stage policy
	PolicyFile string
}

// LoadConfig loads configuration from environment variables. A missing
// OPENROUTER_API_KEY is fatal: the process cannot serve a single turn
// without it.
func LoadConfig() (*Config, error) {
	logLevel := getEnvOrDefault("LOG_LEVEL", "info")
	if os.Getenv("DEBUG") == "1" {
		logLevel = "debug"
	}

	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if apiKey == "" {
		return nil, &ConfigError{Name: "OPENROUTER_API_KEY", Message: "required"}
	}

	return &Config{
		LogLevel:       logLevel,
		APIKey:         apiKey,
		BaseURL:        getEnvOrDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		RequestTimeout: time.Duration(getEnvInt("LLM_TIMEOUT_MS", 60000)) * time.Millisecond,
		BusinessModel:  os.Getenv("BUSINESS_MODEL"),
		DesignModel:    os.Getenv("DESIGN_MODEL"),
		SynthesisModel: os.Getenv("SYNTHESIS_MODEL"),
		HTTPPort:       getEnvInt("HTTP_PORT", 8000),
		AllowedOrigins: splitList(getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:5173")),
		PolicyFile:     os.Getenv("POLICY_FILE"),
	}, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
