// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Port             string
	DBPath           string
	AllowedOrigins   []string
	LLMAPIKey        string
	LLMBaseURL       string
	LLMModel         string
	IdentityAPIKey   string
	IdentityBaseURL  string
	PersistQueueSize int
	AppEnv           string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		DBPath:           getEnv("DB_PATH", "./data/manas.db"),
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "*")),
		LLMAPIKey:        getEnv("LLM_API_KEY", ""),
		LLMBaseURL:       getEnv("LLM_BASE_URL", ""),
		LLMModel:         getEnv("LLM_MODEL", ""),
		IdentityAPIKey:   getEnv("IDENTITY_API_KEY", ""),
		IdentityBaseURL:  getEnv("IDENTITY_BASE_URL", ""),
		PersistQueueSize: getEnvInt("PERSIST_QUEUE_SIZE", 256),
		AppEnv:           getEnv("APP_ENV", "development"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.LLMAPIKey == "" {
		return fmt.Errorf("LLM_API_KEY cannot be empty")
	}
	if c.IdentityAPIKey == "" {
		return fmt.Errorf("IDENTITY_API_KEY cannot be empty")
	}
	if c.PersistQueueSize <= 0 {
		return fmt.Errorf("PERSIST_QUEUE_SIZE must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv != "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
