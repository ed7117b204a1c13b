package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Database configuration
	DatabasePath string

	// Classifier configuration
	LLMAPIKey  string
	LLMModel   string
	LLMBaseURL string
	LLMTimeout time.Duration

	// Schedule configuration
	DigestSchedule string // "daily" or "weekly"
	SweepInterval  time.Duration

	// Digest delivery configuration
	WebhookURL  string
	DigestEmail string
	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string

	// Snapshot archive configuration
	StorageAccount   string
	StorageContainer string

	// Feature flags
	EnableScheduler bool
	EnableDigest    bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		Debug: getBoolEnv("DEBUG", false),

		DatabasePath: getEnv("DB_PATH", "feedback.db"),

		LLMAPIKey:  getEnv("LLM_API_KEY", ""),
		LLMModel:   getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMBaseURL: getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMTimeout: getDurationEnv("LLM_TIMEOUT", 60*time.Second),

		DigestSchedule: getEnv("DIGEST_SCHEDULE", "weekly"),
		SweepInterval:  getDurationEnv("SWEEP_INTERVAL", 10*time.Minute),

		WebhookURL:  getEnv("WEBHOOK_URL", ""),
		DigestEmail: getEnv("DIGEST_EMAIL", ""),
		SMTPHost:    getEnv("SMTP_HOST", ""),
		SMTPPort:    getIntEnv("SMTP_PORT", 587),
		SMTPUser:    getEnv("SMTP_USERNAME", ""),
		SMTPPass:    getEnv("SMTP_PASSWORD", ""),

		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "feedback-snapshots"),

		EnableScheduler: getBoolEnv("ENABLE_SCHEDULER", true),
		EnableDigest:    getBoolEnv("ENABLE_DIGEST", false),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DigestSchedule != "daily" && c.DigestSchedule != "weekly" {
		return fmt.Errorf("DIGEST_SCHEDULE must be 'daily' or 'weekly'")
	}

	if c.EnableDigest && c.WebhookURL == "" && c.DigestEmail == "" {
		return fmt.Errorf("at least one digest channel must be configured (WEBHOOK_URL or DIGEST_EMAIL)")
	}

	if c.DigestEmail != "" {
		if c.SMTPHost == "" || c.SMTPUser == "" || c.SMTPPass == "" {
			return fmt.Errorf("SMTP configuration is required when DIGEST_EMAIL is set")
		}
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
