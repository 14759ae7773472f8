package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all process configuration, read from the environment.
type Config struct {
	// Storage
	TableName string

	// Cognito settings
	CognitoRegion     string
	CognitoUserPoolID string
	CognitoClientID   string

	// Notifications queue
	QueueURL string

	// Observability
	MetricsNamespace string

	// Idempotency guard TTL window
	IdempotencyTTL time.Duration

	// Local development
	Port     string
	RunLocal bool
}

// Load reads configuration from the environment with sensible defaults.
func Load() *Config {
	return &Config{
		TableName:         getEnv("TABLE_NAME", "app-table"),
		CognitoRegion:     getEnv("AWS_REGION", "us-east-1"),
		CognitoUserPoolID: getEnv("COGNITO_USER_POOL_ID", ""),
		CognitoClientID:   getEnv("COGNITO_CLIENT_ID", ""),
		QueueURL:          getEnv("NOTIFICATIONS_QUEUE_URL", ""),
		MetricsNamespace:  getEnv("METRICS_NAMESPACE", "TxLedger"),
		IdempotencyTTL:    time.Duration(getIntEnv("IDEMPOTENCY_TTL_HOURS", 48)) * time.Hour,
		Port:              getEnv("PORT", "8080"),
		RunLocal:          getBoolEnv("RUN_LOCAL", false),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
