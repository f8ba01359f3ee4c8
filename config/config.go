// Package config provides configuration for the evaluation backend.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the backend configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Session store
	StoreDriver string // sqlite, memory, redis
	SQLiteDSN   string
	RedisAddr   string
	RedisTTL    time.Duration

	// Evaluation provider. Empty URL selects the mock evaluator.
	EvalAPIURL   string
	EvalTimeout  time.Duration
	BatchTimeout time.Duration

	// Chat provider. Empty URL selects the mock generator.
	ChatAPIURL  string
	ChatAPIKey  string
	ChatModel   string
	ChatTimeout time.Duration
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:     getEnvInt("HTTP_PORT", 8080),
		StoreDriver:  getEnv("STORE_DRIVER", "sqlite"),
		SQLiteDSN:    getEnv("SQLITE_DSN", "file:synthpanel.db?cache=shared&mode=rwc"),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		RedisTTL:     time.Duration(getEnvInt("REDIS_TTL_HOURS", 24)) * time.Hour,
		EvalAPIURL:   getEnv("EVAL_API_URL", ""),
		EvalTimeout:  time.Duration(getEnvInt("EVAL_TIMEOUT_MS", 120000)) * time.Millisecond,
		BatchTimeout: time.Duration(getEnvInt("BATCH_TIMEOUT_MS", 600000)) * time.Millisecond,
		ChatAPIURL:   getEnv("CHAT_API_URL", ""),
		ChatAPIKey:   getEnv("CHAT_API_KEY", ""),
		ChatModel:    getEnv("CHAT_MODEL", "llama-3.3-70b-instruct"),
		ChatTimeout:  time.Duration(getEnvInt("CHAT_TIMEOUT_MS", 60000)) * time.Millisecond,
	}
	return cfg
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
