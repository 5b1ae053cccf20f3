// Package config reads application configuration from the environment.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port     string
	Env      string
	DBPath   string
	RedisURL string
}

// Load reads configuration from environment variables.
// In development, it loads from a .env file if present.
// In production, it panics on missing required variables.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		DBPath:   getEnv("DB_PATH", "data/enque.db"),
		RedisURL: os.Getenv("REDIS_URL"),
	}

	// A single-node dev setup can run on the in-memory limit store,
	// but a fleet cannot share counters without redis.
	if cfg.Env == "production" && cfg.RedisURL == "" {
		panic("REDIS_URL is required in production")
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
