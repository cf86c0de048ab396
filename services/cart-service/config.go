package main

import (
	"fmt"
	"os"
	"time"
)

// Config holds all configuration for the cart service.
type Config struct {
	Port     string
	RedisURL string
	CartTTL  time.Duration
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:     getEnv("PORT", "8083"),
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
		CartTTL:  7 * 24 * time.Hour,
	}

	if raw := os.Getenv("CART_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid CART_TTL: %w", err)
		}
		cfg.CartTTL = ttl
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
