package main

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the payment service. GatewayMode picks
// the charge strategy: "deterministic", "probabilistic", or "stripe".
type Config struct {
	Port             string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	GatewayMode      string
	GatewayAccept    bool
	GatewayRate      float64
	StripeSecretKey  string
	Currency         string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8082"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		GatewayMode:      getEnv("PAYMENT_GATEWAY_MODE", "deterministic"),
		GatewayAccept:    true,
		GatewayRate:      0.9,
		StripeSecretKey:  os.Getenv("STRIPE_SECRET_KEY"),
		Currency:         getEnv("PAYMENT_CURRENCY", "INR"),
	}

	if cfg.PostgresUser == "" || cfg.PostgresPassword == "" || cfg.PostgresDB == "" {
		return nil, fmt.Errorf("database config incomplete")
	}

	if raw := os.Getenv("PAYMENT_GATEWAY_ACCEPT"); raw != "" {
		accept, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid PAYMENT_GATEWAY_ACCEPT: %w", err)
		}
		cfg.GatewayAccept = accept
	}
	if raw := os.Getenv("PAYMENT_GATEWAY_RATE"); raw != "" {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil || rate < 0 || rate > 1 {
			return nil, fmt.Errorf("invalid PAYMENT_GATEWAY_RATE: %q", raw)
		}
		cfg.GatewayRate = rate
	}
	if cfg.GatewayMode == "stripe" && cfg.StripeSecretKey == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY required for stripe gateway mode")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
