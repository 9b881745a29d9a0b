package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string // default: 8080

	// Bedrock
	AWSRegion       string // default: us-east-1
	BedrockEndpoint string // optional endpoint override
	// StrictProviderMatch rejects model identifiers with no known provider
	// marker instead of treating them as amazon-style.
	StrictProviderMatch bool

	// Rate limiting, enabled when RedisAddr is set
	RedisAddr           string
	DefaultRateLimitTPM int64 // tokens per minute, default: 100000

	// Observability
	OTELExporterType     string // "none", "stdout" or "otlp"
	OTELExporterEndpoint string // default: "localhost:4317"
}

func Load() (*Config, error) {
	// Load .env file if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		AWSRegion:            getEnv("AWS_REGION", "us-east-1"),
		BedrockEndpoint:      os.Getenv("BEDROCK_ENDPOINT"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		OTELExporterType:     getEnv("OTEL_EXPORTER_TYPE", "none"),
		OTELExporterEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", "localhost:4317"),
	}

	strict, err := strconv.ParseBool(getEnv("STRICT_PROVIDER_MATCH", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid STRICT_PROVIDER_MATCH: %w", err)
	}
	cfg.StrictProviderMatch = strict

	tpm, err := strconv.ParseInt(getEnv("DEFAULT_RATE_LIMIT_TPM", "100000"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_RATE_LIMIT_TPM: %w", err)
	}
	cfg.DefaultRateLimitTPM = tpm

	// Validation
	if cfg.AWSRegion == "" {
		return nil, fmt.Errorf("AWS_REGION must not be empty")
	}
	switch cfg.OTELExporterType {
	case "none", "stdout", "otlp":
	default:
		return nil, fmt.Errorf("invalid OTEL_EXPORTER_TYPE %q (want none, stdout or otlp)", cfg.OTELExporterType)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
