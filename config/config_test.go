package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("STRICT_PROVIDER_MATCH", "false")
	t.Setenv("DEFAULT_RATE_LIMIT_TPM", "100000")
	t.Setenv("OTEL_EXPORTER_TYPE", "none")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.AWSRegion != "us-east-1" {
		t.Errorf("Expected us-east-1, got %s", cfg.AWSRegion)
	}
	if cfg.StrictProviderMatch {
		t.Error("Expected fallback matching by default")
	}
	if cfg.DefaultRateLimitTPM != 100000 {
		t.Errorf("Expected 100000, got %d", cfg.DefaultRateLimitTPM)
	}
}

func TestLoad_Strict(t *testing.T) {
	t.Setenv("STRICT_PROVIDER_MATCH", "true")
	t.Setenv("OTEL_EXPORTER_TYPE", "stdout")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.StrictProviderMatch {
		t.Error("Expected strict matching")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"STRICT_PROVIDER_MATCH":  "maybe",
		"DEFAULT_RATE_LIMIT_TPM": "lots",
		"OTEL_EXPORTER_TYPE":     "jaeger",
		"AWS_REGION":             "",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Errorf("Expected error for %s=%q", key, value)
			}
		})
	}
}
