package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
// All required fields are validated at startup to ensure fail-fast behavior.
// The Pinata credential in particular is injected here and never embedded in
// source.
type Config struct {
	LogLevel string

	// Solana configuration
	SolanaRPCURL string
	Commitment   string

	// Content store configuration
	PinataJWT        string
	PinataGatewayURL string
	PinataUploadURL  string

	// Pipeline configuration
	ConfirmTimeout    time.Duration
	UploadMaxAttempts int
}

// Load reads configuration from environment variables and validates all required fields.
// Returns an error if any required configuration is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	var errs []error

	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	cfg.SolanaRPCURL = os.Getenv("SOLANA_RPC_URL")
	if cfg.SolanaRPCURL == "" {
		errs = append(errs, fmt.Errorf("SOLANA_RPC_URL is required"))
	}
	cfg.Commitment = getEnvOrDefault("COMMITMENT", "confirmed")

	cfg.PinataJWT = os.Getenv("PINATA_JWT")
	if cfg.PinataJWT == "" {
		errs = append(errs, fmt.Errorf("PINATA_JWT is required"))
	}
	cfg.PinataGatewayURL = os.Getenv("PINATA_GATEWAY_URL")
	if cfg.PinataGatewayURL == "" {
		errs = append(errs, fmt.Errorf("PINATA_GATEWAY_URL is required"))
	}
	cfg.PinataUploadURL = getEnvOrDefault("PINATA_UPLOAD_URL", "https://api.pinata.cloud/pinning/pinFileToIPFS")

	confirmTimeout, err := parseDuration("CONFIRM_TIMEOUT", "90s")
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.ConfirmTimeout = confirmTimeout
	}

	uploadAttempts, err := parseInt("UPLOAD_MAX_ATTEMPTS", 3)
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.UploadMaxAttempts = uploadAttempts
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %v", errs)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// MustLoad is like Load but panics if configuration is invalid.
// Useful for process initialization where misconfiguration should halt startup.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate checks if the configuration is valid.
// This is useful for testing configuration without loading from env.
func (c *Config) Validate() error {
	var errs []error

	if c.SolanaRPCURL == "" {
		errs = append(errs, fmt.Errorf("SolanaRPCURL is required"))
	}
	if c.PinataJWT == "" {
		errs = append(errs, fmt.Errorf("PinataJWT is required"))
	}
	if c.PinataGatewayURL == "" {
		errs = append(errs, fmt.Errorf("PinataGatewayURL is required"))
	}

	switch c.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		errs = append(errs, fmt.Errorf("Commitment must be processed, confirmed, or finalized (got %q)", c.Commitment))
	}

	if c.ConfirmTimeout < time.Second {
		errs = append(errs, fmt.Errorf("ConfirmTimeout must be at least 1 second"))
	}
	if c.UploadMaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("UploadMaxAttempts must be at least 1"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}

	return nil
}

// getEnvOrDefault returns the environment variable value or a default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration parses a duration from an environment variable or uses a default.
func parseDuration(key, defaultValue string) (time.Duration, error) {
	value := getEnvOrDefault(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}
	return duration, nil
}

// parseInt parses an integer from an environment variable or uses a default.
func parseInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, value, err)
	}
	return result, nil
}
