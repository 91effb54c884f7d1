package config

import (
	"os"
	"strconv"

	"hypolab/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Analysis AnalysisConfig
	Data     DataConfig
	Database DatabaseConfig
}

// ServerConfig holds the web server settings
type ServerConfig struct {
	Port    string
	APIPort string
	GinMode string
}

// AnalysisConfig holds the statistical settings
type AnalysisConfig struct {
	// Alpha is the significance threshold verdicts are rendered against
	Alpha float64
}

// DataConfig holds the default data source settings
type DataConfig struct {
	// File is an optional dataset (CSV or xlsx) to preload
	File string
}

// DatabaseConfig holds the optional Postgres ingestion source
type DatabaseConfig struct {
	URL string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			APIPort: getEnvOrDefault("API_PORT", "8081"),
			GinMode: getEnvOrDefault("GIN_MODE", "debug"),
		},
		Analysis: AnalysisConfig{
			Alpha: getEnvFloatOrDefault("ALPHA", 0.05),
		},
		Data: DataConfig{
			File: getEnvOrDefault("DATASET_FILE", ""),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
	}

	if cfg.Analysis.Alpha <= 0 || cfg.Analysis.Alpha >= 1 {
		return nil, errors.ConfigInvalid("ALPHA must be in (0, 1)")
	}
	return cfg, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
