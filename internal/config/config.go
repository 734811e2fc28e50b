package config

import (
	"os"
	"strconv"

	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig
	Source    SourceConfig
	Transform TransformConfig
	Server    ServerConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// SourceConfig holds workbook source settings
type SourceConfig struct {
	// URL overrides AIHW page discovery with a direct workbook link
	URL string
	// FilePath points at a local workbook instead of a download
	FilePath string
	// Year is the source vintage when it cannot be derived from the URL
	Year int
}

// TransformConfig holds header-detection settings
type TransformConfig struct {
	HeaderScanRows  int
	HeaderMinTokens int
}

// ServerConfig holds dashboard API settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// Load reads configuration from environment variables and validates it.
// A missing DATABASE_URL is a startup-fatal configuration error.
func Load() (*Config, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	config := &Config{
		Database: DatabaseConfig{
			URL:     url,
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		Source: SourceConfig{
			URL:      getEnvOrDefault("SOURCE_URL", ""),
			FilePath: getEnvOrDefault("EXCEL_FILE", ""),
			Year:     getEnvIntOrDefault("SOURCE_YEAR", 0),
		},
		Transform: TransformConfig{
			HeaderScanRows:  getEnvIntOrDefault("HEADER_SCAN_ROWS", 40),
			HeaderMinTokens: getEnvIntOrDefault("HEADER_MIN_TOKENS", 2),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
	}

	if config.Transform.HeaderScanRows < 1 {
		return nil, errors.ConfigInvalid("HEADER_SCAN_ROWS must be at least 1")
	}
	if config.Transform.HeaderMinTokens < 1 {
		return nil, errors.ConfigInvalid("HEADER_MIN_TOKENS must be at least 1")
	}

	return config, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
