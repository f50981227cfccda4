// Package config provides configuration management for Estia.
// It loads settings from environment variables with the ESTIA_ prefix
// and provides sensible defaults for all configuration options.
//
// The import tool additionally supports a .env file in the working
// directory (loaded by cmd/estia-import before this package reads the
// environment).
package config

import (
	"errors"
	"os"
	"strconv"
)

// ErrMissingBackendConfig indicates the backend endpoint URL or access key
// is absent. The web service tolerates this (it falls back to the static
// source); the import tool treats it as fatal.
var ErrMissingBackendConfig = errors.New("config: ESTIA_BACKEND_URL and ESTIA_BACKEND_KEY are required")

// Config holds all configuration settings for the Estia directory service.
type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Fallback FallbackConfig
	Security SecurityConfig
	Import   ImportConfig
	Sources  SourcesConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port int    // Server port (default: 6380)
	Host string // Server host (default: 127.0.0.1)
}

// BackendConfig contains the primary-source (hosted backend) configuration.
type BackendConfig struct {
	URL            string // Backend REST endpoint base URL
	Key            string // Backend access key
	Active         bool   // Whether the backend is tried at all (default: true)
	Transport      string // Transport to the backend: rest, postgres, sqlite (default: rest)
	TimeoutSeconds int    // Per-request timeout for REST calls (default: 10)
	PostgresDSN    string // DSN for the postgres transport
	SQLitePath     string // Database path for the sqlite transport (default: ./data/estia.db)
}

// FallbackConfig contains the secondary-source configuration.
type FallbackConfig struct {
	StaticURL      string // URL of the static JSON agent document
	TimeoutSeconds int    // Per-request timeout for the static fetch (default: 10)
}

// SecurityConfig contains security and authentication settings.
type SecurityConfig struct {
	SecurityMode string // Security mode: development, production (default: development)
	APIToken     string // API authentication token
}

// ImportConfig contains settings for the one-shot import tool.
type ImportConfig struct {
	BatchSize        int    // Records per insert batch (default: 50)
	BatchesPerSecond int    // Sustained insert rate (default: 2)
	DataPath         string // Data directory, used for cross-process event files (default: ./data)
}

// SourcesConfig points at the optional source-chain file.
type SourcesConfig struct {
	File string // Path to a sources.yaml describing the chain; empty builds the default chain from env
}

// LoadConfig loads configuration from environment variables with sensible
// defaults. All environment variables use the ESTIA_ prefix.
func LoadConfig() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Port: getEnvInt("ESTIA_PORT", 6380),
			Host: getEnv("ESTIA_HOST", "127.0.0.1"),
		},
		Backend: BackendConfig{
			URL:            getEnv("ESTIA_BACKEND_URL", ""),
			Key:            getEnv("ESTIA_BACKEND_KEY", ""),
			Active:         getEnvBool("ESTIA_BACKEND_ACTIVE", true),
			Transport:      getEnv("ESTIA_BACKEND_TRANSPORT", "rest"),
			TimeoutSeconds: getEnvInt("ESTIA_BACKEND_TIMEOUT", 10),
			PostgresDSN:    getEnv("ESTIA_POSTGRES_DSN", ""),
			SQLitePath:     getEnv("ESTIA_SQLITE_PATH", "./data/estia.db"),
		},
		Fallback: FallbackConfig{
			StaticURL:      getEnv("ESTIA_STATIC_URL", ""),
			TimeoutSeconds: getEnvInt("ESTIA_STATIC_TIMEOUT", 10),
		},
		Security: SecurityConfig{
			SecurityMode: getEnv("ESTIA_SECURITY_MODE", "development"),
			APIToken:     getEnv("ESTIA_API_TOKEN", ""),
		},
		Import: ImportConfig{
			BatchSize:        getEnvInt("ESTIA_IMPORT_BATCH_SIZE", 50),
			BatchesPerSecond: getEnvInt("ESTIA_IMPORT_RATE", 2),
			DataPath:         getEnv("ESTIA_DATA_PATH", "./data"),
		},
		Sources: SourcesConfig{
			File: getEnv("ESTIA_SOURCES_FILE", ""),
		},
	}, nil
}

// RequireBackend validates that the two backend values the import tool
// needs are both present.
func (c *Config) RequireBackend() error {
	if c.Backend.URL == "" || c.Backend.Key == "" {
		return ErrMissingBackendConfig
	}
	return nil
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value.
// If the environment variable exists but cannot be parsed as an integer,
// it returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value.
// It recognizes "true", "1", "yes" as true and "false", "0", "no" as false (case-insensitive).
// If the environment variable exists but cannot be parsed as a boolean,
// it returns the default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch value {
		case "true", "1", "yes", "True", "TRUE", "Yes", "YES":
			return true
		case "false", "0", "no", "False", "FALSE", "No", "NO":
			return false
		}
	}
	return defaultValue
}
