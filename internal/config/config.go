package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"prodflow/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Lifecycle LifecycleConfig
	Telemetry TelemetryConfig
}

// DatabaseConfig holds database connection settings. An empty URL selects the in-memory store.
type DatabaseConfig struct {
	URL            string
	ConnectTimeout time.Duration
	MaxOpenConns   int
	MaxIdleConns   int
	SeedMembers    []string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// LifecycleConfig holds the knobs of the lifecycle services
type LifecycleConfig struct {
	SweepConcurrency     int
	AnnouncementCategory string
	OwnerRosterStrict    bool
}

// TelemetryConfig selects the metrics pipeline
type TelemetryConfig struct {
	Enabled bool
	Stdout  bool
}

// UsesMemoryStore reports whether no database is configured
func (c *Config) UsesMemoryStore() bool {
	return strings.TrimSpace(c.Database.URL) == ""
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database:  *loadDatabaseConfig(),
		Server:    *loadServerConfig(),
		Lifecycle: *loadLifecycleConfig(),
		Telemetry: *loadTelemetryConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL:            os.Getenv("DATABASE_URL"),
		ConnectTimeout: getEnvDurationOrDefault("DB_CONNECT_TIMEOUT", 30*time.Second),
		MaxOpenConns:   getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:   getEnvIntOrDefault("DB_MAX_IDLE_CONNS", 5),
		SeedMembers:    getEnvListOrDefault("ROSTER_MEMBERS", nil),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadLifecycleConfig() *LifecycleConfig {
	return &LifecycleConfig{
		SweepConcurrency:     getEnvIntOrDefault("SWEEP_CONCURRENCY", 4),
		AnnouncementCategory: getEnvOrDefault("ANNOUNCEMENT_CATEGORY", "product"),
		OwnerRosterStrict:    getEnvBoolOrDefault("OWNER_ROSTER_STRICT", true),
	}
}

func loadTelemetryConfig() *TelemetryConfig {
	return &TelemetryConfig{
		Enabled: getEnvBoolOrDefault("OTEL_ENABLED", false),
		Stdout:  getEnvBoolOrDefault("OTEL_STDOUT", false),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT must not be empty")
	}
	if config.Lifecycle.SweepConcurrency < 1 {
		return errors.ConfigInvalid("SWEEP_CONCURRENCY must be at least 1")
	}
	if config.Database.ConnectTimeout <= 0 {
		return errors.ConfigInvalid("DB_CONNECT_TIMEOUT must be positive")
	}
	switch config.Server.GinMode {
	case "debug", "release", "test":
	default:
		return errors.ConfigInvalid("GIN_MODE must be debug, release or test")
	}
	return nil
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvListOrDefault splits a comma-separated value, dropping blanks
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
