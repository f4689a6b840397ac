package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config represents the complete service configuration
type Config struct {
	Server ServerConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port          int
	AllowedOrigin string
	MaxClients    int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:          getEnvIntOrDefault("QUADRA_PORT", 8000),
			AllowedOrigin: getEnvOrDefault("QUADRA_ALLOWED_ORIGIN", "http://localhost:4200"),
			MaxClients:    getEnvIntOrDefault("QUADRA_MAX_CLIENTS", 100),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid QUADRA_PORT: %d", cfg.Server.Port)
	}
	if cfg.Server.MaxClients <= 0 {
		return fmt.Errorf("invalid QUADRA_MAX_CLIENTS: %d", cfg.Server.MaxClients)
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
