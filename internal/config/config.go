package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	DatabaseDriver  string `yaml:"database_driver"`
	DatabaseDSN     string `yaml:"database_dsn"`
	ServerPort      string `yaml:"server_port"`
	FrontendURL     string `yaml:"frontend_url"`
	OpenAIKey       string `yaml:"openai_key"`
	InsightModel    string `yaml:"insight_model"`
	InsightBaseURL  string `yaml:"insight_base_url"`
	RefreshInterval int    `yaml:"refresh_interval_seconds"`
	ServerDebugMode bool   `yaml:"server_debug_mode"`
	OTELEnabled     bool   `yaml:"otel_enabled"`
	OTELEndpoint    string `yaml:"otel_endpoint"`
}

// Load loads configuration from environment variables, with an optional YAML
// file (DAYBLOCK_CONFIG) applied underneath: env always wins.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseDriver:  "sqlite",
		DatabaseDSN:     defaultDBPath(),
		ServerPort:      "8080",
		FrontendURL:     "http://localhost:3000",
		RefreshInterval: 60,
	}

	if path := os.Getenv("DAYBLOCK_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.DatabaseDriver = getEnv("DAYBLOCK_DB_DRIVER", cfg.DatabaseDriver)
	cfg.DatabaseDSN = getEnv("DAYBLOCK_DB_DSN", cfg.DatabaseDSN)
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.FrontendURL = getEnv("FRONTEND_URL", cfg.FrontendURL)
	cfg.OpenAIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIKey)
	cfg.InsightModel = getEnv("INSIGHT_MODEL", cfg.InsightModel)
	cfg.InsightBaseURL = getEnv("INSIGHT_BASE_URL", cfg.InsightBaseURL)
	cfg.RefreshInterval = getEnvInt("REFRESH_INTERVAL_SECONDS", cfg.RefreshInterval)
	cfg.ServerDebugMode = getEnvBool("SERVER_DEBUG_MODE", cfg.ServerDebugMode)
	cfg.OTELEnabled = getEnvBool("OTEL_ENABLED", cfg.OTELEnabled)
	cfg.OTELEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTELEndpoint)

	switch cfg.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unsupported database driver %q (must be 'sqlite' or 'postgres')", cfg.DatabaseDriver)
	}

	if cfg.DatabaseDSN == "" {
		return nil, fmt.Errorf("DAYBLOCK_DB_DSN is required")
	}

	if cfg.RefreshInterval <= 0 {
		return nil, fmt.Errorf("REFRESH_INTERVAL_SECONDS must be positive, got %d", cfg.RefreshInterval)
	}

	return cfg, nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "dayblock.db"
	}
	return home + "/.local/share/dayblock/dayblock.db"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
