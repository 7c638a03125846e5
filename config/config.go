// Package config loads the engine's runtime settings from the environment
// (with .env support) plus an optional yaml override file for the repair
// heuristic catalogue.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the engine configuration - all settings from .env
type Config struct {
	Port string `json:"port"`

	// Streaming settings
	StreamThresholdBytes int64 `json:"stream_threshold_bytes"` // Inputs above this size go through the streaming adapter

	// Result cache settings
	CacheTTL      time.Duration `json:"cache_ttl"`       // Per-entry expiry
	CacheMaxBytes int           `json:"cache_max_bytes"` // Total resident size cap

	// Repair settings
	RepairBudget             int      `json:"repair_budget"`              // Max strict-parse attempts per repair call
	DisabledRepairHeuristics []string `json:"disabled_repair_heuristics"` // Loaded from repair_overrides.yaml

	// Render settings
	IndentWidth int `json:"indent_width"` // Spaces per level for pretty output

	// Logging settings
	LogDir          string `json:"log_dir"`
	MinLogLevel     string `json:"min_log_level"`
	TruncateContent bool   `json:"truncate_content"` // Truncate document snippets in log lines
}

// GetDefaultConfig returns a default configuration for testing
func GetDefaultConfig() *Config {
	return &Config{
		Port:                 "3456",
		StreamThresholdBytes: 4 * 1024 * 1024, // 4MB before switching to streaming
		CacheTTL:             5 * time.Minute,
		CacheMaxBytes:        16 * 1024 * 1024,
		RepairBudget:         64,
		IndentWidth:          2,
		LogDir:               "logs",
		MinLogLevel:          "INFO",
		TruncateContent:      true,
	}
}

// LoadConfigWithEnv loads configuration from the environment, reading a
// .env file first when present, then applies repair_overrides.yaml.
func LoadConfigWithEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("⚠️ Warning: failed to load .env file: %v", err)
	}

	cfg := GetDefaultConfig()
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.LogDir = getEnv("LOG_DIR", cfg.LogDir)
	cfg.MinLogLevel = getEnv("MIN_LOG_LEVEL", cfg.MinLogLevel)
	cfg.TruncateContent = getEnvBool("TRUNCATE_LOGGED_CONTENT", cfg.TruncateContent)

	var err error
	if cfg.StreamThresholdBytes, err = getEnvInt64("STREAM_THRESHOLD_BYTES", cfg.StreamThresholdBytes); err != nil {
		return nil, err
	}
	ttlSeconds, err := getEnvInt64("CACHE_TTL_SECONDS", int64(cfg.CacheTTL/time.Second))
	if err != nil {
		return nil, err
	}
	cfg.CacheTTL = time.Duration(ttlSeconds) * time.Second
	maxBytes, err := getEnvInt64("CACHE_MAX_BYTES", int64(cfg.CacheMaxBytes))
	if err != nil {
		return nil, err
	}
	cfg.CacheMaxBytes = int(maxBytes)
	budget, err := getEnvInt64("REPAIR_BUDGET", int64(cfg.RepairBudget))
	if err != nil {
		return nil, err
	}
	cfg.RepairBudget = int(budget)
	indent, err := getEnvInt64("INDENT_WIDTH", int64(cfg.IndentWidth))
	if err != nil {
		return nil, err
	}
	cfg.IndentWidth = int(indent)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Load repair heuristic overrides from YAML
	disabled, err := LoadRepairOverrides("repair_overrides.yaml")
	if err != nil {
		log.Printf("⚠️ Warning: failed to load repair overrides from repair_overrides.yaml: %v", err)
	} else if len(disabled) > 0 {
		cfg.DisabledRepairHeuristics = disabled
		log.Printf("🔧 Disabled repair heuristics from overrides: %v", disabled)
	}

	return cfg, nil
}

// Validate checks that the loaded settings are usable
func (c *Config) Validate() error {
	if c.StreamThresholdBytes <= 0 {
		return fmt.Errorf("STREAM_THRESHOLD_BYTES must be positive, got %d", c.StreamThresholdBytes)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must be positive, got %v", c.CacheTTL)
	}
	if c.CacheMaxBytes <= 0 {
		return fmt.Errorf("CACHE_MAX_BYTES must be positive, got %d", c.CacheMaxBytes)
	}
	if c.RepairBudget <= 0 {
		return fmt.Errorf("REPAIR_BUDGET must be positive, got %d", c.RepairBudget)
	}
	if c.IndentWidth <= 0 || c.IndentWidth > 16 {
		return fmt.Errorf("INDENT_WIDTH must be between 1 and 16, got %d", c.IndentWidth)
	}
	return nil
}

// RepairOverridesYAML represents the structure of repair_overrides.yaml
type RepairOverridesYAML struct {
	DisabledHeuristics []string `yaml:"disabledHeuristics"`
}

// LoadRepairOverrides loads the list of disabled repair heuristics. A
// missing file is not an error; the catalogue simply stays complete.
func LoadRepairOverrides(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("📝 %s not found, using the full repair heuristic catalogue", path)
			return nil, nil
		}
		return nil, err
	}

	var overrides RepairOverridesYAML
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return overrides.DisabledHeuristics, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("⚠️ Warning: invalid boolean for %s: %q, using default %t", key, v, fallback)
		return fallback
	}
	return b
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q", key, v)
	}
	return n, nil
}
