package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	assert.Equal(t, "3456", cfg.Port)
	assert.Equal(t, int64(4*1024*1024), cfg.StreamThresholdBytes)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 16*1024*1024, cfg.CacheMaxBytes)
	assert.Equal(t, 64, cfg.RepairBudget)
	assert.Equal(t, 2, cfg.IndentWidth)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("STREAM_THRESHOLD_BYTES", "1048576")
	t.Setenv("CACHE_TTL_SECONDS", "10")
	t.Setenv("CACHE_MAX_BYTES", "2048")
	t.Setenv("REPAIR_BUDGET", "8")
	t.Setenv("INDENT_WIDTH", "4")
	t.Setenv("MIN_LOG_LEVEL", "DEBUG")
	t.Setenv("TRUNCATE_LOGGED_CONTENT", "false")

	cfg, err := LoadConfigWithEnv()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, int64(1048576), cfg.StreamThresholdBytes)
	assert.Equal(t, 10*time.Second, cfg.CacheTTL)
	assert.Equal(t, 2048, cfg.CacheMaxBytes)
	assert.Equal(t, 8, cfg.RepairBudget)
	assert.Equal(t, 4, cfg.IndentWidth)
	assert.Equal(t, "DEBUG", cfg.MinLogLevel)
	assert.False(t, cfg.TruncateContent)
}

func TestLoadConfigWithEnvRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric threshold", "STREAM_THRESHOLD_BYTES", "lots"},
		{"negative budget", "REPAIR_BUDGET", "-5"},
		{"zero ttl", "CACHE_TTL_SECONDS", "0"},
		{"indent too wide", "INDENT_WIDTH", "99"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := LoadConfigWithEnv()
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.CacheMaxBytes = 0
	assert.Error(t, cfg.Validate())

	cfg = GetDefaultConfig()
	cfg.IndentWidth = 0
	assert.Error(t, cfg.Validate())

	cfg = GetDefaultConfig()
	cfg.StreamThresholdBytes = -1
	assert.Error(t, cfg.Validate())
}

func TestLoadRepairOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "repair_overrides.yaml")
	content := "disabledHeuristics:\n  - TrailingCommaRemoval\n  - KeyQuoting\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	disabled, err := LoadRepairOverrides(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"TrailingCommaRemoval", "KeyQuoting"}, disabled)
}

func TestLoadRepairOverridesMissingFile(t *testing.T) {
	disabled, err := LoadRepairOverrides(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.NoError(t, err)
	assert.Nil(t, disabled)
}

func TestLoadRepairOverridesMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "repair_overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte("disabledHeuristics: {not a list"), 0644))

	_, err := LoadRepairOverrides(path)
	assert.Error(t, err)
}
