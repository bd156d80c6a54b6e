package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/billd/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"REDIS_URL":            "redis://localhost:6379/0",
		"APP_ENV":              "",
		"PORT":                 "",
		"CORS_ALLOWED_ORIGINS": "",
		"OBS_LOG_FORMAT":       "",
		"OBS_LOG_LEVEL":        "",
	})
	require.NoError(t, err)
	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, "billd", cfg.MetricsNamespace)
	require.True(t, cfg.MetricsEnabled)
}

func TestLoadRequiresRedisURL(t *testing.T) {
	_, err := config.LoadForTests(map[string]string{"REDIS_URL": ""})
	require.Error(t, err)
}

func TestCORSOriginsSplitAndTrimmed(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"REDIS_URL":            "redis://localhost:6379/0",
		"CORS_ALLOWED_ORIGINS": "https://a.example , https://b.example,",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}
