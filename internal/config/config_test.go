package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 10, cfg.HistoryWindow)
	assert.Equal(t, 10*time.Second, cfg.ToolTimeout)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.ConfirmDestructive)
	assert.InDelta(t, 0.7, cfg.SimilarityThreshold, 1e-9)
	assert.Equal(t, 10, cfg.ChatRateBurst)
	assert.Empty(t, cfg.LLMAPIKey)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_DSN", "postgres://localhost/taskmate")
	t.Setenv("TOOL_TIMEOUT", "2s")
	t.Setenv("CONFIRM_DESTRUCTIVE", "false")
	t.Setenv("LLM_API_KEY", "sk-test")

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 2*time.Second, cfg.ToolTimeout)
	assert.False(t, cfg.ConfirmDestructive)
	assert.Equal(t, "sk-test", cfg.LLMAPIKey)
}

func TestValidation(t *testing.T) {
	tests := map[string]map[string]string{
		"production without secret": {"ENV": "production"},
		"unknown driver":            {"DB_DRIVER": "mysql"},
		"zero window":               {"HISTORY_WINDOW": "0"},
		"threshold out of range":    {"SIMILARITY_THRESHOLD": "1.5"},
		"no burst":                  {"CHAT_RATE_BURST": "0"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := FromViper(viper.New())
			assert.Error(t, err)
		})
	}

	t.Run("production with secret", func(t *testing.T) {
		t.Setenv("ENV", "production")
		t.Setenv("JWT_SECRET_KEY", "s3cret")
		cfg, err := FromViper(viper.New())
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
	})
}
