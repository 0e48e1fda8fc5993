package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-taskmate/internal/auth"
	"github.com/iyunix/go-taskmate/internal/config"
	"github.com/iyunix/go-taskmate/internal/database/dbtest"
	"github.com/iyunix/go-taskmate/internal/services"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecretKey:        "app-secret",
		DBDriver:            "sqlite",
		HistoryWindow:       10,
		ToolTimeout:         5 * time.Second,
		RequestTimeout:      10 * time.Second,
		ConfirmDestructive:  true,
		SimilarityThreshold: 0.7,
		ChatRatePerSecond:   0.01,
		ChatRateBurst:       2,
	}
}

func TestInitializeApplication(t *testing.T) {
	cfg := testConfig()
	app, err := InitializeApplication(cfg, &services.NoOpLogger{}, dbtest.NewSQLite(t))
	require.NoError(t, err)
	t.Cleanup(app.Limiter.Close)

	router := app.Router()
	tok, err := auth.GenerateJWT("alice", []byte(cfg.JWTSecretKey), time.Hour)
	require.NoError(t, err)

	send := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"show my tasks"}`))
		r.Header.Set("Authorization", "Bearer "+tok)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		return w
	}

	first := send()
	require.Equal(t, http.StatusOK, first.Code)
	assert.Contains(t, first.Body.String(), "You have no tasks.")

	send()
	assert.Equal(t, http.StatusTooManyRequests, send().Code)
}

func TestParserFallbackIsOptional(t *testing.T) {
	cfg := testConfig()
	assert.False(t, ProvideAIConfig(cfg).Enabled())

	cfg.LLMAPIKey = "sk-test"
	cfg.LLMModel = "small-model"
	cfg.LLMTimeout = 2 * time.Second
	aiConfig := ProvideAIConfig(cfg)
	assert.True(t, aiConfig.Enabled())
	assert.Equal(t, "small-model", aiConfig.Model)
	assert.Equal(t, 2*time.Second, aiConfig.Timeout)

	parser, err := ProvideParser(cfg, &services.NoOpLogger{})
	require.NoError(t, err)
	assert.NotNil(t, parser)
}
