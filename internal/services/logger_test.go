package services_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-taskmate/internal/services"
)

func TestProductionLoggerWritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := services.NewLogger("taskmate", services.LoggerOptions{
		Environment: "production",
		Level:       "info",
		Output:      &buf,
	})

	logger.Info("turn persisted", "conversation_id", "c-1", "sequence", 3)
	logger.Debug("filtered out")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "taskmate", entry["service"])
	assert.Equal(t, "turn persisted", entry["message"])
	assert.Equal(t, "c-1", entry["conversation_id"])
	assert.EqualValues(t, 3, entry["sequence"])
}

func TestTestEnvironmentUsesNoOpLogger(t *testing.T) {
	logger := services.NewLogger("taskmate", services.LoggerOptions{Environment: "test"})
	_, ok := logger.(*services.NoOpLogger)
	assert.True(t, ok)
}
