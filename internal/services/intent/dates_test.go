package intent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDue(t *testing.T) {
	wednesday := time.Date(2025, 6, 11, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		phrase string
		want   time.Time
	}{
		{"today", time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)},
		{"tomorrow", time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)},
		{"next week", time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC)},
		{"friday", time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC)},
		{"Monday", time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)},
		{"wednesday", time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC)},
		{"this wednesday", time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)},
		{"2025-12-24", time.Date(2025, 12, 24, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			got, ok := parseDue(tt.phrase, wednesday)
			assert.True(t, ok)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}

	_, ok := parseDue("someday", wednesday)
	assert.False(t, ok)
}

func TestExtractDueDateStripsPhrase(t *testing.T) {
	now := time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC)

	due, rest, ok := extractDueDate("submit report by friday", now)
	assert.True(t, ok)
	assert.Equal(t, "submit report", rest)
	assert.Equal(t, 13, due.Day())

	_, rest, ok = extractDueDate("water plants", now)
	assert.False(t, ok)
	assert.Equal(t, "water plants", rest)
}

func TestExtractDueDateIgnoresPossessives(t *testing.T) {
	now := time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC)

	due, rest, ok := extractDueDate("check on friday's report", now)
	assert.False(t, ok)
	assert.Nil(t, due)
	assert.Equal(t, "check on friday's report", rest)

	due, rest, ok = extractDueDate("check the report on friday, then file it", now)
	assert.True(t, ok)
	assert.Equal(t, "check the report, then file it", rest)
	assert.Equal(t, 13, due.Day())
}
