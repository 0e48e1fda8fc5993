package intent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iyunix/go-taskmate/internal/services/intent"
)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"  show   my\ttasks ":              "show my tasks",
		"*delete* the **old** task":        "delete the old task",
		"add `buy milk`":                   "add buy milk",
		"see [my list](http://example.com)": "see my list",
		"line one\nline two":               "line one line two",
	}
	for in, want := range tests {
		assert.Equal(t, want, intent.Normalize(in), in)
	}
}
