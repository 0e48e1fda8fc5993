package intent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iyunix/go-taskmate/internal/domain"
	"github.com/iyunix/go-taskmate/internal/services/intent"
)

func TestReferenceFromHistory(t *testing.T) {
	tests := []struct {
		name    string
		history []intent.Turn
		want    string
	}{
		{name: "empty", want: ""},
		{
			name: "last quoted title wins",
			history: []intent.Turn{
				{Role: domain.RoleAssistant, Content: "Updated 'Buy milk' to 'Buy oat milk'."},
			},
			want: "Buy oat milk",
		},
		{
			name: "apostrophes in prose are ignored",
			history: []intent.Turn{
				{Role: domain.RoleAssistant, Content: "Okay, I won't delete 'Call mom'."},
			},
			want: "Call mom",
		},
		{
			name: "newer user task number beats older assistant title",
			history: []intent.Turn{
				{Role: domain.RoleAssistant, Content: "Marked 'Buy milk' as done."},
				{Role: domain.RoleUser, Content: "what about task 4"},
			},
			want: "4",
		},
		{
			name: "unquoted list reply is skipped",
			history: []intent.Turn{
				{Role: domain.RoleAssistant, Content: "Deleted task 'Walk dog'."},
				{Role: domain.RoleAssistant, Content: "You have 2 tasks:\n1. [ ] Buy milk (task 1)\n2. [x] Call mom (task 2)"},
			},
			want: "Walk dog",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, intent.ReferenceFromHistory(tt.history))
		})
	}
}

func TestIsPronoun(t *testing.T) {
	for _, ref := range []string{"it", "that one", "the last one", ""} {
		assert.True(t, intent.IsPronoun(ref), ref)
	}
	assert.False(t, intent.IsPronoun("buy milk"))
}
