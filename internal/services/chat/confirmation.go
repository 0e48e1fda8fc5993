// File: internal/services/chat/confirmation.go
package chat

import (
	"regexp"
	"strings"
	"time"

	"github.com/iyunix/go-taskmate/internal/domain"
	"github.com/iyunix/go-taskmate/internal/services/tools"
)

var (
	reAffirmative = regexp.MustCompile(`^(?:y|yes|yeah|yep|yup|sure|ok|okay|confirm(?:ed)?|do it|go ahead|yes,? (?:please|delete it|do it)|please do|absolutely|definitely)[\s.!]*$`)
	reNegative    = regexp.MustCompile(`^(?:n|no|nope|nah|cancel|stop|don't|do not|never ?mind|keep it|no,? (?:thanks|thank you|keep it|don't))[\s.!]*$`)
)

// IsAffirmative reports whether message answers a confirmation prompt
// with yes.
func IsAffirmative(message string) bool {
	return reAffirmative.MatchString(strings.ToLower(strings.TrimSpace(message)))
}

// IsNegative reports whether message answers a confirmation prompt with no.
func IsNegative(message string) bool {
	return reNegative.MatchString(strings.ToLower(strings.TrimSpace(message)))
}

func newPendingDelete(task *domain.Task, now time.Time) *domain.PendingAction {
	return &domain.PendingAction{
		Tool:        string(tools.NameDeleteTask),
		TaskID:      task.ID,
		TaskTitle:   task.Title,
		RequestedAt: now.UTC(),
	}
}

func expired(action *domain.PendingAction, now time.Time, ttl time.Duration) bool {
	return now.Sub(action.RequestedAt) > ttl
}
