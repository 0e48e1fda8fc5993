// File: internal/services/intent/context.go
package intent

import (
	"regexp"

	"github.com/iyunix/go-taskmate/internal/domain"
)

var reAssistantTitle = regexp.MustCompile(`(?:^|[\s(])'(.+?)'(?:$|[\s.,!?;:)])`)

// ReferenceFromHistory finds the task most recently mentioned in the
// conversation. Assistant replies quote the task they acted on in single
// quotes; user turns may name a task number. Returns "" when nothing in the
// window refers to a task.
func ReferenceFromHistory(history []Turn) string {
	for i := len(history) - 1; i >= 0; i-- {
		turn := history[i]
		switch turn.Role {
		case domain.RoleAssistant:
			matches := reAssistantTitle.FindAllStringSubmatch(turn.Content, -1)
			if len(matches) > 0 {
				return matches[len(matches)-1][1]
			}
		case domain.RoleUser:
			if id := idFrom(turn.Content); id != "" {
				return id
			}
		}
	}
	return ""
}

// IsPronoun reports whether ref is a stand-in such as "it" or "that one"
// rather than a task title.
func IsPronoun(ref string) bool {
	return pronouns[ref]
}
