// File: internal/services/chat/title.go
package chat

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	defaultTitle   = "New conversation"
	maxTitleRunes  = 50
	titleWordLimit = 5
)

var (
	reGreeting   = regexp.MustCompile(`^(?:hi|hello|hey|heya|hiya|yo|howdy|greetings|good\s+(?:morning|afternoon|evening|day))\b`)
	reAddTask    = regexp.MustCompile(`\b(?:add|create|new)\b.*\b(?:task|todo|reminder)|\bremind\b`)
	reCompleting = regexp.MustCompile(`\b(?:complete|finish|finished|done|mark)\b`)
	reUpdating   = regexp.MustCompile(`\b(?:update|change|edit|rename|modify)\b`)
	reDeleting   = regexp.MustCompile(`\b(?:delete|remove|erase|get rid of)\b`)
	reViewing    = regexp.MustCompile(`\b(?:show|list|view|see|display|what)\b`)
)

var titleStopWords = map[string]bool{
	"task": true, "tasks": true, "create": true, "please": true,
	"could": true, "would": true, "remind": true,
}

// DeriveTitle names a conversation after its first message.
func DeriveTitle(first string) string {
	text := strings.Join(strings.Fields(first), " ")
	lower := strings.ToLower(text)
	if utf8.RuneCountInString(text) < 10 || reGreeting.MatchString(lower) {
		return defaultTitle
	}

	switch {
	case reAddTask.MatchString(lower):
		for _, w := range strings.Fields(text) {
			w = strings.Trim(w, `.,!?;:"'`)
			if utf8.RuneCountInString(w) > 4 && !titleStopWords[strings.ToLower(w)] {
				return "Add task: " + capitalize(w) + "..."
			}
		}
		return "Add new task"
	case reCompleting.MatchString(lower):
		return "Complete tasks"
	case reUpdating.MatchString(lower):
		return "Update tasks"
	case reDeleting.MatchString(lower):
		return "Delete tasks"
	case reViewing.MatchString(lower) && strings.Contains(lower, "task"):
		return "View tasks"
	}

	words := strings.Fields(text)
	if len(words) > titleWordLimit {
		words = words[:titleWordLimit]
	}
	return capitalize(truncate(strings.Join(words, " "), maxTitleRunes))
}

// truncate cuts s to at most max runes, marking the cut with "...".
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max-3])) + "..."
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
