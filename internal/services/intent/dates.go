// File: internal/services/intent/dates.go
package intent

import (
	"regexp"
	"strings"
	"time"
)

var (
	reDue         = regexp.MustCompile(`(?i)[,;]?\s*\b(?:due(?:\s+(?:on|by))?|by|on|before)\s+(today|tonight|tomorrow|next\s+week|(?:next\s+|this\s+)?(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday)|\d{4}-\d{2}-\d{2})(?:$|[^\w'’])`)
	reDueTrailing = regexp.MustCompile(`(?i)[,;]?\s+(today|tonight|tomorrow)\s*[.!]*$`)
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// extractDueDate finds a due-date phrase in text and returns the date, the
// text with the phrase removed, and whether a phrase was found.
func extractDueDate(text string, now time.Time) (*time.Time, string, bool) {
	if loc := reDue.FindStringSubmatchIndex(text); loc != nil {
		if due, ok := parseDue(text[loc[2]:loc[3]], now); ok {
			// The character after the phrase is matched but kept.
			return &due, text[:loc[0]] + text[loc[3]:], true
		}
	}
	if loc := reDueTrailing.FindStringSubmatchIndex(text); loc != nil {
		if due, ok := parseDue(text[loc[2]:loc[3]], now); ok {
			return &due, text[:loc[0]], true
		}
	}
	return nil, text, false
}

// parseDue resolves a relative or ISO date phrase to midnight of that day in
// now's location. A bare weekday means its next occurrence after today.
func parseDue(phrase string, now time.Time) (time.Time, bool) {
	phrase = strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch phrase {
	case "today", "tonight":
		return today, true
	case "tomorrow":
		return today.AddDate(0, 0, 1), true
	case "next week":
		return today.AddDate(0, 0, 7), true
	}

	if t, err := time.ParseInLocation("2006-01-02", phrase, now.Location()); err == nil {
		return t, true
	}

	this := strings.HasPrefix(phrase, "this ")
	name := strings.TrimPrefix(strings.TrimPrefix(phrase, "next "), "this ")
	wd, ok := weekdays[name]
	if !ok {
		return time.Time{}, false
	}

	days := (int(wd) - int(today.Weekday()) + 7) % 7
	if days == 0 && !this {
		days = 7
	}
	return today.AddDate(0, 0, days), true
}
