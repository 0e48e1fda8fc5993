// File: internal/services/intent/extract.go
package intent

import (
	"regexp"
	"strings"

	"github.com/iyunix/go-taskmate/internal/domain"
)

var (
	reDoubleQuoted = regexp.MustCompile(`["“]([^"”]+)["”]`)
	reSingleQuoted = regexp.MustCompile(`(?:^|[\s(])'(.+?)'(?:$|[\s.,!?;:)])`)

	createTitlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bremind\s+me\s+to\s+(.+)$`),
		regexp.MustCompile(`(?i)\b(?:create|add|make|new)\b(?:\s+(?:a|an|another|new|one\s+more))*(?:\s+(?:high|medium|low|urgent)(?:\s*-?\s*priority)?)?\s+(?:task|todo|to-do|reminder)s?\b\s*(?:[:\-]\s*|(?:to|called|named|titled|for|that\s+says|saying)\s+)?(.*)$`),
		regexp.MustCompile(`(?i)^(?:please\s+)?(?:add|create)\s+(.+?)(?:\s+to\s+(?:my\s+)?(?:list|tasks|task\s+list|to-?do\s+list|todos))?$`),
		regexp.MustCompile(`(?i)\b(?:i\s+need\s+to|i\s+have\s+to|i\s+must|don't\s+let\s+me\s+forget\s+to)\s+(.+)$`),
	}

	reDescription   = regexp.MustCompile(`(?i)[,;]?\s*(?:\bwith\s+(?:the\s+|a\s+)?(?:description|notes?|details?)\s*[:=\-]?\s*|\b(?:description|notes?|details?)\s*[:=]\s*)(.+)$`)
	rePriority      = regexp.MustCompile(`(?i)\b(high|medium|low)\s*-?\s*priority\b|\bpriority\s*[:=]?\s*(high|medium|low)\b`)
	reUrgent        = regexp.MustCompile(`(?i)\b(?:urgent(?:ly)?|asap|important)\b`)
	rePriorityStrip = regexp.MustCompile(`(?i)[,;]?\s*(?:with\s+|as\s+)?(?:a\s+)?(?:(?:high|medium|low)\s*-?\s*priority|priority\s*[:=]?\s*(?:high|medium|low)|urgent(?:ly)?|asap)\b`)

	reCompletedFalse = regexp.MustCompile(`\b(?:pending|incomplete|unfinished|uncompleted|open|remaining|left|outstanding|not\s+done|not\s+completed|active)\b`)
	reCompletedTrue  = regexp.MustCompile(`\b(?:completed|done|finished)\b`)
	reUndo           = regexp.MustCompile(`\b(?:undo|reopen|uncomplete|un-complete|incomplete|not\s+done|undone|not\s+finished|uncompleted|pending)\b`)

	reTaskID = regexp.MustCompile(`(?i)\b(?:task|todo|item|number|no\.?)\s*#?\s*(\d+)\b|#(\d+)\b|^\s*(\d+)\s*$`)

	completeRefPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:mark|set|check\s+off|tick\s+off|cross\s+off)\s+(.+?)\s+(?:as\s+)?(?:done|complete|completed|finished|incomplete|not\s+done|undone|pending|uncompleted)\b`),
		regexp.MustCompile(`(?i)\b(?:mark|set|check\s+off|tick\s+off|cross\s+off)\s+(.+)$`),
		regexp.MustCompile(`(?i)^(?:please\s+)?(?:complete|finish)\s+(.+)$`),
		regexp.MustCompile(`(?i)\b(?:finished|completed|done\s+with)\s+(.+)$`),
		regexp.MustCompile(`(?i)\b(?:undo|reopen|uncomplete|un-complete)\s+(?:(?:the\s+)?completion\s+(?:of|for|on)\s+)?(.+)$`),
		regexp.MustCompile(`(?i)^(.+?)\s+is\s+(?:done|finished|complete)\b`),
	}

	reUpdateQuotedPair  = regexp.MustCompile(`["“]([^"”]+)["”]\s+to\s+["“]([^"”]+)["”]`)
	reUpdateSinglePair  = regexp.MustCompile(`'([^']+)'\s+to\s+'([^']+)'`)
	reUpdateDescOf      = regexp.MustCompile(`(?i)\b(?:change|update|modify|edit|set)\s+(?:the\s+)?(?:description|notes?|details?)\s+(?:of|for|on)\s+(.+?)\s+to\s+(.+)$`)
	reUpdateDescPossess = regexp.MustCompile(`(?i)\b(?:change|update|modify|edit|set)\s+(.+?)(?:'s|’s)?\s+(?:description|notes?|details?)\s+to\s+(.+)$`)
	reUpdateDescOnly    = regexp.MustCompile(`(?i)\b(?:description|notes?|details?)\s+to\s+(.+)$`)
	reUpdateTitle       = regexp.MustCompile(`(?i)\b(?:change|update|modify|edit|rename)\s+(.+?)\s+to\s+(.+)$`)
	reUpdateRefOnly     = regexp.MustCompile(`(?i)^(?:please\s+)?(?:change|update|modify|edit|rename)\s+(.+)$`)

	deleteRefPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bget\s+rid\s+of\s+(.+)$`),
		regexp.MustCompile(`(?i)\b(?:delete|remove|erase|drop|trash)\s+(.+)$`),
	}

	reRefTrailing = regexp.MustCompile(`(?i)(?:\s+(?:from|off|in|on)\s+(?:my\s+|the\s+)?(?:list|tasks|task\s+list|to-?do\s+list|todos)|\s+(?:please|pls|now|for\s+me)|\s+as\s+(?:done|complete|completed|finished)|\s+(?:task|todo|item))+$`)
	reRefLeading  = regexp.MustCompile(`(?i)^(?:(?:the|my|a)\s+)?(?:(?:title|name)\s+of\s+)?(?:(?:the|my)\s+)?(?:(?:task|todo|item)\s+)?(?:(?:called|named|titled|about)\s+)?`)
)

var pronouns = map[string]bool{
	"it": true, "that": true, "this": true, "that one": true, "this one": true,
	"the last one": true, "last one": true, "the task": true, "that task": true,
	"this task": true, "the one": true, "same one": true, "the same one": true,
	"the same": true, "it again": true, "the": true, "its": true, "my": true,
	"": true,
}

// quoted returns the first quoted span in text, if any.
func quoted(text string) string {
	if m := reDoubleQuoted.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := reSingleQuoted.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func trimPunct(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'“”‘’`)
	s = strings.TrimRight(s, " .!?,;:")
	return strings.TrimSpace(s)
}

func extractPriority(lower string) domain.Priority {
	if m := rePriority.FindStringSubmatch(lower); m != nil {
		value := m[1]
		if value == "" {
			value = m[2]
		}
		if p, ok := domain.ParsePriority(value); ok {
			return p
		}
	}
	if reUrgent.MatchString(lower) {
		return domain.PriorityHigh
	}
	return domain.PriorityNone
}

// extractCreate fills title, description, priority and due date.
func (p *Parser) extractCreate(text, lower string) Params {
	params := Params{Priority: extractPriority(lower)}

	title := quoted(text)
	if title == "" {
		for _, re := range createTitlePatterns {
			if m := re.FindStringSubmatch(text); m != nil {
				title = m[1]
				break
			}
		}
	}

	if m := reDescription.FindStringSubmatchIndex(title); m != nil {
		params.Description = trimPunct(title[m[2]:m[3]])
		title = title[:m[0]]
	}
	if due, rest, ok := extractDueDate(title, p.now()); ok {
		params.DueDate = due
		title = rest
	} else if due, _, ok := extractDueDate(text, p.now()); ok {
		params.DueDate = due
	}
	title = rePriorityStrip.ReplaceAllString(title, "")
	title = strings.TrimPrefix(strings.TrimSpace(title), "to ")
	title = trimPunct(title)

	params.Title = title
	params.Valid = title != ""
	if !params.Valid {
		params.Missing = MissingTitle
	}
	return params
}

func extractList(lower string) Params {
	params := Params{Valid: true, PriorityFilter: extractPriority(lower)}
	switch {
	case reCompletedFalse.MatchString(lower):
		v := false
		params.CompletedFilter = &v
	case reCompletedTrue.MatchString(lower):
		v := true
		params.CompletedFilter = &v
	}
	return params
}

func extractComplete(text, lower string) Params {
	params := Params{Completed: !reUndo.MatchString(lower)}
	params.Reference = referenceFrom(text, completeRefPatterns)
	return params
}

func extractUpdate(text string) Params {
	var params Params
	set := func(ref, title, desc string) {
		params.Reference = ref
		if t := trimPunct(title); t != "" {
			params.NewTitle = &t
		}
		if d := trimPunct(desc); d != "" {
			params.NewDescription = &d
		}
	}

	if m := reUpdateQuotedPair.FindStringSubmatch(text); m != nil {
		set(m[1], m[2], "")
	} else if m := reUpdateSinglePair.FindStringSubmatch(text); m != nil {
		set(m[1], m[2], "")
	} else if m := reUpdateDescOf.FindStringSubmatch(text); m != nil {
		set(m[1], "", m[2])
	} else if m := reUpdateDescPossess.FindStringSubmatch(text); m != nil {
		set(m[1], "", m[2])
	} else if m := reUpdateDescOnly.FindStringSubmatch(text); m != nil {
		set("", "", m[1])
	} else if m := reUpdateTitle.FindStringSubmatch(text); m != nil {
		set(m[1], m[2], "")
	} else if m := reUpdateRefOnly.FindStringSubmatch(text); m != nil {
		set(m[1], "", "")
	}

	params.Reference = cleanReference(params.Reference)
	if params.Reference == "" {
		params.Reference = idFrom(text)
	}
	return params
}

func extractDelete(text string) Params {
	return Params{Reference: referenceFrom(text, deleteRefPatterns)}
}

// referenceFrom prefers a quoted title, then an explicit task number, then
// the phrase captured by the first matching pattern.
func referenceFrom(text string, patterns []*regexp.Regexp) string {
	if q := quoted(text); q != "" {
		return q
	}
	var phrase string
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			phrase = m[1]
			break
		}
	}
	if id := idFrom(phrase); id != "" {
		return id
	}
	ref := cleanReference(phrase)
	if ref == "" && phrase == "" {
		return idFrom(text)
	}
	return ref
}

// cleanReference strips filler words around a task reference and maps
// pronouns to the empty string.
func cleanReference(phrase string) string {
	ref := trimPunct(phrase)
	if pronouns[strings.ToLower(ref)] {
		return ""
	}
	if id := idFrom(ref); id != "" {
		return id
	}
	ref = reRefTrailing.ReplaceAllString(ref, "")
	ref = reRefLeading.ReplaceAllString(ref, "")
	ref = trimPunct(ref)
	if pronouns[strings.ToLower(ref)] {
		return ""
	}
	return ref
}

// idFrom returns the task number mentioned in text, or "".
func idFrom(text string) string {
	m := reTaskID.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}
