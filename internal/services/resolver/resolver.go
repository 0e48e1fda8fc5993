// File: internal/services/resolver/resolver.go
package resolver

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/iyunix/go-taskmate/internal/domain"
)

// Outcome is the result class of a resolution.
type Outcome string

const (
	Resolved  Outcome = "RESOLVED"
	NotFound  Outcome = "NOT_FOUND"
	Ambiguous Outcome = "AMBIGUOUS"
)

const (
	DefaultThreshold = 0.7
	DefaultEpsilon   = 0.02
)

// Resolution describes how a reference mapped onto a user's tasks.
type Resolution struct {
	Outcome Outcome
	// Task is set only when Outcome is Resolved.
	Task *domain.Task
	// Candidates holds the tied matches when Outcome is Ambiguous.
	Candidates []domain.Task
	Score      float64
}

// Resolver maps a free-text or numeric reference to exactly one task.
type Resolver struct {
	threshold float64
	epsilon   float64
}

type Option func(*Resolver)

// WithThreshold sets the minimum similarity for a title match.
func WithThreshold(t float64) Option {
	return func(r *Resolver) { r.threshold = t }
}

// WithEpsilon sets how close to the best score a second match must be to
// make the reference ambiguous.
func WithEpsilon(e float64) Option {
	return func(r *Resolver) { r.epsilon = e }
}

func New(opts ...Option) *Resolver {
	r := &Resolver{threshold: DefaultThreshold, epsilon: DefaultEpsilon}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var reID = regexp.MustCompile(`(?i)^(?:task\s*)?#?\s*(\d+)$`)

// ParseID reads "5", "#5" or "task 5".
func ParseID(reference string) (uint, bool) {
	m := reID.FindStringSubmatch(strings.TrimSpace(reference))
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// Resolve picks the task reference points at. candidates must already be
// limited to the caller's own tasks.
func (r *Resolver) Resolve(reference string, candidates []domain.Task) Resolution {
	if id, ok := ParseID(reference); ok {
		for i := range candidates {
			if candidates[i].ID == id {
				t := candidates[i]
				return Resolution{Outcome: Resolved, Task: &t, Score: 1}
			}
		}
		return Resolution{Outcome: NotFound}
	}

	ref := Normalize(reference)
	if ref == "" {
		return Resolution{Outcome: NotFound}
	}

	type scored struct {
		task  domain.Task
		score float64
	}
	var matches []scored
	for _, c := range candidates {
		if s := Similarity(ref, Normalize(c.Title)); s >= r.threshold {
			matches = append(matches, scored{task: c, score: s})
		}
	}
	if len(matches) == 0 {
		return Resolution{Outcome: NotFound}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	best := matches[0]

	var tied []domain.Task
	for _, m := range matches {
		if best.score-m.score <= r.epsilon {
			tied = append(tied, m.task)
		}
	}
	if len(tied) > 1 {
		return Resolution{Outcome: Ambiguous, Candidates: tied, Score: best.score}
	}
	t := best.task
	return Resolution{Outcome: Resolved, Task: &t, Score: best.score}
}

// Normalize lowercases s, turns punctuation into spaces and collapses runs
// of whitespace.
func Normalize(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

// Similarity scores two normalized strings in [0, 1]. It is the larger of
// the edit-distance ratio and a containment score that rewards a reference
// whose every word appears in the title.
func Similarity(ref, title string) float64 {
	if ref == "" || title == "" {
		return 0
	}
	if ref == title {
		return 1
	}
	return max(editRatio(ref, title), containment(ref, title))
}

func editRatio(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

func containment(ref, title string) float64 {
	titleWords := strings.Fields(title)
	set := make(map[string]bool, len(titleWords))
	for _, w := range titleWords {
		set[w] = true
	}
	refWords := strings.Fields(ref)
	for _, w := range refWords {
		if !set[w] {
			return 0
		}
	}
	coverage := float64(len(refWords)) / float64(len(titleWords))
	return 0.75 + 0.25*coverage
}
