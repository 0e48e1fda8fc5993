// File: internal/services/intent/parser.go
package intent

import (
	"context"
	"strings"
	"time"
)

const (
	// MinConfidence is the score a rule must reach to classify a message.
	MinConfidence = 0.5
	// UnknownConfidence is reported for messages no rule matched.
	UnknownConfidence = 0.3
)

// Parser turns a free-form message into an Intent. It holds no per-user
// state and is safe for concurrent use.
type Parser struct {
	fallback FallbackClassifier
	now      func() time.Time
	logger   Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithFallback sets a classifier consulted for messages the rules leave
// UNKNOWN.
func WithFallback(f FallbackClassifier) Option {
	return func(p *Parser) { p.fallback = f }
}

// WithClock overrides the clock used to resolve relative due dates.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

func WithLogger(l Logger) Option {
	return func(p *Parser) { p.logger = l }
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Classify scores lower against every rule and returns the winning category.
// Ties go to the category with the higher rank, then to battery order.
func (p *Parser) Classify(lower string) (Category, float64) {
	best, bestScore := CategoryUnknown, 0.0
	for _, m := range battery {
		score := m.score(lower)
		if score == 0 {
			continue
		}
		if score > bestScore || (score == bestScore && rank(m.category) > rank(best)) {
			best, bestScore = m.category, score
		}
	}
	if bestScore < MinConfidence {
		return CategoryUnknown, UnknownConfidence
	}
	return best, bestScore
}

// Parse classifies message and extracts its parameters. history is the
// recent conversation, oldest first, used to resolve "it" and "that one".
func (p *Parser) Parse(ctx context.Context, message string, history []Turn) Intent {
	text := Normalize(message)
	lower := strings.ToLower(text)

	category, confidence := p.Classify(lower)
	method := MethodRules

	if category == CategoryUnknown && p.fallback != nil {
		c, conf, err := p.fallback.Classify(ctx, text, history)
		switch {
		case err != nil:
			if p.logger != nil {
				p.logger.Warn("Fallback classification failed", "error", err)
			}
		case c != CategoryUnknown:
			category, confidence, method = c, conf, MethodLLM
		}
	}

	return Intent{
		Category:   category,
		Params:     p.extract(category, text, lower, history),
		Confidence: confidence,
		Method:     method,
	}
}

func (p *Parser) extract(category Category, text, lower string, history []Turn) Params {
	var params Params
	switch category {
	case CategoryCreate:
		return p.extractCreate(text, lower)
	case CategoryList:
		return extractList(lower)
	case CategoryComplete:
		params = extractComplete(text, lower)
	case CategoryUpdate:
		params = extractUpdate(text)
	case CategoryDelete:
		params = extractDelete(text)
	default:
		return Params{Valid: true}
	}

	if params.Reference == "" {
		if ref := ReferenceFromHistory(history); ref != "" {
			params.Reference = ref
			params.ReferenceFromHistory = true
		}
	}
	switch {
	case params.Reference == "":
		params.Missing = MissingTask
	case category == CategoryUpdate && params.NewTitle == nil && params.NewDescription == nil:
		params.Missing = MissingChange
	default:
		params.Valid = true
	}
	return params
}
