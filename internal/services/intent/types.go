// File: internal/services/intent/types.go
package intent

import (
	"context"
	"strings"
	"time"

	"github.com/iyunix/go-taskmate/internal/domain"
)

// Category is the classified purpose of a user message.
type Category string

const (
	CategoryCreate   Category = "CREATE"
	CategoryList     Category = "LIST"
	CategoryComplete Category = "COMPLETE"
	CategoryUpdate   Category = "UPDATE"
	CategoryDelete   Category = "DELETE"
	CategoryCasual   Category = "CASUAL"
	CategoryUnknown  Category = "UNKNOWN"
)

// IsMutation reports whether the category changes task state.
func (c Category) IsMutation() bool {
	switch c {
	case CategoryCreate, CategoryComplete, CategoryUpdate, CategoryDelete:
		return true
	}
	return false
}

// ParseCategory accepts a category name in any case.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	switch c {
	case CategoryCreate, CategoryList, CategoryComplete, CategoryUpdate,
		CategoryDelete, CategoryCasual, CategoryUnknown:
		return c, true
	}
	return CategoryUnknown, false
}

// Method records which classifier produced an intent.
type Method string

const (
	MethodRules Method = "rules"
	MethodLLM   Method = "llm"
)

// Missing names the required parameter a message failed to provide.
type Missing string

const (
	MissingNone   Missing = ""
	MissingTitle  Missing = "title"
	MissingTask   Missing = "task"
	MissingChange Missing = "change"
)

// Params holds everything extracted from a message. Which fields are set
// depends on the category.
type Params struct {
	Valid   bool
	Missing Missing

	// CREATE
	Title       string
	Description string
	Priority    domain.Priority
	DueDate     *time.Time

	// LIST
	CompletedFilter *bool
	PriorityFilter  domain.Priority

	// COMPLETE, UPDATE, DELETE
	Reference            string
	ReferenceFromHistory bool
	Completed            bool
	NewTitle             *string
	NewDescription       *string
}

// Intent is the parser's verdict on one message.
type Intent struct {
	Category   Category
	Params     Params
	Confidence float64
	Method     Method
}

// Turn is one prior message handed to the parser as context.
type Turn struct {
	Role    domain.Role
	Content string
}

// FallbackClassifier is consulted only when the rule battery cannot
// classify a message.
type FallbackClassifier interface {
	Classify(ctx context.Context, message string, history []Turn) (Category, float64, error)
}

// Logger defines the logging interface used by the parser
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}
