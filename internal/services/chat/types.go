// File: internal/services/chat/types.go
package chat

import (
	"github.com/iyunix/go-taskmate/internal/services/intent"
	"github.com/iyunix/go-taskmate/internal/services/tools"
)

// Logger defines the logging interface used across chat services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// State is a step of the message pipeline, logged as it is entered.
type State string

const (
	StateReceived         State = "RECEIVED"
	StateHistoryLoaded    State = "HISTORY_LOADED"
	StateIntentClassified State = "INTENT_CLASSIFIED"
	StateToolInvoked      State = "TOOL_INVOKED"
	StatePersisted        State = "PERSISTED"
	StateResponded        State = "RESPONDED"
	StateFailed           State = "FAILED"
)

// Request is one inbound chat message. UserID comes from the authenticated
// session, never from the message body.
type Request struct {
	UserID         string
	Message        string
	ConversationID string // empty starts a new conversation
}

type Response struct {
	Reply          string
	ConversationID string
	Metadata       Metadata
}

type Metadata struct {
	Intent          intent.Category
	ToolCalled      *tools.Name
	Confidence      float64
	ExecutionTimeMS int64
}
