// File: internal/services/chat/errors.go
package chat

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeStorage    ErrorType = "STORAGE"
)

var (
	ErrMessageRequired = errors.New("message is required")
	ErrMessageTooLong  = errors.New("message is too long")
)

type ChatError struct {
	Type           ErrorType
	Operation      string
	Message        string
	ConversationID string
	UserID         string
	Cause          error
}

func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("chat %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("chat %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ChatError) Unwrap() error {
	return e.Cause
}

func NewConfigError(operation, msg string) *ChatError {
	return &ChatError{Type: ErrTypeConfig, Operation: operation, Message: msg}
}

func NewValidationError(operation string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeValidation, Operation: operation, Message: cause.Error(), Cause: cause}
}

func NewNotFoundError(userID, conversationID string, cause error) *ChatError {
	return &ChatError{
		Type:           ErrTypeNotFound,
		Operation:      "authorization",
		Message:        "conversation not found",
		UserID:         userID,
		ConversationID: conversationID,
		Cause:          cause,
	}
}

func NewStorageError(operation, msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeStorage, Operation: operation, Message: msg, Cause: cause}
}

// IsType reports whether err is a ChatError of type t.
func IsType(err error, t ErrorType) bool {
	var chatErr *ChatError
	return errors.As(err, &chatErr) && chatErr.Type == t
}
