// File: internal/repository/message/interface.go
package message

import (
	"context"

	"github.com/iyunix/go-taskmate/internal/domain"
)

// MessageRepository persists conversation turns. Sequence numbers are
// assigned here, never by callers.
type MessageRepository interface {
	// Append stores a message with the next free sequence number.
	Append(ctx context.Context, conversationID string, role domain.Role, content string) (*domain.Message, error)
	// AppendWithToolCall stores a message and, in the same transaction,
	// links and finalizes the tool call that produced it.
	AppendWithToolCall(ctx context.Context, conversationID string, role domain.Role, content string, call *domain.ToolCall) (*domain.Message, error)
	// Recent returns up to limit of the latest messages in ascending order.
	Recent(ctx context.Context, conversationID string, limit int) ([]domain.Message, error)
	ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error)
}
