// File: internal/repository/toolcall/interface.go
package toolcall

import (
	"context"

	"github.com/iyunix/go-taskmate/internal/domain"
)

// ToolCallRepository stores the audit trail of tool invocations.
type ToolCallRepository interface {
	CreatePending(ctx context.Context, call *domain.ToolCall) error
	Finalize(ctx context.Context, call *domain.ToolCall) error
	ListByConversation(ctx context.Context, conversationID string) ([]domain.ToolCall, error)
}
