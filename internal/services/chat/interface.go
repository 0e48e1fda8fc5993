// File: internal/services/chat/interface.go
package chat

import (
	"context"

	"github.com/iyunix/go-taskmate/internal/domain"
	"github.com/iyunix/go-taskmate/internal/services/intent"
	"github.com/iyunix/go-taskmate/internal/services/resolver"
	"github.com/iyunix/go-taskmate/internal/services/tools"
)

// IntentParser classifies a message given the recent conversation.
type IntentParser interface {
	Parse(ctx context.Context, message string, history []intent.Turn) intent.Intent
}

// TaskResolver maps a reference onto one of the caller's tasks.
type TaskResolver interface {
	Resolve(reference string, candidates []domain.Task) resolver.Resolution
}

// ToolRunner executes task tools and exposes the unaudited read used for
// reference resolution.
type ToolRunner interface {
	Execute(ctx context.Context, call tools.Call) tools.Result
	Candidates(ctx context.Context, userID string) ([]domain.Task, error)
}

// MessageProcessor handles one chat turn end to end.
type MessageProcessor interface {
	Process(ctx context.Context, req Request) (*Response, error)
}

// HistoryProvider exposes a user's stored conversations.
type HistoryProvider interface {
	ListConversations(ctx context.Context, userID string, limit, offset int) ([]domain.Conversation, int64, error)
	Messages(ctx context.Context, userID, conversationID string) ([]domain.Message, error)
	ToolCalls(ctx context.Context, userID, conversationID string) ([]domain.ToolCall, error)
	DeleteConversation(ctx context.Context, userID, conversationID string) error
}

// Service combines all chat capabilities
type Service interface {
	MessageProcessor
	HistoryProvider
}
