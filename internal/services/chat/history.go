// File: internal/services/chat/history.go
package chat

import (
	"context"

	"github.com/pkg/errors"

	"github.com/iyunix/go-taskmate/internal/domain"
	"github.com/iyunix/go-taskmate/internal/repository/conversation"
)

const maxPageSize = 100

func (o *Orchestrator) ListConversations(ctx context.Context, userID string, limit, offset int) ([]domain.Conversation, int64, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	convs, total, err := o.conversations.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, NewStorageError("list_conversations", "could not list conversations", err)
	}
	return convs, total, nil
}

// Messages returns the full ordered history of a conversation the user owns.
func (o *Orchestrator) Messages(ctx context.Context, userID, conversationID string) ([]domain.Message, error) {
	if err := o.authorize(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	msgs, err := o.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, NewStorageError("list_messages", "could not load messages", err)
	}
	return msgs, nil
}

// ToolCalls returns the audit trail of a conversation the user owns.
func (o *Orchestrator) ToolCalls(ctx context.Context, userID, conversationID string) ([]domain.ToolCall, error) {
	if err := o.authorize(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	calls, err := o.toolCalls.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, NewStorageError("list_tool_calls", "could not load tool calls", err)
	}
	return calls, nil
}

func (o *Orchestrator) DeleteConversation(ctx context.Context, userID, conversationID string) error {
	if err := o.conversations.Delete(ctx, conversationID, userID); err != nil {
		if errors.Is(err, conversation.ErrConversationNotFound) {
			return NewNotFoundError(userID, conversationID, err)
		}
		return NewStorageError("delete_conversation", "could not delete conversation", err)
	}
	o.logger.Info("Conversation deleted", "conversation_id", conversationID, "user_id", userID)
	return nil
}

func (o *Orchestrator) authorize(ctx context.Context, userID, conversationID string) error {
	if _, err := o.conversations.FindByIDAndUser(ctx, conversationID, userID); err != nil {
		if errors.Is(err, conversation.ErrConversationNotFound) {
			return NewNotFoundError(userID, conversationID, err)
		}
		return NewStorageError("load_conversation", "could not load conversation", err)
	}
	return nil
}
