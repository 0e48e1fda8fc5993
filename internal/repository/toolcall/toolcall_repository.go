// File: internal/repository/toolcall/toolcall_repository.go
package toolcall

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/iyunix/go-taskmate/internal/domain"
)

var ErrToolCallNotFound = errors.New("tool call not found")

type gormToolCallRepository struct {
	db *gorm.DB
}

func NewToolCallRepository(db *gorm.DB) ToolCallRepository {
	return &gormToolCallRepository{db: db}
}

// CreatePending inserts the audit row right before a tool executes.
func (r *gormToolCallRepository) CreatePending(ctx context.Context, call *domain.ToolCall) error {
	if call == nil || call.ConversationID == "" || call.ToolName == "" {
		return errors.New("tool call requires a conversation and a tool name")
	}
	call.Status = domain.ToolCallPending
	call.MessageID = nil
	call.Output = nil
	call.CompletedAt = nil
	if call.CreatedAt.IsZero() {
		call.CreatedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(call).Error; err != nil {
		log.Error().Err(err).Str("repository", "tool_call").Str("tool", call.ToolName).Msg("create failed")
		return errors.Wrap(err, "database error creating tool call")
	}
	return nil
}

// Finalize records the outcome of a pending call without linking it to a
// message. It is the fallback when the assistant reply could not be written.
func (r *gormToolCallRepository) Finalize(ctx context.Context, call *domain.ToolCall) error {
	if call == nil || call.ID == 0 {
		return ErrToolCallNotFound
	}
	result := r.db.WithContext(ctx).
		Model(&domain.ToolCall{}).
		Where("id = ? AND status = ?", call.ID, domain.ToolCallPending).
		Updates(map[string]interface{}{
			"status":            call.Status,
			"output":            call.Output,
			"error_message":     call.ErrorMessage,
			"execution_time_ms": call.ExecutionTimeMS,
			"completed_at":      call.CompletedAt,
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, "database error finalizing tool call")
	}
	if result.RowsAffected == 0 {
		return ErrToolCallNotFound
	}
	return nil
}

func (r *gormToolCallRepository) ListByConversation(ctx context.Context, conversationID string) ([]domain.ToolCall, error) {
	var calls []domain.ToolCall
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("id ASC").
		Find(&calls).Error
	if err != nil {
		return nil, errors.Wrap(err, "database error listing tool calls")
	}
	return calls, nil
}
