// File: internal/repository/message/message_repository.go
package message

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/iyunix/go-taskmate/internal/domain"
)

var ErrSequenceConflict = errors.New("could not allocate message sequence number")

const (
	maxAppendAttempts = 5
	appendBackoff     = 5 * time.Millisecond
)

type gormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

func (r *gormMessageRepository) Append(ctx context.Context, conversationID string, role domain.Role, content string) (*domain.Message, error) {
	return r.appendWithRetry(ctx, conversationID, role, content, nil)
}

func (r *gormMessageRepository) AppendWithToolCall(ctx context.Context, conversationID string, role domain.Role, content string, call *domain.ToolCall) (*domain.Message, error) {
	if call == nil || call.ID == 0 {
		return nil, errors.New("tool call must be created before it is linked")
	}
	return r.appendWithRetry(ctx, conversationID, role, content, func(tx *gorm.DB, msg *domain.Message) error {
		call.MessageID = &msg.ID
		result := tx.Model(&domain.ToolCall{}).
			Where("id = ? AND conversation_id = ?", call.ID, conversationID).
			Updates(map[string]interface{}{
				"message_id":        msg.ID,
				"status":            call.Status,
				"output":            call.Output,
				"error_message":     call.ErrorMessage,
				"execution_time_ms": call.ExecutionTimeMS,
				"completed_at":      call.CompletedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errors.Errorf("tool call %d not found in conversation", call.ID)
		}
		return nil
	})
}

// appendWithRetry computes MAX(sequence_number)+1 and inserts inside one
// transaction. A concurrent writer that claimed the same number trips the
// unique constraint, and the whole transaction is retried with a freshly
// computed number.
func (r *gormMessageRepository) appendWithRetry(ctx context.Context, conversationID string, role domain.Role, content string, after func(tx *gorm.DB, msg *domain.Message) error) (*domain.Message, error) {
	if conversationID == "" {
		return nil, errors.New("invalid conversation ID")
	}

	var lastErr error
	for attempt := 1; attempt <= maxAppendAttempts; attempt++ {
		msg, err := r.appendOnce(ctx, conversationID, role, content, after)
		if err == nil {
			return msg, nil
		}
		if !isUniqueViolation(err) {
			return nil, errors.Wrap(err, "database error appending message")
		}
		lastErr = err
		log.Debug().Str("repository", "message").Str("conversation_id", conversationID).
			Int("attempt", attempt).Msg("sequence number conflict, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * appendBackoff):
		}
	}
	return nil, errors.Wrapf(ErrSequenceConflict, "after %d attempts: %v", maxAppendAttempts, lastErr)
}

func (r *gormMessageRepository) appendOnce(ctx context.Context, conversationID string, role domain.Role, content string, after func(tx *gorm.DB, msg *domain.Message) error) (*domain.Message, error) {
	msg := &domain.Message{
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next int
		row := tx.Model(&domain.Message{}).
			Select("COALESCE(MAX(sequence_number), -1) + 1").
			Where("conversation_id = ?", conversationID).
			Row()
		if err := row.Scan(&next); err != nil {
			return err
		}

		now := time.Now().UTC()
		msg.SequenceNumber = next
		msg.CreatedAt = now
		if err := tx.Create(msg).Error; err != nil {
			return err
		}

		if err := tx.Model(&domain.Conversation{}).
			Where("id = ?", conversationID).
			Update("updated_at", now).Error; err != nil {
			return err
		}

		if after != nil {
			return after(tx, msg)
		}
		return nil
	})
	if err != nil {
		msg.ID = 0
		return nil, err
	}
	return msg, nil
}

func (r *gormMessageRepository) Recent(ctx context.Context, conversationID string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		return []domain.Message{}, nil
	}
	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("sequence_number DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, errors.Wrap(err, "database error loading recent messages")
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *gormMessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("sequence_number ASC").
		Find(&messages).Error
	if err != nil {
		return nil, errors.Wrap(err, "database error listing messages")
	}
	return messages, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "constraint failed: unique")
}
