// File: internal/repository/conversation/conversation_repository.go
package conversation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/iyunix/go-taskmate/internal/domain"
)

var ErrConversationNotFound = errors.New("conversation not found")

const maxTitleLength = 255

type gormConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &gormConversationRepository{db: db}
}

// Create assigns a fresh uuid when the conversation has none.
func (r *gormConversationRepository) Create(ctx context.Context, conv *domain.Conversation) (*domain.Conversation, error) {
	if conv == nil || strings.TrimSpace(conv.UserID) == "" {
		return nil, errors.New("conversation requires an owner")
	}
	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	conv.CreatedAt, conv.UpdatedAt = now, now

	if err := r.db.WithContext(ctx).Create(conv).Error; err != nil {
		log.Error().Err(err).Str("repository", "conversation").Str("user_id", conv.UserID).Msg("create failed")
		return nil, errors.Wrap(err, "database error creating conversation")
	}
	return conv, nil
}

// FindByIDAndUser returns ErrConversationNotFound both for unknown ids and
// for conversations owned by someone else.
func (r *gormConversationRepository) FindByIDAndUser(ctx context.Context, id, userID string) (*domain.Conversation, error) {
	if id == "" || userID == "" {
		return nil, ErrConversationNotFound
	}
	var conv domain.Conversation
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, errors.Wrap(err, "database error loading conversation")
	}
	return &conv, nil
}

func (r *gormConversationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Conversation, int64, error) {
	if userID == "" {
		return nil, 0, errors.New("invalid user ID")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Conversation{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "database error counting conversations")
	}

	var convs []domain.Conversation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&convs).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "database error listing conversations")
	}
	return convs, total, nil
}

// SetTitleIfEmpty stores the title only when none has been set yet, so a
// title is fixed once written. It reports whether the title was stored.
func (r *gormConversationRepository) SetTitleIfEmpty(ctx context.Context, id, title string) (bool, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return false, nil
	}
	if runes := []rune(title); len(runes) > maxTitleLength {
		title = string(runes[:maxTitleLength])
	}
	result := r.db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ? AND title = ''", id).
		Update("title", title)
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "database error setting conversation title")
	}
	return result.RowsAffected > 0, nil
}

// SetPendingAction stores or, when action is nil, clears the confirmation
// state of a conversation.
func (r *gormConversationRepository) SetPendingAction(ctx context.Context, id, userID string, action *domain.PendingAction) error {
	var value interface{}
	if action != nil {
		encoded, err := domain.EncodePendingAction(*action)
		if err != nil {
			return errors.Wrap(err, "encode pending action")
		}
		value = encoded
	}
	result := r.db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("pending_action", value)
	if result.Error != nil {
		return errors.Wrap(result.Error, "database error updating pending action")
	}
	if result.RowsAffected == 0 {
		return ErrConversationNotFound
	}
	return nil
}

// Delete removes the conversation with its messages and tool calls.
func (r *gormConversationRepository) Delete(ctx context.Context, id, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Conversation{}).Where("id = ? AND user_id = ?", id, userID).Count(&count).Error; err != nil {
			return errors.Wrap(err, "database error checking conversation ownership")
		}
		if count == 0 {
			return ErrConversationNotFound
		}
		if err := tx.Where("conversation_id = ?", id).Delete(&domain.ToolCall{}).Error; err != nil {
			return errors.Wrap(err, "database error deleting tool calls")
		}
		if err := tx.Where("conversation_id = ?", id).Delete(&domain.Message{}).Error; err != nil {
			return errors.Wrap(err, "database error deleting messages")
		}
		if err := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&domain.Conversation{}).Error; err != nil {
			return errors.Wrap(err, "database error deleting conversation")
		}
		log.Info().Str("repository", "conversation").Str("conversation_id", id).Msg("conversation deleted")
		return nil
	})
}
