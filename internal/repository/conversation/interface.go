// File: internal/repository/conversation/interface.go
package conversation

import (
	"context"

	"github.com/iyunix/go-taskmate/internal/domain"
)

// ConversationRepository handles conversation data operations. Every read
// and write is scoped to the owning user.
type ConversationRepository interface {
	Create(ctx context.Context, conv *domain.Conversation) (*domain.Conversation, error)
	FindByIDAndUser(ctx context.Context, id, userID string) (*domain.Conversation, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Conversation, int64, error)
	SetTitleIfEmpty(ctx context.Context, id, title string) (bool, error)
	SetPendingAction(ctx context.Context, id, userID string, action *domain.PendingAction) error
	Delete(ctx context.Context, id, userID string) error
}
