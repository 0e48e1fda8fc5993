// File: internal/repository/task/interface.go
package task

import (
	"context"

	"github.com/iyunix/go-taskmate/internal/domain"
)

// Filter narrows List results. Zero values mean "any".
type Filter struct {
	Completed *bool
	Priority  domain.Priority
}

// Changes is a partial update; nil fields are left untouched.
type Changes struct {
	Title       *string
	Description *string
}

// TaskRepository is the owner-scoped task store. Every method takes the
// owner's id and treats tasks of other users as nonexistent.
type TaskRepository interface {
	List(ctx context.Context, userID string, filter Filter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	FindByIDAndUser(ctx context.Context, id uint, userID string) (*domain.Task, error)
	Update(ctx context.Context, id uint, userID string, changes Changes) (*domain.Task, error)
	SetCompleted(ctx context.Context, id uint, userID string, completed bool) (*domain.Task, error)
	Delete(ctx context.Context, id uint, userID string) (*domain.Task, error)
}
