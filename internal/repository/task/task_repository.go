// File: internal/repository/task/task_repository.go
package task

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/iyunix/go-taskmate/internal/domain"
)

// ErrTaskNotFound is returned for ids that do not exist and for ids owned by
// another user alike.
var ErrTaskNotFound = errors.New("task not found")

type gormTaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &gormTaskRepository{db: db}
}

func (r *gormTaskRepository) List(ctx context.Context, userID string, filter Filter) ([]domain.Task, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Completed != nil {
		query = query.Where("completed = ?", *filter.Completed)
	}
	if filter.Priority != domain.PriorityNone {
		query = query.Where("priority = ?", filter.Priority)
	}

	var tasks []domain.Task
	if err := query.Order("created_at ASC, id ASC").Find(&tasks).Error; err != nil {
		log.Error().Err(err).Str("repository", "task").Str("user_id", userID).Msg("list failed")
		return nil, errors.Wrap(err, "database error listing tasks")
	}
	return tasks, nil
}

func (r *gormTaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil || task.UserID == "" {
		return nil, errors.New("task requires an owner")
	}
	now := time.Now().UTC()
	task.ID = 0
	task.CreatedAt, task.UpdatedAt = now, now
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		log.Error().Err(err).Str("repository", "task").Str("user_id", task.UserID).Msg("create failed")
		return nil, errors.Wrap(err, "database error creating task")
	}
	return task, nil
}

func (r *gormTaskRepository) FindByIDAndUser(ctx context.Context, id uint, userID string) (*domain.Task, error) {
	return findOwned(r.db.WithContext(ctx), id, userID)
}

func (r *gormTaskRepository) Update(ctx context.Context, id uint, userID string, changes Changes) (*domain.Task, error) {
	var updated *domain.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := findOwned(tx, id, userID)
		if err != nil {
			return err
		}
		values := map[string]interface{}{"updated_at": time.Now().UTC()}
		if changes.Title != nil {
			task.Title = *changes.Title
			values["title"] = *changes.Title
		}
		if changes.Description != nil {
			task.Description = *changes.Description
			values["description"] = *changes.Description
		}
		if err := tx.Model(&domain.Task{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(values).Error; err != nil {
			return errors.Wrap(err, "database error updating task")
		}
		task.UpdatedAt = values["updated_at"].(time.Time)
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetCompleted is a no-op when the task already has the requested state.
func (r *gormTaskRepository) SetCompleted(ctx context.Context, id uint, userID string, completed bool) (*domain.Task, error) {
	var updated *domain.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := findOwned(tx, id, userID)
		if err != nil {
			return err
		}
		if task.Completed == completed {
			updated = task
			return nil
		}
		now := time.Now().UTC()
		if err := tx.Model(&domain.Task{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(map[string]interface{}{"completed": completed, "updated_at": now}).Error; err != nil {
			return errors.Wrap(err, "database error updating task completion")
		}
		task.Completed = completed
		task.UpdatedAt = now
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete returns the removed task so callers can report what was deleted.
func (r *gormTaskRepository) Delete(ctx context.Context, id uint, userID string) (*domain.Task, error) {
	var deleted *domain.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := findOwned(tx, id, userID)
		if err != nil {
			return err
		}
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&domain.Task{})
		if result.Error != nil {
			return errors.Wrap(result.Error, "database error deleting task")
		}
		if result.RowsAffected == 0 {
			return ErrTaskNotFound
		}
		deleted = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func findOwned(db *gorm.DB, id uint, userID string) (*domain.Task, error) {
	if id == 0 || userID == "" {
		return nil, ErrTaskNotFound
	}
	var task domain.Task
	err := db.Where("id = ? AND user_id = ?", id, userID).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, errors.Wrap(err, "database error loading task")
	}
	return &task, nil
}
