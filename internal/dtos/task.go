// File: internal/dtos/task.go
package dtos

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/iyunix/go-taskmate/internal/domain"
)

// TaskCreateRequestDTO is the body of POST /api/tasks.
type TaskCreateRequestDTO struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	DueDate     string `json:"due_date,omitempty"` // YYYY-MM-DD
}

// TaskUpdateRequestDTO is the body of PUT /api/tasks/{id}. Omitted fields are
// left unchanged.
type TaskUpdateRequestDTO struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// TaskCompleteRequestDTO is the optional body of PATCH /api/tasks/{id}/complete.
type TaskCompleteRequestDTO struct {
	Completed *bool `json:"completed,omitempty"`
}

type TaskResponseDTO struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Completed   bool    `json:"completed"`
	Priority    string  `json:"priority,omitempty"`
	DueDate     *string `json:"due_date"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// ParseDueDate reads an optional YYYY-MM-DD date.
func (dto TaskCreateRequestDTO) ParseDueDate() (*time.Time, error) {
	if strings.TrimSpace(dto.DueDate) == "" {
		return nil, nil
	}
	due, err := time.Parse(time.DateOnly, strings.TrimSpace(dto.DueDate))
	if err != nil {
		return nil, errors.Errorf("due_date must be a date like 2025-06-30")
	}
	return &due, nil
}

// PriorityValue returns the requested priority as given. Unknown values are
// rejected by the task tools, not here.
func (dto TaskCreateRequestDTO) PriorityValue() domain.Priority {
	return domain.Priority(strings.ToLower(strings.TrimSpace(dto.Priority)))
}

func FromTask(t *domain.Task) TaskResponseDTO {
	dto := TaskResponseDTO{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Priority:    string(t.Priority),
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if t.DueDate != nil {
		due := t.DueDate.Format(time.DateOnly)
		dto.DueDate = &due
	}
	return dto
}

func FromTasks(tasks []domain.Task) []TaskResponseDTO {
	out := make([]TaskResponseDTO, 0, len(tasks))
	for i := range tasks {
		out = append(out, FromTask(&tasks[i]))
	}
	return out
}
