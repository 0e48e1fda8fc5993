// File: internal/services/tools/types.go
package tools

import (
	"strings"
	"time"

	"github.com/iyunix/go-taskmate/internal/domain"
)

// Name identifies a tool in audit records and response metadata.
type Name string

const (
	NameListTasks    Name = "list_tasks"
	NameAddTask      Name = "add_task"
	NameCompleteTask Name = "complete_task"
	NameUpdateTask   Name = "update_task"
	NameDeleteTask   Name = "delete_task"
)

// ErrorCode classifies a failed Result.
type ErrorCode string

const (
	CodeValidation   ErrorCode = "VALIDATION_ERROR"
	CodeDatabase     ErrorCode = "DATABASE_ERROR"
	CodeTaskNotFound ErrorCode = "TASK_NOT_FOUND"
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
)

// Result is the uniform envelope every tool returns. Tools never return Go
// errors; failures are carried in Error and ErrorCode.
type Result struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	ErrorCode ErrorCode `json:"error_code,omitempty"`
}

func ok(data any) Result {
	return Result{Success: true, Data: data}
}

func fail(code ErrorCode, msg string) Result {
	return Result{Success: false, Error: msg, ErrorCode: code}
}

// Task returns the task carried by a successful add, complete or update.
func (r Result) Task() *domain.Task {
	switch d := r.Data.(type) {
	case *domain.Task:
		return d
	case UpdateData:
		return d.Task
	}
	return nil
}

// ListData is the payload of list_tasks.
type ListData struct {
	Tasks []domain.Task `json:"tasks"`
	Count int           `json:"count"`
}

// UpdateData is the payload of update_task.
type UpdateData struct {
	Task          *domain.Task `json:"task"`
	PreviousTitle string       `json:"previous_title"`
}

// DeleteData is the payload of delete_task.
type DeleteData struct {
	TaskID uint   `json:"task_id"`
	Title  string `json:"title"`
}

// Call is one tool invocation. The set of implementations is closed.
type Call interface {
	Tool() Name
	Owner() string
	// Input is the call's arguments as a JSON-ready document. It is what
	// gets validated and what the audit trail records.
	Input() map[string]any
	normalized() Call
}

type ListTasks struct {
	UserID    string
	Completed *bool
	Priority  domain.Priority
}

type AddTask struct {
	UserID      string
	Title       string
	Description string
	Priority    domain.Priority
	DueDate     *time.Time
}

type CompleteTask struct {
	UserID    string
	TaskID    uint
	Completed bool
}

// UpdateTask changes the title, the description, or both. Nil fields are
// left as they are.
type UpdateTask struct {
	UserID      string
	TaskID      uint
	Title       *string
	Description *string
}

type DeleteTask struct {
	UserID string
	TaskID uint
}

func (ListTasks) Tool() Name    { return NameListTasks }
func (AddTask) Tool() Name      { return NameAddTask }
func (CompleteTask) Tool() Name { return NameCompleteTask }
func (UpdateTask) Tool() Name   { return NameUpdateTask }
func (DeleteTask) Tool() Name   { return NameDeleteTask }

func (c ListTasks) Owner() string    { return c.UserID }
func (c AddTask) Owner() string      { return c.UserID }
func (c CompleteTask) Owner() string { return c.UserID }
func (c UpdateTask) Owner() string   { return c.UserID }
func (c DeleteTask) Owner() string   { return c.UserID }

func (c ListTasks) Input() map[string]any {
	in := map[string]any{"user_id": c.UserID}
	if c.Completed != nil {
		in["completed"] = *c.Completed
	}
	if c.Priority != domain.PriorityNone {
		in["priority"] = string(c.Priority)
	}
	return in
}

func (c AddTask) Input() map[string]any {
	in := map[string]any{"user_id": c.UserID, "title": c.Title}
	if c.Description != "" {
		in["description"] = c.Description
	}
	if c.Priority != domain.PriorityNone {
		in["priority"] = string(c.Priority)
	}
	if c.DueDate != nil {
		in["due_date"] = c.DueDate.Format(time.DateOnly)
	}
	return in
}

func (c CompleteTask) Input() map[string]any {
	return map[string]any{"user_id": c.UserID, "task_id": c.TaskID, "completed": c.Completed}
}

func (c UpdateTask) Input() map[string]any {
	in := map[string]any{"user_id": c.UserID, "task_id": c.TaskID}
	if c.Title != nil {
		in["title"] = *c.Title
	}
	if c.Description != nil {
		in["description"] = *c.Description
	}
	return in
}

func (c DeleteTask) Input() map[string]any {
	return map[string]any{"user_id": c.UserID, "task_id": c.TaskID}
}

func (c ListTasks) normalized() Call {
	c.UserID = strings.TrimSpace(c.UserID)
	return c
}

func (c AddTask) normalized() Call {
	c.UserID = strings.TrimSpace(c.UserID)
	c.Title = strings.TrimSpace(c.Title)
	c.Description = strings.TrimSpace(c.Description)
	return c
}

func (c CompleteTask) normalized() Call {
	c.UserID = strings.TrimSpace(c.UserID)
	return c
}

func (c UpdateTask) normalized() Call {
	c.UserID = strings.TrimSpace(c.UserID)
	if c.Title != nil {
		t := strings.TrimSpace(*c.Title)
		c.Title = &t
	}
	if c.Description != nil {
		d := strings.TrimSpace(*c.Description)
		c.Description = &d
	}
	return c
}

func (c DeleteTask) normalized() Call {
	c.UserID = strings.TrimSpace(c.UserID)
	return c
}
