// File: internal/services/tools/toolset.go
package tools

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"

	"github.com/iyunix/go-taskmate/internal/domain"
	"github.com/iyunix/go-taskmate/internal/repository/task"
)

// Logger defines the logging interface used by the toolset
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Toolset executes the five task operations against an owner-scoped store.
// It holds only compiled schemas and is safe for concurrent use.
type Toolset struct {
	tasks   task.TaskRepository
	schemas map[Name]*gojsonschema.Schema
	logger  Logger
}

func NewToolset(tasks task.TaskRepository, logger Logger) (*Toolset, error) {
	if tasks == nil {
		return nil, errors.New("task repository is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	schemas, err := compileSchemas()
	if err != nil {
		return nil, err
	}
	return &Toolset{tasks: tasks, schemas: schemas, logger: logger}, nil
}

// Candidates lists every task the user owns, for reference resolution.
// It is a read, not a tool call, and leaves no audit record.
func (t *Toolset) Candidates(ctx context.Context, userID string) ([]domain.Task, error) {
	return t.tasks.List(ctx, userID, task.Filter{})
}

// Execute validates and runs call. It always returns a Result.
func (t *Toolset) Execute(ctx context.Context, call Call) Result {
	if call == nil {
		return fail(CodeInternal, "no tool call given")
	}
	call = call.normalized()

	start := time.Now()
	result := t.execute(ctx, call)
	t.logger.Debug("Tool executed",
		"tool", call.Tool(),
		"user_id", call.Owner(),
		"success", result.Success,
		"error_code", result.ErrorCode,
		"duration_ms", time.Since(start).Milliseconds())
	return result
}

func (t *Toolset) execute(ctx context.Context, call Call) Result {
	schema, found := t.schemas[call.Tool()]
	if !found {
		return fail(CodeInternal, "unknown tool "+string(call.Tool()))
	}
	validation, err := schema.Validate(gojsonschema.NewGoLoader(call.Input()))
	if err != nil {
		return fail(CodeInternal, "input could not be validated")
	}
	if !validation.Valid() {
		return fail(CodeValidation, validationMessage(validation))
	}

	switch c := call.(type) {
	case ListTasks:
		return t.listTasks(ctx, c)
	case AddTask:
		return t.addTask(ctx, c)
	case CompleteTask:
		return t.completeTask(ctx, c)
	case UpdateTask:
		return t.updateTask(ctx, c)
	case DeleteTask:
		return t.deleteTask(ctx, c)
	default:
		return fail(CodeInternal, "unknown tool "+string(call.Tool()))
	}
}

func (t *Toolset) listTasks(ctx context.Context, c ListTasks) Result {
	tasks, err := t.tasks.List(ctx, c.UserID, task.Filter{Completed: c.Completed, Priority: c.Priority})
	if err != nil {
		return t.storeFailure(c, err)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return ok(ListData{Tasks: tasks, Count: len(tasks)})
}

func (t *Toolset) addTask(ctx context.Context, c AddTask) Result {
	created, err := t.tasks.Create(ctx, &domain.Task{
		UserID:      c.UserID,
		Title:       c.Title,
		Description: c.Description,
		Priority:    c.Priority,
		DueDate:     c.DueDate,
	})
	if err != nil {
		return t.storeFailure(c, err)
	}
	return ok(created)
}

func (t *Toolset) completeTask(ctx context.Context, c CompleteTask) Result {
	updated, err := t.tasks.SetCompleted(ctx, c.TaskID, c.UserID, c.Completed)
	if err != nil {
		return t.storeFailure(c, err)
	}
	return ok(updated)
}

func (t *Toolset) updateTask(ctx context.Context, c UpdateTask) Result {
	current, err := t.tasks.FindByIDAndUser(ctx, c.TaskID, c.UserID)
	if err != nil {
		return t.storeFailure(c, err)
	}
	previous := current.Title

	updated, err := t.tasks.Update(ctx, c.TaskID, c.UserID, task.Changes{Title: c.Title, Description: c.Description})
	if err != nil {
		return t.storeFailure(c, err)
	}
	return ok(UpdateData{Task: updated, PreviousTitle: previous})
}

func (t *Toolset) deleteTask(ctx context.Context, c DeleteTask) Result {
	deleted, err := t.tasks.Delete(ctx, c.TaskID, c.UserID)
	if err != nil {
		return t.storeFailure(c, err)
	}
	return ok(DeleteData{TaskID: deleted.ID, Title: deleted.Title})
}

// storeFailure maps a repository error onto the result envelope. A task
// owned by someone else yields the same result as one that does not exist.
func (t *Toolset) storeFailure(c Call, err error) Result {
	if errors.Is(err, task.ErrTaskNotFound) {
		return fail(CodeTaskNotFound, "task not found")
	}
	t.logger.Error("Tool storage failure", "tool", c.Tool(), "user_id", c.Owner(), "error", err)
	return fail(CodeDatabase, "the task store is unavailable")
}
