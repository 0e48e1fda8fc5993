package tools_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-taskmate/internal/database/dbtest"
	"github.com/iyunix/go-taskmate/internal/domain"
	"github.com/iyunix/go-taskmate/internal/repository/task"
	"github.com/iyunix/go-taskmate/internal/services"
	"github.com/iyunix/go-taskmate/internal/services/tools"
)

func newToolset(t *testing.T) *tools.Toolset {
	t.Helper()
	ts, err := tools.NewToolset(task.NewTaskRepository(dbtest.NewSQLite(t)), &services.NoOpLogger{})
	require.NoError(t, err)
	return ts
}

func addTask(t *testing.T, ts *tools.Toolset, userID, title string) *domain.Task {
	t.Helper()
	res := ts.Execute(context.Background(), tools.AddTask{UserID: userID, Title: title})
	require.True(t, res.Success, res.Error)
	created, ok := res.Data.(*domain.Task)
	require.True(t, ok)
	return created
}

func TestAddAndListTasks(t *testing.T) {
	ctx := context.Background()
	ts := newToolset(t)

	due := time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC)
	res := ts.Execute(ctx, tools.AddTask{
		UserID:      "alice",
		Title:       "  Buy milk  ",
		Description: "2%",
		Priority:    domain.PriorityHigh,
		DueDate:     &due,
	})
	require.True(t, res.Success, res.Error)
	created := res.Task()
	require.NotNil(t, created)
	assert.Equal(t, "Buy milk", created.Title)
	assert.Equal(t, domain.PriorityHigh, created.Priority)
	assert.NotZero(t, created.ID)

	res = ts.Execute(ctx, tools.ListTasks{UserID: "alice"})
	require.True(t, res.Success)
	list := res.Data.(tools.ListData)
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, "Buy milk", list.Tasks[0].Title)
}

func TestListEmptyIsSuccess(t *testing.T) {
	res := newToolset(t).Execute(context.Background(), tools.ListTasks{UserID: "nobody"})
	require.True(t, res.Success)
	list := res.Data.(tools.ListData)
	assert.Zero(t, list.Count)
	assert.NotNil(t, list.Tasks)
}

func TestValidation(t *testing.T) {
	ts := newToolset(t)
	empty := "   "
	long := strings.Repeat("ü", tools.MaxTitleLength+1)

	tests := []struct {
		name string
		call tools.Call
	}{
		{"blank title", tools.AddTask{UserID: "alice", Title: "   "}},
		{"title too long", tools.AddTask{UserID: "alice", Title: long}},
		{"description too long", tools.AddTask{UserID: "alice", Title: "ok", Description: strings.Repeat("x", tools.MaxDescriptionLength+1)}},
		{"bad priority", tools.AddTask{UserID: "alice", Title: "ok", Priority: domain.Priority("urgent")}},
		{"missing user", tools.ListTasks{}},
		{"zero task id", tools.DeleteTask{UserID: "alice"}},
		{"update without changes", tools.UpdateTask{UserID: "alice", TaskID: 1}},
		{"update to blank title", tools.UpdateTask{UserID: "alice", TaskID: 1, Title: &empty}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ts.Execute(context.Background(), tt.call)
			assert.False(t, res.Success)
			assert.Equal(t, tools.CodeValidation, res.ErrorCode)
			assert.NotEmpty(t, res.Error)
		})
	}

	// Exactly the limit, counted in characters rather than bytes.
	res := ts.Execute(context.Background(), tools.AddTask{UserID: "alice", Title: strings.Repeat("ü", tools.MaxTitleLength)})
	assert.True(t, res.Success, res.Error)
}

func TestOtherUsersTasksLookNonexistent(t *testing.T) {
	ctx := context.Background()
	ts := newToolset(t)
	bobs := addTask(t, ts, "bob", "Bob's task")

	title := "mine now"
	calls := []tools.Call{
		tools.CompleteTask{UserID: "alice", TaskID: bobs.ID, Completed: true},
		tools.UpdateTask{UserID: "alice", TaskID: bobs.ID, Title: &title},
		tools.DeleteTask{UserID: "alice", TaskID: bobs.ID},
	}
	for _, call := range calls {
		foreign := ts.Execute(ctx, call)
		assert.Equal(t, tools.CodeTaskNotFound, foreign.ErrorCode, call.Tool())

		missing := ts.Execute(ctx, withTaskID(call, 9999))
		assert.Equal(t, missing, foreign, "foreign and missing ids must be indistinguishable")
	}

	res := ts.Execute(ctx, tools.ListTasks{UserID: "bob"})
	list := res.Data.(tools.ListData)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "Bob's task", list.Tasks[0].Title)
	assert.False(t, list.Tasks[0].Completed)
}

func withTaskID(call tools.Call, id uint) tools.Call {
	switch c := call.(type) {
	case tools.CompleteTask:
		c.TaskID = id
		return c
	case tools.UpdateTask:
		c.TaskID = id
		return c
	case tools.DeleteTask:
		c.TaskID = id
		return c
	}
	return call
}

func TestCompleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	ts := newToolset(t)
	created := addTask(t, ts, "alice", "Buy milk")

	first := ts.Execute(ctx, tools.CompleteTask{UserID: "alice", TaskID: created.ID, Completed: true})
	second := ts.Execute(ctx, tools.CompleteTask{UserID: "alice", TaskID: created.ID, Completed: true})
	require.True(t, first.Success)
	require.True(t, second.Success)
	assert.True(t, second.Task().Completed)
	assert.True(t, first.Task().UpdatedAt.Equal(second.Task().UpdatedAt))

	undo := ts.Execute(ctx, tools.CompleteTask{UserID: "alice", TaskID: created.ID, Completed: false})
	require.True(t, undo.Success)
	assert.False(t, undo.Task().Completed)
}

func TestUpdateReportsPreviousTitle(t *testing.T) {
	ctx := context.Background()
	ts := newToolset(t)
	created := addTask(t, ts, "alice", "Buy milk")

	title := "Buy oat milk"
	res := ts.Execute(ctx, tools.UpdateTask{UserID: "alice", TaskID: created.ID, Title: &title})
	require.True(t, res.Success, res.Error)
	data := res.Data.(tools.UpdateData)
	assert.Equal(t, "Buy milk", data.PreviousTitle)
	assert.Equal(t, "Buy oat milk", data.Task.Title)
}

func TestDeleteReturnsTitle(t *testing.T) {
	ctx := context.Background()
	ts := newToolset(t)
	created := addTask(t, ts, "alice", "Buy milk")

	res := ts.Execute(ctx, tools.DeleteTask{UserID: "alice", TaskID: created.ID})
	require.True(t, res.Success)
	assert.Equal(t, tools.DeleteData{TaskID: created.ID, Title: "Buy milk"}, res.Data)

	again := ts.Execute(ctx, tools.DeleteTask{UserID: "alice", TaskID: created.ID})
	assert.Equal(t, tools.CodeTaskNotFound, again.ErrorCode)
}

type brokenRepo struct {
	task.TaskRepository
}

func (brokenRepo) List(context.Context, string, task.Filter) ([]domain.Task, error) {
	return nil, errors.New("connection refused")
}

func (brokenRepo) Create(context.Context, *domain.Task) (*domain.Task, error) {
	return nil, errors.New("disk I/O error")
}

func TestStorageFailureIsDatabaseError(t *testing.T) {
	ts, err := tools.NewToolset(brokenRepo{}, &services.NoOpLogger{})
	require.NoError(t, err)

	for _, call := range []tools.Call{
		tools.ListTasks{UserID: "alice"},
		tools.AddTask{UserID: "alice", Title: "Buy milk"},
	} {
		res := ts.Execute(context.Background(), call)
		assert.False(t, res.Success)
		assert.Equal(t, tools.CodeDatabase, res.ErrorCode)
		assert.NotContains(t, res.Error, "connection refused")
	}
}

func TestNilCallIsInternalError(t *testing.T) {
	res := newToolset(t).Execute(context.Background(), nil)
	assert.Equal(t, tools.CodeInternal, res.ErrorCode)
}
