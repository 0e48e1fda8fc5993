package formatter_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iyunix/go-taskmate/internal/domain"
	"github.com/iyunix/go-taskmate/internal/services/formatter"
	"github.com/iyunix/go-taskmate/internal/services/intent"
	"github.com/iyunix/go-taskmate/internal/services/tools"
)

func success(data any) *tools.Result {
	return &tools.Result{Success: true, Data: data}
}

func TestTaskReplies(t *testing.T) {
	due := time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		in   formatter.Input
		want string
	}{
		{
			name: "created",
			in:   formatter.Input{Category: intent.CategoryCreate, Result: success(&domain.Task{ID: 1, Title: "Buy milk"})},
			want: "Task created: 'Buy milk'",
		},
		{
			name: "created with details",
			in: formatter.Input{Category: intent.CategoryCreate, Result: success(&domain.Task{
				ID: 1, Title: "Pay rent", Priority: domain.PriorityHigh, DueDate: &due,
			})},
			want: "Task created: 'Pay rent' (priority: high, due: Fri Jun 13)",
		},
		{
			name: "completed",
			in:   formatter.Input{Category: intent.CategoryComplete, Result: success(&domain.Task{Title: "Buy milk", Completed: true})},
			want: "Marked 'Buy milk' as done.",
		},
		{
			name: "reopened",
			in:   formatter.Input{Category: intent.CategoryComplete, Result: success(&domain.Task{Title: "Buy milk"})},
			want: "Marked 'Buy milk' as not done.",
		},
		{
			name: "renamed",
			in: formatter.Input{Category: intent.CategoryUpdate, Result: success(tools.UpdateData{
				Task: &domain.Task{Title: "Buy oat milk"}, PreviousTitle: "Buy milk",
			})},
			want: "Updated 'Buy milk' to 'Buy oat milk'.",
		},
		{
			name: "described",
			in: formatter.Input{Category: intent.CategoryUpdate, Result: success(tools.UpdateData{
				Task: &domain.Task{Title: "Buy milk", Description: "2%"}, PreviousTitle: "Buy milk",
			})},
			want: "Updated the description of 'Buy milk'.",
		},
		{
			name: "deleted",
			in:   formatter.Input{Category: intent.CategoryDelete, Result: success(tools.DeleteData{TaskID: 3, Title: "Call mom"})},
			want: "Deleted task 'Call mom'.",
		},
		{
			name: "confirm",
			in:   formatter.Input{Category: intent.CategoryDelete, Reason: formatter.ReasonConfirmDelete, Subject: "Call mom"},
			want: "Are you sure you want to delete 'Call mom'? Reply yes to confirm or no to cancel.",
		},
		{
			name: "cancelled",
			in:   formatter.Input{Category: intent.CategoryDelete, Reason: formatter.ReasonCancelled, Subject: "Call mom"},
			want: "Okay, I won't delete 'Call mom'.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatter.Format(tt.in))
		})
	}
}

func TestListReplies(t *testing.T) {
	empty := formatter.Format(formatter.Input{Category: intent.CategoryList, Result: success(tools.ListData{Tasks: []domain.Task{}})})
	assert.Equal(t, "You have no tasks.", empty)

	done := true
	emptyDone := formatter.Format(formatter.Input{
		Category:        intent.CategoryList,
		Result:          success(tools.ListData{}),
		CompletedFilter: &done,
	})
	assert.Equal(t, "You have no completed tasks.", emptyDone)

	tasks := []domain.Task{
		{ID: 4, Title: "Buy milk"},
		{ID: 7, Title: "Call mom", Completed: true, Priority: domain.PriorityLow},
	}
	got := formatter.Format(formatter.Input{Category: intent.CategoryList, Result: success(tools.ListData{Tasks: tasks, Count: 2})})
	assert.Equal(t, "You have 2 tasks:\n1. [ ] Buy milk (task 4)\n2. [x] Call mom (task 7, low priority)", got)
	assert.NotContains(t, got, "'", "list replies must not look like a single-task reference")
}

func TestLongListIsTruncated(t *testing.T) {
	var tasks []domain.Task
	for i := 1; i <= 13; i++ {
		tasks = append(tasks, domain.Task{ID: uint(i), Title: fmt.Sprintf("Task %d", i)})
	}
	got := formatter.Format(formatter.Input{Category: intent.CategoryList, Result: success(tools.ListData{Tasks: tasks, Count: 13})})
	assert.True(t, strings.HasPrefix(got, "You have 13 tasks:"))
	assert.Contains(t, got, "10. [ ] Task 10")
	assert.NotContains(t, got, "Task 11")
	assert.True(t, strings.HasSuffix(got, "...and 3 more"))
}

func TestFailuresNeverLeakDetail(t *testing.T) {
	for _, code := range []tools.ErrorCode{tools.CodeDatabase, tools.CodeInternal} {
		got := formatter.Format(formatter.Input{
			Category: intent.CategoryCreate,
			Result:   &tools.Result{ErrorCode: code, Error: "pq: relation tasks does not exist"},
		})
		assert.Equal(t, formatter.Apology, got)
	}

	got := formatter.Format(formatter.Input{
		Category: intent.CategoryDelete,
		Result:   &tools.Result{ErrorCode: tools.CodeTaskNotFound, Error: "task not found"},
	})
	assert.Equal(t, "I couldn't find that task. Try listing your tasks first.", got)
	assert.NotContains(t, got, string(tools.CodeTaskNotFound))

	got = formatter.Format(formatter.Input{Category: intent.CategoryCreate, Reason: formatter.ReasonInternal})
	assert.Equal(t, formatter.Apology, got)
}

func TestClarifications(t *testing.T) {
	got := formatter.Format(formatter.Input{
		Category:  intent.CategoryDelete,
		Reason:    formatter.ReasonAmbiguous,
		Reference: "call mom",
		Candidates: []domain.Task{
			{ID: 10, Title: "Call mom"},
			{ID: 11, Title: "Call mom", Completed: true},
		},
	})
	assert.Equal(t, "I found 2 tasks matching \"call mom\":\n- Call mom (task 10)\n- Call mom (task 11, done)\nWhich one did you mean? Please repeat your request with the task number, for example \"task 10\".", got)

	got = formatter.Format(formatter.Input{Category: intent.CategoryDelete, Reason: formatter.ReasonNotFound, Reference: "xyz"})
	assert.Equal(t, `I couldn't find a task matching "xyz". Try listing your tasks first.`, got)

	for _, reason := range []formatter.Reason{formatter.ReasonMissingTitle, formatter.ReasonMissingTask, formatter.ReasonMissingChange} {
		got := formatter.Format(formatter.Input{Reason: reason})
		assert.True(t, strings.HasSuffix(got, "?") || strings.HasSuffix(got, "."), reason)
		assert.NotEqual(t, formatter.Apology, got)
	}
}

func TestCasualAndHelp(t *testing.T) {
	tests := map[string]string{
		"hi":               "Hi!",
		"Good morning":     "Hi!",
		"thanks!":          "You're welcome!",
		"bye":              "Goodbye!",
		"I'm so stressed":  "That sounds tough.",
		"I'm happy today":  "Glad to hear it!",
		"what can you do?": "I'm your task assistant.",
		"how are you":      "I'm doing well",
		"yes":              "Got it.",
	}
	for msg, prefix := range tests {
		got := formatter.Format(formatter.Input{Category: intent.CategoryCasual, Message: msg})
		assert.True(t, strings.HasPrefix(got, prefix), "%q -> %q", msg, got)
	}

	help := formatter.Format(formatter.Input{Category: intent.CategoryUnknown, Message: "banana"})
	assert.Equal(t, formatter.Help(), help)
	assert.Contains(t, help, `"show my tasks"`)
}
