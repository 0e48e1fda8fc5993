// File: internal/services/formatter/formatter.go

// Package formatter renders tool results and parser outcomes as chat replies.
//
// Replies that act on a single task quote its title in single quotes, and
// nothing else in a reply is wrapped in single quotes; the intent parser relies on
// that to resolve "it" in a follow-up message.
package formatter

import (
	"fmt"
	"strings"

	"github.com/iyunix/go-taskmate/internal/domain"
	"github.com/iyunix/go-taskmate/internal/services/intent"
	"github.com/iyunix/go-taskmate/internal/services/tools"
)

// Reason explains why no tool result is being reported.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonMissingTitle  Reason = "missing_title"
	ReasonMissingTask   Reason = "missing_task"
	ReasonMissingChange Reason = "missing_change"
	ReasonNotFound      Reason = "not_found"
	ReasonAmbiguous     Reason = "ambiguous"
	ReasonInternal      Reason = "internal"
	ReasonConfirmDelete Reason = "confirm_delete"
	ReasonCancelled     Reason = "cancelled"
)

// MaxListed caps the tasks shown in a list reply.
const MaxListed = 10

const (
	Apology  = "Something went wrong. Please try again."
	notFound = "I couldn't find that task. Try listing your tasks first."
)

// Input is everything a reply can depend on. Only the fields relevant to the
// category and reason need to be set.
type Input struct {
	Category intent.Category
	Result   *tools.Result
	Reason   Reason

	// Reference is the user's own words for a task that could not be
	// resolved.
	Reference  string
	Candidates []domain.Task
	// Subject is the task title a confirmation or cancellation is about.
	Subject string
	// Message is the user's message, used to pick a casual reply.
	Message string
	// CompletedFilter is the list filter, for headings.
	CompletedFilter *bool
}

// Format returns the reply for in. It never returns an empty string.
func Format(in Input) string {
	if in.Reason != ReasonNone {
		return formatReason(in)
	}
	if in.Result != nil {
		return formatResult(in)
	}
	switch in.Category {
	case intent.CategoryCasual:
		return Casual(in.Message)
	case intent.CategoryUnknown:
		return Help()
	}
	return Apology
}

func formatReason(in Input) string {
	switch in.Reason {
	case ReasonMissingTitle:
		return `What should the task be called? For example: "add a task to buy milk".`
	case ReasonMissingTask:
		return `Which task do you mean? You can use its title or number, for example "mark buy milk as done".`
	case ReasonMissingChange:
		return `What would you like to change? For example: "rename buy milk to buy oat milk".`
	case ReasonNotFound:
		if in.Reference == "" {
			return notFound
		}
		return fmt.Sprintf(`I couldn't find a task matching "%s". Try listing your tasks first.`, in.Reference)
	case ReasonAmbiguous:
		return formatAmbiguous(in.Reference, in.Candidates)
	case ReasonConfirmDelete:
		return fmt.Sprintf("Are you sure you want to delete '%s'? Reply yes to confirm or no to cancel.", in.Subject)
	case ReasonCancelled:
		return fmt.Sprintf("Okay, I won't delete '%s'.", in.Subject)
	}
	return Apology
}

func formatAmbiguous(reference string, candidates []domain.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I found %d tasks matching \"%s\":\n", len(candidates), reference)
	for _, t := range candidates {
		fmt.Fprintf(&b, "- %s (task %d%s)\n", t.Title, t.ID, statusSuffix(t))
	}
	fmt.Fprintf(&b, "Which one did you mean? Please repeat your request with the task number, for example \"task %d\".", candidates[0].ID)
	return b.String()
}

func statusSuffix(t domain.Task) string {
	if t.Completed {
		return ", done"
	}
	return ""
}

func formatResult(in Input) string {
	res := in.Result
	if !res.Success {
		switch res.ErrorCode {
		case tools.CodeTaskNotFound:
			return notFound
		case tools.CodeValidation:
			return fmt.Sprintf("I couldn't do that: task titles must be 1 to %d characters and descriptions at most %d.",
				tools.MaxTitleLength, tools.MaxDescriptionLength)
		}
		return Apology
	}

	switch data := res.Data.(type) {
	case tools.ListData:
		return formatList(data.Tasks, in.CompletedFilter)
	case tools.UpdateData:
		return formatUpdate(data)
	case tools.DeleteData:
		return fmt.Sprintf("Deleted task '%s'.", data.Title)
	case *domain.Task:
		if in.Category == intent.CategoryComplete {
			if data.Completed {
				return fmt.Sprintf("Marked '%s' as done.", data.Title)
			}
			return fmt.Sprintf("Marked '%s' as not done.", data.Title)
		}
		return formatCreated(data)
	}
	return Apology
}

func formatCreated(t *domain.Task) string {
	var details []string
	if t.Priority != domain.PriorityNone {
		details = append(details, "priority: "+string(t.Priority))
	}
	if t.DueDate != nil {
		details = append(details, "due: "+t.DueDate.Format("Mon Jan 2"))
	}
	if len(details) == 0 {
		return fmt.Sprintf("Task created: '%s'", t.Title)
	}
	return fmt.Sprintf("Task created: '%s' (%s)", t.Title, strings.Join(details, ", "))
}

func formatUpdate(d tools.UpdateData) string {
	if d.Task == nil {
		return Apology
	}
	if d.PreviousTitle != d.Task.Title {
		return fmt.Sprintf("Updated '%s' to '%s'.", d.PreviousTitle, d.Task.Title)
	}
	return fmt.Sprintf("Updated the description of '%s'.", d.Task.Title)
}

func formatList(tasks []domain.Task, completed *bool) string {
	kind := ""
	if completed != nil {
		if *completed {
			kind = "completed "
		} else {
			kind = "pending "
		}
	}
	if len(tasks) == 0 {
		return fmt.Sprintf("You have no %stasks.", kind)
	}

	noun := "tasks"
	if len(tasks) == 1 {
		noun = "task"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You have %d %s%s:", len(tasks), kind, noun)
	for i, t := range tasks {
		if i == MaxListed {
			fmt.Fprintf(&b, "\n...and %d more", len(tasks)-MaxListed)
			break
		}
		box := "[ ]"
		if t.Completed {
			box = "[x]"
		}
		fmt.Fprintf(&b, "\n%d. %s %s (task %d%s)", i+1, box, t.Title, t.ID, listDetails(t))
	}
	return b.String()
}

func listDetails(t domain.Task) string {
	var s string
	if t.Priority != domain.PriorityNone {
		s += ", " + string(t.Priority) + " priority"
	}
	if t.DueDate != nil {
		s += ", due " + t.DueDate.Format("Mon Jan 2")
	}
	return s
}

// Help is the reply for messages that could not be understood.
func Help() string {
	return "I'm not sure what you mean. I can help you manage your tasks. Try:\n" +
		`- "add a task to buy milk"` + "\n" +
		`- "show my tasks"` + "\n" +
		`- "mark buy milk as done"` + "\n" +
		`- "rename buy milk to buy oat milk"` + "\n" +
		`- "delete buy milk"`
}
