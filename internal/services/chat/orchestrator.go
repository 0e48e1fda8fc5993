// File: internal/services/chat/orchestrator.go
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"gorm.io/datatypes"

	"github.com/iyunix/go-taskmate/internal/domain"
	"github.com/iyunix/go-taskmate/internal/repository/conversation"
	"github.com/iyunix/go-taskmate/internal/repository/message"
	"github.com/iyunix/go-taskmate/internal/repository/toolcall"
	"github.com/iyunix/go-taskmate/internal/services/formatter"
	"github.com/iyunix/go-taskmate/internal/services/intent"
	"github.com/iyunix/go-taskmate/internal/services/resolver"
	"github.com/iyunix/go-taskmate/internal/services/tools"
)

// Orchestrator runs one chat turn: load history, classify, resolve, call a
// tool, format and persist. It keeps no per-conversation state; everything
// a turn needs is read from the store.
type Orchestrator struct {
	config        *Config
	conversations conversation.ConversationRepository
	messages      message.MessageRepository
	toolCalls     toolcall.ToolCallRepository
	tools         ToolRunner
	parser        IntentParser
	resolver      TaskResolver
	logger        Logger
	now           func() time.Time
}

func NewOrchestrator(
	config *Config,
	conversations conversation.ConversationRepository,
	messages message.MessageRepository,
	toolCalls toolcall.ToolCallRepository,
	toolRunner ToolRunner,
	parser IntentParser,
	taskResolver TaskResolver,
	logger Logger,
) (*Orchestrator, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, NewConfigError("config", err.Error())
	}
	switch {
	case conversations == nil:
		return nil, NewConfigError("constructor", "conversation repository is required")
	case messages == nil:
		return nil, NewConfigError("constructor", "message repository is required")
	case toolCalls == nil:
		return nil, NewConfigError("constructor", "tool call repository is required")
	case toolRunner == nil:
		return nil, NewConfigError("constructor", "toolset is required")
	case parser == nil:
		return nil, NewConfigError("constructor", "intent parser is required")
	case taskResolver == nil:
		return nil, NewConfigError("constructor", "resolver is required")
	case logger == nil:
		return nil, NewConfigError("constructor", "logger is required")
	}

	return &Orchestrator{
		config:        config,
		conversations: conversations,
		messages:      messages,
		toolCalls:     toolCalls,
		tools:         toolRunner,
		parser:        parser,
		resolver:      taskResolver,
		logger:        logger,
		now:           time.Now,
	}, nil
}

// outcome accumulates what a turn decided so that the reply can be
// persisted even when deciding failed halfway.
type outcome struct {
	reply      string
	category   intent.Category
	confidence float64
	tool       *tools.Name
	call       *domain.ToolCall
	finalized  bool
	failed     bool
}

func (o *outcome) fail(reply string) {
	o.failed = true
	o.reply = reply
}

// Process handles one user message. Validation and ownership problems are
// returned as errors; every other failure still produces a reply.
func (o *Orchestrator) Process(ctx context.Context, req Request) (*Response, error) {
	start := o.now()

	text, err := o.validate(req)
	if err != nil {
		return nil, err
	}

	conv, err := o.loadConversation(ctx, req)
	if err != nil {
		if IsType(err, ErrTypeNotFound) {
			return nil, err
		}
		o.logger.Error("Could not start conversation", "user_id", req.UserID, "error", err)
		return o.respond(start, req.ConversationID, &outcome{reply: formatter.Apology, category: intent.CategoryUnknown}), nil
	}
	o.logState(StateReceived, conv.ID)

	out := &outcome{category: intent.CategoryUnknown}

	history, err := o.messages.Recent(ctx, conv.ID, o.config.HistoryWindow)
	if err != nil {
		o.logger.Error("Could not load history", "conversation_id", conv.ID, "error", err)
		out.fail(formatter.Apology)
	} else {
		o.logState(StateHistoryLoaded, conv.ID)
	}

	userMsg, err := o.storeUserMessage(ctx, conv.ID, text)
	if err != nil {
		// No reply is stored without its user message.
		o.logger.Error("Could not store user message", "conversation_id", conv.ID, "error", err)
		out.fail(formatter.Apology)
		o.logState(StateFailed, conv.ID)
		return o.respond(start, conv.ID, out), nil
	}
	if userMsg.SequenceNumber == 0 {
		if _, err := o.conversations.SetTitleIfEmpty(ctx, conv.ID, DeriveTitle(text)); err != nil {
			o.logger.Warn("Could not set conversation title", "conversation_id", conv.ID, "error", err)
		}
	}

	if !out.failed {
		o.decide(ctx, out, conv, req.UserID, text, toTurns(history))
	}
	if out.failed {
		o.logState(StateFailed, conv.ID)
	}

	o.persist(ctx, conv.ID, out)
	return o.respond(start, conv.ID, out), nil
}

// storeUserMessage writes the user's message on a detached context, like the
// reply.
func (o *Orchestrator) storeUserMessage(ctx context.Context, conversationID, text string) (*domain.Message, error) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.config.PersistTimeout)
	defer cancel()
	return o.messages.Append(pctx, conversationID, domain.RoleUser, text)
}

func (o *Orchestrator) validate(req Request) (string, error) {
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return "", NewValidationError("validate", ErrMessageRequired)
	}
	if utf8.RuneCountInString(text) > o.config.MaxMessageLength {
		return "", NewValidationError("validate", ErrMessageTooLong)
	}
	return text, nil
}

func (o *Orchestrator) loadConversation(ctx context.Context, req Request) (*domain.Conversation, error) {
	if req.ConversationID == "" {
		conv, err := o.conversations.Create(ctx, &domain.Conversation{UserID: req.UserID})
		if err != nil {
			return nil, NewStorageError("create_conversation", "could not create conversation", err)
		}
		return conv, nil
	}

	conv, err := o.conversations.FindByIDAndUser(ctx, req.ConversationID, req.UserID)
	if err != nil {
		if errors.Is(err, conversation.ErrConversationNotFound) {
			return nil, NewNotFoundError(req.UserID, req.ConversationID, err)
		}
		return nil, NewStorageError("load_conversation", "could not load conversation", err)
	}
	return conv, nil
}

// decide fills out with the reply for text. A panic anywhere in the
// pipeline is turned into an apology.
func (o *Orchestrator) decide(ctx context.Context, out *outcome, conv *domain.Conversation, userID, text string, history []intent.Turn) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Panic while processing message", "conversation_id", conv.ID, "panic", fmt.Sprint(r))
			if out.call != nil && out.call.Status == domain.ToolCallPending {
				o.finishCall(out.call, tools.Result{ErrorCode: tools.CodeInternal, Error: "tool execution panicked"}, 0)
			}
			out.fail(formatter.Apology)
		}
	}()

	if o.handlePending(ctx, out, conv, userID, text) {
		return
	}

	in := o.parser.Parse(ctx, text, history)
	out.category, out.confidence = in.Category, in.Confidence
	o.logState(StateIntentClassified, conv.ID, "intent", in.Category, "method", in.Method, "confidence", in.Confidence)

	switch in.Category {
	case intent.CategoryList:
		res := o.runTool(ctx, out, conv.ID, tools.ListTasks{
			UserID:    userID,
			Completed: in.Params.CompletedFilter,
			Priority:  in.Params.PriorityFilter,
		})
		out.reply = formatter.Format(formatter.Input{Category: in.Category, Result: &res, CompletedFilter: in.Params.CompletedFilter})

	case intent.CategoryCreate:
		if !in.Params.Valid {
			out.reply = formatter.Format(formatter.Input{Category: in.Category, Reason: formatter.ReasonMissingTitle})
			return
		}
		res := o.runTool(ctx, out, conv.ID, tools.AddTask{
			UserID:      userID,
			Title:       in.Params.Title,
			Description: in.Params.Description,
			Priority:    in.Params.Priority,
			DueDate:     in.Params.DueDate,
		})
		out.reply = formatter.Format(formatter.Input{Category: in.Category, Result: &res})

	case intent.CategoryComplete, intent.CategoryUpdate, intent.CategoryDelete:
		o.handleTaskAction(ctx, out, conv, userID, in)

	default:
		out.reply = formatter.Format(formatter.Input{Category: in.Category, Message: text})
	}
}

// handlePending answers an outstanding confirmation prompt. It reports
// whether the message was consumed as the answer.
func (o *Orchestrator) handlePending(ctx context.Context, out *outcome, conv *domain.Conversation, userID, text string) bool {
	pending, err := conv.Pending()
	if err != nil {
		o.logger.Warn("Discarding unreadable pending action", "conversation_id", conv.ID, "error", err)
	}
	if pending == nil && err == nil {
		return false
	}

	// Any answer, or any other message, ends the confirmation.
	if err := o.conversations.SetPendingAction(ctx, conv.ID, userID, nil); err != nil {
		o.logger.Error("Could not clear pending action", "conversation_id", conv.ID, "error", err)
		out.fail(formatter.Apology)
		return true
	}
	if pending == nil || expired(pending, o.now(), o.config.PendingTTL) {
		return false
	}

	switch {
	case IsAffirmative(text):
		out.category, out.confidence = intent.CategoryDelete, 1.0
		res := o.runTool(ctx, out, conv.ID, tools.DeleteTask{UserID: userID, TaskID: pending.TaskID})
		out.reply = formatter.Format(formatter.Input{Category: intent.CategoryDelete, Result: &res})
		return true
	case IsNegative(text):
		out.category, out.confidence = intent.CategoryDelete, 1.0
		out.reply = formatter.Format(formatter.Input{
			Category: intent.CategoryDelete,
			Reason:   formatter.ReasonCancelled,
			Subject:  pending.TaskTitle,
		})
		return true
	}
	return false
}

func (o *Orchestrator) handleTaskAction(ctx context.Context, out *outcome, conv *domain.Conversation, userID string, in intent.Intent) {
	if !in.Params.Valid {
		reason := formatter.ReasonMissingTask
		if in.Params.Missing == intent.MissingChange {
			reason = formatter.ReasonMissingChange
		}
		out.reply = formatter.Format(formatter.Input{Category: in.Category, Reason: reason})
		return
	}

	candidates, err := o.tools.Candidates(ctx, userID)
	if err != nil {
		o.logger.Error("Could not load tasks for resolution", "user_id", userID, "error", err)
		out.fail(formatter.Apology)
		return
	}

	var taskID uint
	res := o.resolver.Resolve(in.Params.Reference, candidates)
	switch res.Outcome {
	case resolver.Resolved:
		taskID = res.Task.ID
	case resolver.Ambiguous:
		out.reply = formatter.Format(formatter.Input{
			Category:   in.Category,
			Reason:     formatter.ReasonAmbiguous,
			Reference:  in.Params.Reference,
			Candidates: res.Candidates,
		})
		return
	default:
		// An explicit id still goes to the tool so the attempt is audited
		// and answered the same way whether the task is missing or foreign.
		id, ok := resolver.ParseID(in.Params.Reference)
		if !ok {
			out.reply = formatter.Format(formatter.Input{
				Category:  in.Category,
				Reason:    formatter.ReasonNotFound,
				Reference: in.Params.Reference,
			})
			return
		}
		taskID = id
	}

	var call tools.Call
	switch in.Category {
	case intent.CategoryComplete:
		call = tools.CompleteTask{UserID: userID, TaskID: taskID, Completed: in.Params.Completed}
	case intent.CategoryUpdate:
		call = tools.UpdateTask{UserID: userID, TaskID: taskID, Title: in.Params.NewTitle, Description: in.Params.NewDescription}
	case intent.CategoryDelete:
		if o.config.ConfirmDestructive && res.Task != nil {
			o.requestConfirmation(ctx, out, conv, userID, res.Task)
			return
		}
		call = tools.DeleteTask{UserID: userID, TaskID: taskID}
	}

	result := o.runTool(ctx, out, conv.ID, call)
	out.reply = formatter.Format(formatter.Input{Category: in.Category, Result: &result})
}

func (o *Orchestrator) requestConfirmation(ctx context.Context, out *outcome, conv *domain.Conversation, userID string, task *domain.Task) {
	if err := o.conversations.SetPendingAction(ctx, conv.ID, userID, newPendingDelete(task, o.now())); err != nil {
		o.logger.Error("Could not store pending action", "conversation_id", conv.ID, "error", err)
		out.fail(formatter.Apology)
		return
	}
	out.reply = formatter.Format(formatter.Input{
		Category: intent.CategoryDelete,
		Reason:   formatter.ReasonConfirmDelete,
		Subject:  task.Title,
	})
}

// runTool audits and executes call. The audit row is written before the
// tool runs; a call that cannot be audited is not run.
func (o *Orchestrator) runTool(ctx context.Context, out *outcome, conversationID string, call tools.Call) tools.Result {
	input, err := json.Marshal(call.Input())
	if err != nil {
		out.failed = true
		return tools.Result{ErrorCode: tools.CodeInternal, Error: "could not encode tool input"}
	}

	record := &domain.ToolCall{
		ConversationID: conversationID,
		ToolName:       string(call.Tool()),
		Input:          datatypes.JSON(input),
		CreatedAt:      o.now().UTC(),
	}
	if err := o.toolCalls.CreatePending(ctx, record); err != nil {
		o.logger.Error("Could not audit tool call", "conversation_id", conversationID, "tool", call.Tool(), "error", err)
		out.failed = true
		return tools.Result{ErrorCode: tools.CodeDatabase, Error: "could not record tool call"}
	}
	name := call.Tool()
	out.tool, out.call = &name, record
	o.logState(StateToolInvoked, conversationID, "tool", name)

	toolCtx, cancel := context.WithTimeout(ctx, o.config.ToolTimeout)
	defer cancel()

	started := time.Now()
	result := o.tools.Execute(toolCtx, call)
	o.finishCall(record, result, time.Since(started))
	o.finalizeCall(ctx, out, record)

	if !result.Success && result.ErrorCode != tools.CodeTaskNotFound && result.ErrorCode != tools.CodeValidation {
		out.failed = true
	}
	return result
}

// finalizeCall writes the outcome to the audit row as soon as the tool has
// run. The message link is added later, with the assistant reply.
func (o *Orchestrator) finalizeCall(ctx context.Context, out *outcome, record *domain.ToolCall) {
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.config.PersistTimeout)
	defer cancel()
	if err := o.toolCalls.Finalize(fctx, record); err != nil {
		o.logger.Warn("Could not finalize tool call", "tool_call_id", record.ID, "error", err)
		return
	}
	out.finalized = true
}

// finishCall records the outcome on the audit row in memory.
func (o *Orchestrator) finishCall(record *domain.ToolCall, result tools.Result, elapsed time.Duration) {
	if output, err := json.Marshal(result); err == nil {
		raw := datatypes.JSON(output)
		record.Output = &raw
	}
	record.Status = domain.ToolCallSuccess
	record.ErrorMessage = nil
	if !result.Success {
		record.Status = domain.ToolCallError
		detail := fmt.Sprintf("%s: %s", result.ErrorCode, result.Error)
		record.ErrorMessage = &detail
	}
	record.ExecutionTimeMS = elapsed.Milliseconds()

	completed := o.now().UTC()
	if completed.Before(record.CreatedAt) {
		completed = record.CreatedAt
	}
	record.CompletedAt = &completed
}

// persist writes the assistant reply. It runs on a context detached from
// the request so a client that hung up still leaves a consistent history.
func (o *Orchestrator) persist(ctx context.Context, conversationID string, out *outcome) {
	if out.reply == "" {
		out.fail(formatter.Apology)
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.config.PersistTimeout)
	defer cancel()

	var err error
	if out.call != nil {
		if out.call.Status == domain.ToolCallPending {
			o.finishCall(out.call, tools.Result{ErrorCode: tools.CodeInternal, Error: "tool did not complete"}, 0)
		}
		_, err = o.messages.AppendWithToolCall(pctx, conversationID, domain.RoleAssistant, out.reply, out.call)
		if err != nil && !out.finalized {
			if ferr := o.toolCalls.Finalize(pctx, out.call); ferr != nil {
				o.logger.Error("Could not finalize tool call", "conversation_id", conversationID, "tool_call_id", out.call.ID, "error", ferr)
			}
		}
	} else {
		_, err = o.messages.Append(pctx, conversationID, domain.RoleAssistant, out.reply)
	}

	if err != nil {
		o.logger.Error("Could not store assistant reply", "conversation_id", conversationID, "error", err)
		o.logState(StateFailed, conversationID)
		return
	}
	o.logState(StatePersisted, conversationID)
}

func (o *Orchestrator) respond(start time.Time, conversationID string, out *outcome) *Response {
	o.logState(StateResponded, conversationID, "failed", out.failed)
	return &Response{
		Reply:          out.reply,
		ConversationID: conversationID,
		Metadata: Metadata{
			Intent:          out.category,
			ToolCalled:      out.tool,
			Confidence:      out.confidence,
			ExecutionTimeMS: o.now().Sub(start).Milliseconds(),
		},
	}
}

func (o *Orchestrator) logState(state State, conversationID string, keysAndValues ...interface{}) {
	o.logger.Debug("Chat state", append([]interface{}{"state", state, "conversation_id", conversationID}, keysAndValues...)...)
}

func toTurns(history []domain.Message) []intent.Turn {
	turns := make([]intent.Turn, 0, len(history))
	for _, m := range history {
		turns = append(turns, intent.Turn{Role: m.Role, Content: m.Content})
	}
	return turns
}
