// File: internal/handlers/task_handler.go
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-taskmate/internal/domain"
	"github.com/iyunix/go-taskmate/internal/dtos"
	"github.com/iyunix/go-taskmate/internal/middleware"
	"github.com/iyunix/go-taskmate/internal/services/tools"
)

// TaskRunner executes task tools on behalf of a caller.
type TaskRunner interface {
	Execute(ctx context.Context, call tools.Call) tools.Result
}

// TaskHandler is the conventional task API. It goes through the same tools
// as chat, so validation and ownership rules are shared.
type TaskHandler struct {
	tools  TaskRunner
	logger Logger
}

func NewTaskHandler(runner TaskRunner, logger Logger) *TaskHandler {
	return &TaskHandler{tools: runner, logger: logger}
}

func (h *TaskHandler) Register(r *mux.Router) {
	r.HandleFunc("/tasks", h.List).Methods(http.MethodGet)
	r.HandleFunc("/tasks", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/tasks/{id:[0-9]+}", h.Update).Methods(http.MethodPut)
	r.HandleFunc("/tasks/{id:[0-9]+}", h.Delete).Methods(http.MethodDelete)
	r.HandleFunc("/tasks/{id:[0-9]+}/complete", h.Complete).Methods(http.MethodPatch)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", CodeUnauthorized)
		return
	}

	call := tools.ListTasks{UserID: userID, Priority: domain.Priority(r.URL.Query().Get("priority"))}
	if raw := r.URL.Query().Get("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "completed must be true or false", CodeInvalidRequest)
			return
		}
		call.Completed = &completed
	}

	res := h.tools.Execute(r.Context(), call)
	if !res.Success {
		h.writeToolError(w, res)
		return
	}
	data, _ := res.Data.(tools.ListData)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tasks": dtos.FromTasks(data.Tasks),
		"count": data.Count,
	})
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", CodeUnauthorized)
		return
	}

	var req dtos.TaskCreateRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	due, err := req.ParseDueDate()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), string(tools.CodeValidation))
		return
	}

	res := h.tools.Execute(r.Context(), tools.AddTask{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.PriorityValue(),
		DueDate:     due,
	})
	h.writeTask(w, res, http.StatusCreated)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", CodeUnauthorized)
		return
	}
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	var req dtos.TaskUpdateRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	res := h.tools.Execute(r.Context(), tools.UpdateTask{
		UserID:      userID,
		TaskID:      id,
		Title:       req.Title,
		Description: req.Description,
	})
	h.writeTask(w, res, http.StatusOK)
}

func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", CodeUnauthorized)
		return
	}
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	completed := true
	if r.ContentLength > 0 {
		var req dtos.TaskCompleteRequestDTO
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Completed != nil {
			completed = *req.Completed
		}
	}

	res := h.tools.Execute(r.Context(), tools.CompleteTask{UserID: userID, TaskID: id, Completed: completed})
	h.writeTask(w, res, http.StatusOK)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", CodeUnauthorized)
		return
	}
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	res := h.tools.Execute(r.Context(), tools.DeleteTask{UserID: userID, TaskID: id})
	if !res.Success {
		h.writeToolError(w, res)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) writeTask(w http.ResponseWriter, res tools.Result, status int) {
	if !res.Success {
		h.writeToolError(w, res)
		return
	}
	task := res.Task()
	if task == nil {
		writeError(w, http.StatusInternalServerError, "Something went wrong. Please try again.", CodeInternal)
		return
	}
	writeJSON(w, status, dtos.FromTask(task))
}

func (h *TaskHandler) writeToolError(w http.ResponseWriter, res tools.Result) {
	switch res.ErrorCode {
	case tools.CodeValidation:
		writeError(w, http.StatusBadRequest, res.Error, string(res.ErrorCode))
	case tools.CodeTaskNotFound:
		writeError(w, http.StatusNotFound, res.Error, string(res.ErrorCode))
	default:
		h.logger.Error("Task tool failed", "code", res.ErrorCode, "error", res.Error)
		writeError(w, http.StatusInternalServerError, "Something went wrong. Please try again.", string(res.ErrorCode))
	}
}

func taskID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil || id == 0 {
		writeError(w, http.StatusBadRequest, "invalid task id", CodeInvalidRequest)
		return 0, false
	}
	return uint(id), true
}
