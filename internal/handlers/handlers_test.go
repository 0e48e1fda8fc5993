package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-taskmate/internal/auth"
	"github.com/iyunix/go-taskmate/internal/database/dbtest"
	"github.com/iyunix/go-taskmate/internal/dtos"
	"github.com/iyunix/go-taskmate/internal/handlers"
	"github.com/iyunix/go-taskmate/internal/repository/conversation"
	"github.com/iyunix/go-taskmate/internal/repository/message"
	"github.com/iyunix/go-taskmate/internal/repository/task"
	"github.com/iyunix/go-taskmate/internal/repository/toolcall"
	"github.com/iyunix/go-taskmate/internal/services"
	"github.com/iyunix/go-taskmate/internal/services/chat"
	"github.com/iyunix/go-taskmate/internal/services/intent"
	"github.com/iyunix/go-taskmate/internal/services/resolver"
	"github.com/iyunix/go-taskmate/internal/services/tools"
)

var secret = []byte("handler-secret")

type api struct {
	t      *testing.T
	router http.Handler
}

func newAPI(t *testing.T) *api {
	t.Helper()
	db := dbtest.NewSQLite(t)
	logger := &services.NoOpLogger{}

	toolset, err := tools.NewToolset(task.NewTaskRepository(db), logger)
	require.NoError(t, err)
	orch, err := chat.NewOrchestrator(
		chat.DefaultConfig(),
		conversation.NewConversationRepository(db),
		message.NewMessageRepository(db),
		toolcall.NewToolCallRepository(db),
		toolset,
		intent.NewParser(),
		resolver.New(),
		logger,
	)
	require.NoError(t, err)

	router := handlers.NewRouter(handlers.RouterConfig{
		Chat:      handlers.NewChatHandler(orch, logger, 5*time.Second),
		Tasks:     handlers.NewTaskHandler(toolset, logger),
		JWTSecret: secret,
		Logger:    logger,
	})
	return &api{t: t, router: router}
}

func (a *api) do(method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(a.t, json.NewEncoder(&buf).Encode(b))
	}
	r := httptest.NewRequest(method, path, &buf)
	r.Header.Set("Content-Type", "application/json")
	if userID != "" {
		tok, err := auth.GenerateJWT(userID, secret, time.Hour)
		require.NoError(a.t, err)
		r.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthIsPublic(t *testing.T) {
	w := newAPI(t).do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChatRequiresToken(t *testing.T) {
	w := newAPI(t).do(http.MethodPost, "/api/chat", "", map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChatRoundTrip(t *testing.T) {
	a := newAPI(t)

	w := a.do(http.MethodPost, "/api/chat", "alice", map[string]string{"message": "Add a task to buy milk"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[dtos.ChatResponseDTO](t, w)
	assert.Equal(t, "Task created: 'buy milk'", resp.Reply)
	assert.NotEmpty(t, resp.ConversationID)
	assert.Equal(t, "CREATE", resp.Metadata.Intent)
	require.NotNil(t, resp.Metadata.ToolCalled)
	assert.Equal(t, "add_task", *resp.Metadata.ToolCalled)

	w = a.do(http.MethodPost, "/api/chat", "alice", map[string]string{"message": "hello", "conversation_id": resp.ConversationID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tool_called":null`)

	w = a.do(http.MethodGet, "/api/conversations/"+resp.ConversationID+"/messages", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	msgs := decode[[]dtos.MessageDTO](t, w)
	require.Len(t, msgs, 4)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, 3, msgs[3].SequenceNumber)

	w = a.do(http.MethodGet, "/api/conversations/"+resp.ConversationID+"/tool-calls", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tool_name":"add_task"`)

	w = a.do(http.MethodGet, "/api/conversations?limit=5", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[struct {
		Data  []dtos.ConversationDTO `json:"data"`
		Total int64                  `json:"total"`
	}](t, w)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Add new task", page.Data[0].Title)
}

func TestChatValidation(t *testing.T) {
	a := newAPI(t)
	tests := []struct {
		name   string
		body   interface{}
		status int
		code   string
	}{
		{"malformed", `{"message":`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"unknown field", `{"msg":"hi"}`, http.StatusBadRequest, "INVALID_REQUEST"},
		{"empty", map[string]string{"message": "  "}, http.StatusBadRequest, "MESSAGE_REQUIRED"},
		{"too long", map[string]string{"message": strings.Repeat("a", 1001)}, http.StatusBadRequest, "MESSAGE_TOO_LONG"},
		{"unknown conversation", map[string]string{"message": "hi", "conversation_id": "nope"}, http.StatusNotFound, "CONVERSATION_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do(http.MethodPost, "/api/chat", "alice", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decode[dtos.ErrorResponse](t, w).Code)
		})
	}
}

func TestConversationsAreOwnerScoped(t *testing.T) {
	a := newAPI(t)
	w := a.do(http.MethodPost, "/api/chat", "bob", map[string]string{"message": "hello"})
	require.Equal(t, http.StatusOK, w.Code)
	bobConv := decode[dtos.ChatResponseDTO](t, w).ConversationID

	for _, req := range []struct{ method, path string }{
		{http.MethodGet, "/api/conversations/" + bobConv + "/messages"},
		{http.MethodGet, "/api/conversations/" + bobConv + "/tool-calls"},
		{http.MethodDelete, "/api/conversations/" + bobConv},
	} {
		w := a.do(req.method, req.path, "alice", nil)
		assert.Equal(t, http.StatusNotFound, w.Code, req.path)
	}

	w = a.do(http.MethodDelete, "/api/conversations/"+bobConv, "bob", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = a.do(http.MethodGet, "/api/conversations/"+bobConv+"/messages", "bob", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskAPI(t *testing.T) {
	a := newAPI(t)

	w := a.do(http.MethodPost, "/api/tasks", "alice", map[string]string{"title": "Pay rent", "priority": "High", "due_date": "2025-07-01"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[dtos.TaskResponseDTO](t, w)
	assert.Equal(t, "Pay rent", created.Title)
	assert.Equal(t, "high", created.Priority)
	require.NotNil(t, created.DueDate)
	assert.Equal(t, "2025-07-01", *created.DueDate)
	path := fmt.Sprintf("/api/tasks/%d", created.ID)

	w = a.do(http.MethodPut, path, "alice", map[string]string{"title": "Pay rent early"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Pay rent early", decode[dtos.TaskResponseDTO](t, w).Title)

	w = a.do(http.MethodPatch, path+"/complete", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[dtos.TaskResponseDTO](t, w).Completed)

	w = a.do(http.MethodPatch, path+"/complete", "alice", map[string]bool{"completed": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[dtos.TaskResponseDTO](t, w).Completed)

	w = a.do(http.MethodGet, "/api/tasks?completed=false", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	// Bob sees nothing and can touch nothing.
	w = a.do(http.MethodGet, "/api/tasks", "bob", nil)
	assert.Contains(t, w.Body.String(), `"count":0`)
	w = a.do(http.MethodDelete, path, "bob", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "TASK_NOT_FOUND", decode[dtos.ErrorResponse](t, w).Code)

	w = a.do(http.MethodDelete, path, "alice", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = a.do(http.MethodDelete, path, "alice", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskAPIValidation(t *testing.T) {
	a := newAPI(t)
	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
		code   string
	}{
		{"empty title", http.MethodPost, "/api/tasks", map[string]string{"title": ""}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"long title", http.MethodPost, "/api/tasks", map[string]string{"title": strings.Repeat("x", 501)}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad priority", http.MethodPost, "/api/tasks", map[string]string{"title": "x", "priority": "urgent"}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad date", http.MethodPost, "/api/tasks", map[string]string{"title": "x", "due_date": "tomorrow"}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"no change", http.MethodPut, "/api/tasks/1", map[string]string{}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad filter", http.MethodGet, "/api/tasks?completed=maybe", nil, http.StatusBadRequest, "INVALID_REQUEST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do(tt.method, tt.path, "alice", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decode[dtos.ErrorResponse](t, w).Code)
		})
	}
}
