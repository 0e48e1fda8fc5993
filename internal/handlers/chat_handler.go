// File: internal/handlers/chat_handler.go
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/iyunix/go-taskmate/internal/dtos"
	"github.com/iyunix/go-taskmate/internal/middleware"
	"github.com/iyunix/go-taskmate/internal/services/chat"
)

const defaultPageSize = 20

type ChatHandler struct {
	chat           chat.Service
	logger         Logger
	requestTimeout time.Duration
}

func NewChatHandler(service chat.Service, logger Logger, requestTimeout time.Duration) *ChatHandler {
	return &ChatHandler{chat: service, logger: logger, requestTimeout: requestTimeout}
}

// Register mounts the chat routes on r.
func (h *ChatHandler) Register(r *mux.Router) {
	r.HandleFunc("/chat", h.HandleChatMessage).Methods(http.MethodPost)
	r.HandleFunc("/conversations", h.ListConversations).Methods(http.MethodGet)
	r.HandleFunc("/conversations/{id}/messages", h.GetMessages).Methods(http.MethodGet)
	r.HandleFunc("/conversations/{id}/tool-calls", h.GetToolCalls).Methods(http.MethodGet)
	r.HandleFunc("/conversations/{id}", h.DeleteConversation).Methods(http.MethodDelete)
}

// HandleChatMessage runs one chat turn. Apart from validation and unknown
// conversations it always answers 200 with a reply.
func (h *ChatHandler) HandleChatMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", CodeUnauthorized)
		return
	}

	var req dtos.ChatRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	if h.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.requestTimeout)
		defer cancel()
	}

	resp, err := h.chat.Process(ctx, chat.Request{
		UserID:         userID,
		Message:        req.Message,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		h.writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.FromChatResponse(resp))
}

func (h *ChatHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", CodeUnauthorized)
		return
	}

	limit, err := queryInt(r, "limit", defaultPageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be a number", CodeInvalidRequest)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "offset must be a number", CodeInvalidRequest)
		return
	}

	convs, total, err := h.chat.ListConversations(r.Context(), userID, limit, offset)
	if err != nil {
		h.writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.PaginatedResponse{
		Data:   dtos.FromConversations(convs),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", CodeUnauthorized)
		return
	}

	msgs, err := h.chat.Messages(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		h.writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.FromMessages(msgs))
}

func (h *ChatHandler) GetToolCalls(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", CodeUnauthorized)
		return
	}

	calls, err := h.chat.ToolCalls(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		h.writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, calls)
}

func (h *ChatHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", CodeUnauthorized)
		return
	}

	if err := h.chat.DeleteConversation(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		h.writeChatError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ChatHandler) writeChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chat.ErrMessageRequired):
		writeError(w, http.StatusBadRequest, "message is required", CodeMessageRequired)
	case errors.Is(err, chat.ErrMessageTooLong):
		writeError(w, http.StatusBadRequest, "message must be at most 1000 characters", CodeMessageTooLong)
	case chat.IsType(err, chat.ErrTypeNotFound):
		writeError(w, http.StatusNotFound, "conversation not found", CodeConversationNotFound)
	default:
		h.logger.Error("Chat request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Something went wrong. Please try again.", CodeInternal)
	}
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
