// File: internal/dtos/chat.go
package dtos

import (
	"time"

	"github.com/iyunix/go-taskmate/internal/domain"
	"github.com/iyunix/go-taskmate/internal/services/chat"
)

// ChatRequestDTO is the body of POST /api/chat.
type ChatRequestDTO struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ChatMetadataDTO explains how a reply was produced.
type ChatMetadataDTO struct {
	Intent          string  `json:"intent"`
	ToolCalled      *string `json:"tool_called"` // null when no tool ran
	Confidence      float64 `json:"confidence"`
	ExecutionTimeMS int64   `json:"execution_time_ms"`
}

type ChatResponseDTO struct {
	Reply          string          `json:"reply"`
	ConversationID string          `json:"conversation_id"`
	Metadata       ChatMetadataDTO `json:"metadata"`
}

func FromChatResponse(resp *chat.Response) ChatResponseDTO {
	meta := ChatMetadataDTO{
		Intent:          string(resp.Metadata.Intent),
		Confidence:      resp.Metadata.Confidence,
		ExecutionTimeMS: resp.Metadata.ExecutionTimeMS,
	}
	if resp.Metadata.ToolCalled != nil {
		name := string(*resp.Metadata.ToolCalled)
		meta.ToolCalled = &name
	}
	return ChatResponseDTO{
		Reply:          resp.Reply,
		ConversationID: resp.ConversationID,
		Metadata:       meta,
	}
}

type ConversationDTO struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func FromConversations(convs []domain.Conversation) []ConversationDTO {
	out := make([]ConversationDTO, 0, len(convs))
	for _, c := range convs {
		out = append(out, ConversationDTO{
			ID:        c.ID,
			Title:     c.Title,
			CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
			UpdatedAt: c.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

type MessageDTO struct {
	ID             uint   `json:"id"`
	Role           string `json:"role"`
	Content        string `json:"content"`
	SequenceNumber int    `json:"sequence_number"`
	CreatedAt      string `json:"created_at"`
}

func FromMessages(msgs []domain.Message) []MessageDTO {
	out := make([]MessageDTO, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, MessageDTO{
			ID:             m.ID,
			Role:           string(m.Role),
			Content:        m.Content,
			SequenceNumber: m.SequenceNumber,
			CreatedAt:      m.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

// PaginatedResponse wraps a page of results.
type PaginatedResponse struct {
	Data   interface{} `json:"data"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}
