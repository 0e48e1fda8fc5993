// File: internal/domain/tool_call.go
package domain

import (
	"time"

	"gorm.io/datatypes"
)

type ToolCallStatus string

const (
	ToolCallPending ToolCallStatus = "pending"
	ToolCallSuccess ToolCallStatus = "success"
	ToolCallError   ToolCallStatus = "error"
)

// ToolCall is the audit record of one tool invocation. It is created right
// before the tool runs and finalized together with the assistant message
// that reports its result.
type ToolCall struct {
	ID              uint            `gorm:"primarykey" json:"id"`
	ConversationID  string          `gorm:"not null;index" json:"conversation_id"`
	MessageID       *uint           `json:"message_id"`
	ToolName        string          `gorm:"not null" json:"tool_name"`
	Input           datatypes.JSON  `gorm:"column:input;not null" json:"input"`
	Output          *datatypes.JSON `gorm:"column:output" json:"output,omitempty"`
	Status          ToolCallStatus  `gorm:"not null" json:"status"`
	ErrorMessage    *string         `json:"error_message,omitempty"`
	ExecutionTimeMS int64           `gorm:"column:execution_time_ms" json:"execution_time_ms"`
	CreatedAt       time.Time       `json:"created_at"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
}
