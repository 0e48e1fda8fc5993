// File: internal/domain/message.go
package domain

import "time"

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message represents a single turn within a conversation. Messages are
// immutable once written.
type Message struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	ConversationID string    `gorm:"not null" json:"conversation_id"`
	Role           Role      `gorm:"not null" json:"role"`
	Content        string    `gorm:"not null" json:"content"`
	SequenceNumber int       `gorm:"not null" json:"sequence_number"` // unique per conversation, starts at 0
	CreatedAt      time.Time `json:"created_at"`
}
