// File: internal/domain/conversation.go
package domain

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Conversation is one chat session owned by exactly one user.
type Conversation struct {
	ID            string          `gorm:"primaryKey;size:36" json:"id"`
	UserID        string          `gorm:"not null;index" json:"-"`
	Title         string          `gorm:"not null;default:''" json:"title"` // empty until the first message names it
	PendingAction *datatypes.JSON `gorm:"column:pending_action" json:"-"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// PendingAction is a destructive operation waiting for the user to confirm it
// on their next turn.
type PendingAction struct {
	Tool        string    `json:"tool"`
	TaskID      uint      `json:"task_id"`
	TaskTitle   string    `json:"task_title"`
	RequestedAt time.Time `json:"requested_at"`
}

// Pending decodes the stored pending action. It returns nil when none is set.
func (c *Conversation) Pending() (*PendingAction, error) {
	if c.PendingAction == nil || len(*c.PendingAction) == 0 || string(*c.PendingAction) == "null" {
		return nil, nil
	}
	var action PendingAction
	if err := json.Unmarshal(*c.PendingAction, &action); err != nil {
		return nil, err
	}
	return &action, nil
}

// EncodePendingAction turns an action into its column value.
func EncodePendingAction(action PendingAction) (datatypes.JSON, error) {
	raw, err := json.Marshal(action)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
