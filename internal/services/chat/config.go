// File: internal/services/chat/config.go
package chat

import (
	"fmt"
	"time"
)

type Config struct {
	// History
	HistoryWindow int // prior messages handed to the intent parser

	// Timeouts
	ToolTimeout    time.Duration // per tool execution
	PersistTimeout time.Duration // writing the reply after the request context is gone

	// Confirmation
	ConfirmDestructive bool          // ask before delete_task runs
	PendingTTL         time.Duration // how long a confirmation prompt stays answerable

	// Input
	MaxMessageLength int // in runes
}

func (c *Config) Validate() error {
	if c.HistoryWindow < 0 {
		return fmt.Errorf("history_window cannot be negative")
	}
	if c.HistoryWindow > 100 {
		return fmt.Errorf("history_window cannot exceed 100")
	}
	if c.ToolTimeout <= 0 {
		return fmt.Errorf("tool_timeout must be positive")
	}
	if c.PersistTimeout <= 0 {
		return fmt.Errorf("persist_timeout must be positive")
	}
	if c.ConfirmDestructive && c.PendingTTL <= 0 {
		return fmt.Errorf("pending_ttl must be positive when confirmation is enabled")
	}
	if c.MaxMessageLength <= 0 {
		return fmt.Errorf("max_message_length must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		HistoryWindow:      10,
		ToolTimeout:        10 * time.Second,
		PersistTimeout:     5 * time.Second,
		ConfirmDestructive: true,
		PendingTTL:         10 * time.Minute,
		MaxMessageLength:   1000,
	}
}
