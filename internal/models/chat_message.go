package models

import (
	"time"

	"smartspend/internal/uuid"

	"gorm.io/gorm"
)

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry in a user's append-only chatbot history.
type ChatMessage struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(32);not null;index:idx_chat_messages_user_created,priority:1" json:"user_id"`
	Role      ChatRole  `gorm:"type:varchar(16);not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"index:idx_chat_messages_user_created,priority:2" json:"created_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New()
	}
	return nil
}
