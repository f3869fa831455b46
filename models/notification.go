package models

import "github.com/google/uuid"

// Notification is the durable per-recipient record written alongside a
// message. Delivery over the realtime channel is separate and best-effort;
// this row is what a client reconciles against on reconnect.
type Notification struct {
	Model
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	MessageID      uuid.UUID `gorm:"type:uuid;not null" json:"message_id"`
	SenderID       uint      `gorm:"not null" json:"sender_id"`
	Content        string    `json:"content"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null" json:"conversation_id"`
	IsRead         bool      `gorm:"default:false" json:"is_read"`
}
