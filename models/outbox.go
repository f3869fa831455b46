package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChatChannel is the broadcast channel for a conversation's message feed.
func ChatChannel(conversationID uuid.UUID) string {
	return "chat." + conversationID.String()
}

// UserNotificationChannel is the broadcast channel for one user's
// notifications.
func UserNotificationChannel(userID uint) string {
	return fmt.Sprintf("notifications.%d", userID)
}

// OutboxEvent is a broadcast enqueued inside the message-send transaction.
// The dispatcher publishes unpublished rows and stamps PublishedAt, so an
// event survives a crash between commit and publish (at-least-once).
type OutboxEvent struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Channel     string     `gorm:"not null;index" json:"channel"`
	Payload     []byte     `gorm:"not null" json:"payload"`
	Attempts    int        `gorm:"default:0" json:"attempts"`
	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt *time.Time `gorm:"index" json:"published_at"`
}
