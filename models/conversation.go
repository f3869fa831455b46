package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	ConversationTypePrivate = "private"
	ConversationTypeGroup   = "group"
)

const (
	ChatRoleAdmin  = "admin"
	ChatRoleMember = "member"
)

type Conversation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `json:"name"`
	Type      string    `gorm:"not null;default:private" json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// PairKey is "<minUserID>:<maxUserID>" for private conversations and null
	// for groups. The unique index makes concurrent create requests for the
	// same pair collapse onto one row instead of racing.
	PairKey *string `gorm:"uniqueIndex" json:"-"`

	// Users carries the active participants when loaded by the repository.
	// The relation lives in the chats table and is queried explicitly.
	Users    []User    `gorm:"-" json:"participants,omitempty"`
	Messages []Message `gorm:"foreignKey:ConversationID" json:"-"`
}

// Chat is the membership join record between a user and a conversation.
// An active membership has no left_at timestamp.
type Chat struct {
	Model
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index" json:"conversation_id"`
	Role           string    `gorm:"not null;default:member" json:"role"`
	JoinedAt       time.Time `gorm:"not null" json:"joined_at"`
	LeftAt         *time.Time `json:"left_at"`
}

// PrivatePairKey builds the dedup key for a private conversation between two
// users, independent of argument order.
func PrivatePairKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// ConversationListItem is one row of the conversation list read.
type ConversationListItem struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Type        string           `json:"type"`
	OtherUser   *UserSummary     `json:"other_user"`
	LastMessage *LastMessageInfo `json:"last_message"`
}

type LastMessageInfo struct {
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
