package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MessageTypeText     = "text"
	MessageTypeImage    = "image"
	MessageTypeVideo    = "video"
	MessageTypeAudio    = "audio"
	MessageTypeDocument = "document"
)

// MaxAttachmentSize caps uploaded chat files at 20 MB.
const MaxAttachmentSize = 20 * 1024 * 1024

// attachmentCategories maps an allowed file extension to the message type it
// produces. Anything not listed is rejected.
var attachmentCategories = map[string]string{
	"jpg":  MessageTypeImage,
	"jpeg": MessageTypeImage,
	"png":  MessageTypeImage,
	"gif":  MessageTypeImage,
	"mp4":  MessageTypeVideo,
	"mov":  MessageTypeVideo,
	"avi":  MessageTypeVideo,
	"mp3":  MessageTypeAudio,
	"wav":  MessageTypeAudio,
	"pdf":  MessageTypeDocument,
	"doc":  MessageTypeDocument,
	"docx": MessageTypeDocument,
	"xls":  MessageTypeDocument,
	"xlsx": MessageTypeDocument,
}

// CategoryForExtension classifies a lowercase extension (no dot) into a
// message type. ok is false for extensions outside the allow-list.
func CategoryForExtension(ext string) (string, bool) {
	category, ok := attachmentCategories[ext]
	return category, ok
}

type Message struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID      `gorm:"type:uuid;not null;index" json:"conversation_id"`
	UserID         uint           `gorm:"not null" json:"user_id"`
	Sender         User           `gorm:"foreignKey:UserID" json:"-"`
	Body           string         `json:"body"`
	Type           string         `gorm:"not null;default:text" json:"type"`
	IsEdited       bool           `gorm:"default:false" json:"is_edited"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Attachments []Attachment `gorm:"foreignKey:MessageID" json:"attachments"`
}

type Attachment struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	MessageID uuid.UUID      `gorm:"type:uuid;not null;index" json:"message_id"`
	FilePath  string         `gorm:"not null;check:file_path <> ''" json:"file_path"`
	FileType  string         `gorm:"not null" json:"file_type"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// AttachmentResource is the attachment block in read and broadcast payloads.
type AttachmentResource struct {
	ID      uuid.UUID `json:"id"`
	Type    string    `json:"type"`
	FileURL string    `json:"file_url"`
}

// MessageResource is the read shape of a message.
type MessageResource struct {
	ID          uuid.UUID            `json:"id"`
	Body        string               `json:"body"`
	UserID      uint                 `json:"user_id"`
	CreatedAt   string               `json:"created_at"`
	User        UserSummary          `json:"user"`
	Attachments []AttachmentResource `json:"attachments"`
}

// MessageSentEvent is broadcast on "chat.<conversation_id>" after a commit.
type MessageSentEvent struct {
	Message MessageSentPayload `json:"message"`
}

type MessageSentPayload struct {
	ID          uuid.UUID            `json:"id"`
	Body        string               `json:"body"`
	UserID      uint                 `json:"user_id"`
	CreatedAt   string               `json:"created_at"`
	Attachments []AttachmentResource `json:"attachments"`
	User        *MessageSentUser     `json:"user"`
}

type MessageSentUser struct {
	Name string `json:"name"`
}

// NotificationEvent is broadcast on "notifications.<user_id>" per recipient.
type NotificationEvent struct {
	SenderName     string    `json:"sender_name"`
	SenderID       uint      `json:"sender_id"`
	Content        string    `json:"content"`
	ProfilePicture string    `json:"profile_picture"`
	ConversationID uuid.UUID `json:"conversation_id"`
	CreatedAt      string    `json:"created_at"`
}
