package db

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/chatlyhq/chatly/models"
)

type MessageRepository interface {
	SaveMessageTx(msg *models.Message, attachment *models.Attachment,
		notifications []models.Notification, events []models.OutboxEvent) error
	ListByConversation(conversationID uuid.UUID) ([]models.Message, error)
	CountByConversation(conversationID uuid.UUID) (int64, error)
}

type messageRepo struct {
	DB *gorm.DB
}

func NewMessageRepo(db *GormDB) MessageRepository {
	return &messageRepo{db.DB}
}

// SaveMessageTx persists a message, its optional attachment, the per-recipient
// notification records and the outbox events in a single transaction. Either
// all rows exist after commit or none do; the file already uploaded to object
// storage is not covered and may be orphaned on rollback.
func (r *messageRepo) SaveMessageTx(msg *models.Message, attachment *models.Attachment,
	notifications []models.Notification, events []models.OutboxEvent) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return errors.Wrap(err, "could not save message")
		}
		if attachment != nil {
			attachment.MessageID = msg.ID
			if err := tx.Create(attachment).Error; err != nil {
				return errors.Wrap(err, "could not save attachment")
			}
		}
		for i := range notifications {
			notifications[i].MessageID = msg.ID
			if err := tx.Create(&notifications[i]).Error; err != nil {
				return errors.Wrap(err, "could not save notification")
			}
		}
		for i := range events {
			if err := tx.Create(&events[i]).Error; err != nil {
				return errors.Wrap(err, "could not enqueue event")
			}
		}
		// keep the conversation list ordered by recency
		if err := tx.Model(&models.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Update("updated_at", msg.CreatedAt).Error; err != nil {
			return errors.Wrap(err, "could not touch conversation")
		}
		return nil
	})
}

func (r *messageRepo) ListByConversation(conversationID uuid.UUID) ([]models.Message, error) {
	var messages []models.Message
	err := r.DB.Where("conversation_id = ?", conversationID).
		Preload("Attachments").
		Preload("Sender").
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, errors.Wrap(err, "could not list messages")
	}
	return messages, nil
}

func (r *messageRepo) CountByConversation(conversationID uuid.UUID) (int64, error) {
	var count int64
	err := r.DB.Model(&models.Message{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error
	return count, err
}
