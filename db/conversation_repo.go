package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/chatlyhq/chatly/models"
)

type ConversationRepository interface {
	FindPrivateByPairKey(pairKey string) (*models.Conversation, error)
	FindGroupByExactMembers(userIDs []uint) (*models.Conversation, error)
	CreateWithMembers(conv *models.Conversation, adminID uint, memberIDs []uint) error
	ListForUser(userID uint) ([]models.Conversation, error)
	HasActiveMember(conversationID uuid.UUID, userID uint) (bool, error)
	ActiveMembers(conversationID uuid.UUID) ([]models.User, error)
	ActiveMemberIDs(conversationID uuid.UUID) ([]uint, error)
	LastMessage(conversationID uuid.UUID) (*models.Message, error)
}

type conversationRepo struct {
	DB *gorm.DB
}

func NewConversationRepo(db *GormDB) ConversationRepository {
	return &conversationRepo{db.DB}
}

func (r *conversationRepo) FindPrivateByPairKey(pairKey string) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.DB.Where("type = ? AND pair_key = ?", models.ConversationTypePrivate, pairKey).
		First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// FindGroupByExactMembers returns the group conversation whose active
// membership set equals userIDs exactly. A superset or subset does not match.
func (r *conversationRepo) FindGroupByExactMembers(userIDs []uint) (*models.Conversation, error) {
	sub := r.DB.Table("chats").
		Select("conversation_id").
		Where("left_at IS NULL").
		Group("conversation_id").
		Having("COUNT(DISTINCT user_id) = ?", len(userIDs)).
		Having("SUM(CASE WHEN user_id IN ? THEN 1 ELSE 0 END) = ?", userIDs, len(userIDs))

	var conv models.Conversation
	err := r.DB.Where("type = ?", models.ConversationTypeGroup).
		Where("id IN (?)", sub).
		First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// CreateWithMembers inserts the conversation and its membership rows in one
// transaction. adminID gets role admin, everyone else member, all joined now.
func (r *conversationRepo) CreateWithMembers(conv *models.Conversation, adminID uint, memberIDs []uint) error {
	now := time.Now()
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return errors.Wrap(err, "could not create conversation")
		}
		for _, userID := range memberIDs {
			role := models.ChatRoleMember
			if userID == adminID {
				role = models.ChatRoleAdmin
			}
			chat := models.Chat{
				UserID:         userID,
				ConversationID: conv.ID,
				Role:           role,
				JoinedAt:       now,
			}
			if err := tx.Create(&chat).Error; err != nil {
				return errors.Wrap(err, "could not attach member")
			}
		}
		return nil
	})
}

func (r *conversationRepo) ListForUser(userID uint) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := r.DB.
		Joins("JOIN chats ON chats.conversation_id = conversations.id").
		Where("chats.user_id = ? AND chats.left_at IS NULL", userID).
		Order("conversations.updated_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, errors.Wrap(err, "could not list conversations")
	}
	return convs, nil
}

func (r *conversationRepo) HasActiveMember(conversationID uuid.UUID, userID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&models.Chat{}).
		Where("conversation_id = ? AND user_id = ? AND left_at IS NULL", conversationID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *conversationRepo) ActiveMembers(conversationID uuid.UUID) ([]models.User, error) {
	var users []models.User
	err := r.DB.
		Joins("JOIN chats ON chats.user_id = users.id").
		Where("chats.conversation_id = ? AND chats.left_at IS NULL", conversationID).
		Find(&users).Error
	if err != nil {
		return nil, errors.Wrap(err, "could not load members")
	}
	return users, nil
}

func (r *conversationRepo) ActiveMemberIDs(conversationID uuid.UUID) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&models.Chat{}).
		Where("conversation_id = ? AND left_at IS NULL", conversationID).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "could not load member ids")
	}
	return ids, nil
}

func (r *conversationRepo) LastMessage(conversationID uuid.UUID) (*models.Message, error) {
	var msg models.Message
	err := r.DB.Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}
