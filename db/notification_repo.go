package db

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/chatlyhq/chatly/models"
)

type NotificationRepository interface {
	ListForUser(userID uint, limit int) ([]models.Notification, error)
	MarkRead(userID uint, notificationID uint) error
}

type notificationRepo struct {
	DB *gorm.DB
}

func NewNotificationRepo(db *GormDB) NotificationRepository {
	return &notificationRepo{db.DB}
}

func (r *notificationRepo) ListForUser(userID uint, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, errors.Wrap(err, "could not list notifications")
	}
	return notifications, nil
}

func (r *notificationRepo) MarkRead(userID uint, notificationID uint) error {
	return r.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true).Error
}
