package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/chatlyhq/chatly/models"
)

type OutboxRepository interface {
	FetchUnpublished(limit int) ([]models.OutboxEvent, error)
	MarkPublished(id uuid.UUID) error
	MarkFailed(id uuid.UUID) error
}

type outboxRepo struct {
	DB *gorm.DB
}

func NewOutboxRepo(db *GormDB) OutboxRepository {
	return &outboxRepo{db.DB}
}

func (r *outboxRepo) FetchUnpublished(limit int) ([]models.OutboxEvent, error) {
	var events []models.OutboxEvent
	err := r.DB.Where("published_at IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, errors.Wrap(err, "could not fetch outbox events")
	}
	return events, nil
}

func (r *outboxRepo) MarkPublished(id uuid.UUID) error {
	now := time.Now()
	return r.DB.Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"published_at": &now,
			"attempts":     gorm.Expr("attempts + 1"),
		}).Error
}

func (r *outboxRepo) MarkFailed(id uuid.UUID) error {
	return r.DB.Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Update("attempts", gorm.Expr("attempts + 1")).Error
}
