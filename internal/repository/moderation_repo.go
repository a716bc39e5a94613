package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/skilins-platform/skilins-competition-api/internal/models"
)

// ModerationEventRepository persists the notification audit trail written by
// the moderation workflow.
type ModerationEventRepository interface {
	Create(ctx context.Context, event *models.ModerationEvent) error
	MarkSent(ctx context.Context, id uint, sentAt time.Time) error
}

type moderationEventRepository struct {
	db *gorm.DB
}

// NewModerationEventRepository instantiates the repository.
func NewModerationEventRepository(db *gorm.DB) ModerationEventRepository {
	return &moderationEventRepository{db: db}
}

func (r *moderationEventRepository) Create(ctx context.Context, event *models.ModerationEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *moderationEventRepository) MarkSent(ctx context.Context, id uint, sentAt time.Time) error {
	return r.db.WithContext(ctx).Model(&models.ModerationEvent{}).
		Where("id = ?", id).
		Update("sent_at", sentAt).Error
}
