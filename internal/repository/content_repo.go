package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/skilins-platform/skilins-competition-api/internal/models"
)

// ContentRepository defines data operations for polymorphic content records
// and their kind-specific detail rows.
type ContentRepository interface {
	Create(ctx context.Context, content *models.Content) error
	GetByUUID(ctx context.Context, uuid string) (models.Content, error)
	UpdateStatus(ctx context.Context, uuid, status string) error
	Delete(ctx context.Context, id uint) error
}

type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository instantiates the repository.
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

// Create persists the content row together with its detail row in one
// transaction via GORM association handling.
func (r *contentRepository) Create(ctx context.Context, content *models.Content) error {
	return r.db.WithContext(ctx).Create(content).Error
}

func (r *contentRepository) GetByUUID(ctx context.Context, uuid string) (models.Content, error) {
	var content models.Content
	if err := r.db.WithContext(ctx).
		Preload("AudioDetail").
		Preload("VideoDetail").
		Preload("PrakerinDetail").
		Where("uuid = ?", uuid).
		First(&content).Error; err != nil {
		return models.Content{}, err
	}

	return content, nil
}

func (r *contentRepository) UpdateStatus(ctx context.Context, uuid, status string) error {
	result := r.db.WithContext(ctx).Model(&models.Content{}).
		Where("uuid = ?", uuid).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *contentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Content{}, id).Error
}
