package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/skilins-platform/skilins-competition-api/internal/models"
)

// RatingRepository exposes the public rating aggregate consumed by the
// scoring engine.
type RatingRepository interface {
	// AverageForContent returns nil when the content has no ratings yet.
	AverageForContent(ctx context.Context, contentID uint) (*float64, error)
}

type ratingRepository struct {
	db *gorm.DB
}

// NewRatingRepository instantiates the repository.
func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) AverageForContent(ctx context.Context, contentID uint) (*float64, error) {
	var average *float64
	if err := r.db.WithContext(ctx).Model(&models.Rating{}).
		Where("content_id = ?", contentID).
		Select("AVG(value)").
		Scan(&average).Error; err != nil {
		return nil, err
	}

	return average, nil
}
