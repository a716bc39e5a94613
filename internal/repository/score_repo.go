package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/skilins-platform/skilins-competition-api/internal/models"
)

// ScoreRepository defines data operations for per-parameter judge scores.
type ScoreRepository interface {
	CreateBatch(ctx context.Context, scores []models.Score) error
	ListBySubmission(ctx context.Context, submissionID uint) ([]models.Score, error)
}

type scoreRepository struct {
	db *gorm.DB
}

// NewScoreRepository instantiates the repository.
func NewScoreRepository(db *gorm.DB) ScoreRepository {
	return &scoreRepository{db: db}
}

func (r *scoreRepository) CreateBatch(ctx context.Context, scores []models.Score) error {
	if len(scores) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Create(&scores).Error
}

func (r *scoreRepository) ListBySubmission(ctx context.Context, submissionID uint) ([]models.Score, error) {
	var scores []models.Score
	if err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("id ASC").
		Find(&scores).Error; err != nil {
		return nil, err
	}

	return scores, nil
}
