package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/skilins-platform/skilins-competition-api/internal/models"
)

// WinnerRepository defines data operations for recorded competition winners.
type WinnerRepository interface {
	CreateBatch(ctx context.Context, winners []models.Winner) error
	ExistsForCompetition(ctx context.Context, competitionID uint) (bool, error)
	ListByCompetition(ctx context.Context, competitionID uint) ([]models.Winner, error)
}

type winnerRepository struct {
	db *gorm.DB
}

// NewWinnerRepository instantiates the repository.
func NewWinnerRepository(db *gorm.DB) WinnerRepository {
	return &winnerRepository{db: db}
}

func (r *winnerRepository) CreateBatch(ctx context.Context, winners []models.Winner) error {
	if len(winners) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Create(&winners).Error
}

func (r *winnerRepository) ExistsForCompetition(ctx context.Context, competitionID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Winner{}).
		Where("competition_id = ?", competitionID).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *winnerRepository) ListByCompetition(ctx context.Context, competitionID uint) ([]models.Winner, error) {
	var winners []models.Winner
	if err := r.db.WithContext(ctx).
		Preload("Submission.Content").
		Preload("Submission.Student.User").
		Where("competition_id = ?", competitionID).
		Order("rank ASC").
		Find(&winners).Error; err != nil {
		return nil, err
	}

	return winners, nil
}
