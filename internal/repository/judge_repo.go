package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/skilins-platform/skilins-competition-api/internal/models"
)

// JudgeRepository defines data operations for judge assignments and the
// per-competition evaluation latch.
type JudgeRepository interface {
	GetByUserID(ctx context.Context, userID uint) (models.Judge, error)
	GetByUserAndCompetition(ctx context.Context, userID, competitionID uint) (models.Judge, error)
	AssignToCompetition(ctx context.Context, judgeID, competitionID uint) error
	ListByCompetition(ctx context.Context, competitionID uint) ([]models.Judge, error)
	// MarkEvaluated sets the evaluation latch atomically. It reports false
	// when the latch was already set, without touching the stored value.
	MarkEvaluated(ctx context.Context, judgeID uint, score float64, comment string) (bool, error)
	// ClearEvaluation releases the latch after a failed score write so the
	// judge can retry.
	ClearEvaluation(ctx context.Context, judgeID uint) error
}

type judgeRepository struct {
	db *gorm.DB
}

// NewJudgeRepository instantiates the repository.
func NewJudgeRepository(db *gorm.DB) JudgeRepository {
	return &judgeRepository{db: db}
}

func (r *judgeRepository) GetByUserID(ctx context.Context, userID uint) (models.Judge, error) {
	var judge models.Judge
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		First(&judge).Error; err != nil {
		return models.Judge{}, err
	}

	return judge, nil
}

func (r *judgeRepository) GetByUserAndCompetition(ctx context.Context, userID, competitionID uint) (models.Judge, error) {
	var judge models.Judge
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Where("competition_id = ?", competitionID).
		First(&judge).Error; err != nil {
		return models.Judge{}, err
	}

	return judge, nil
}

// AssignToCompetition re-links the judge; a judge rides on at most one
// competition, so the last assignment wins. The evaluation latch resets only
// when the judge moves to a different competition; re-asserting the current
// assignment leaves an already-recorded evaluation intact.
func (r *judgeRepository) AssignToCompetition(ctx context.Context, judgeID, competitionID uint) error {
	result := r.db.WithContext(ctx).Model(&models.Judge{}).
		Where("id = ?", judgeID).
		Where("competition_id IS NULL OR competition_id <> ?", competitionID).
		Updates(map[string]interface{}{
			"competition_id": competitionID,
			"score":          nil,
			"comment":        "",
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Judge{}).
		Where("id = ?", judgeID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *judgeRepository) ListByCompetition(ctx context.Context, competitionID uint) ([]models.Judge, error) {
	var judges []models.Judge
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("competition_id = ?", competitionID).
		Find(&judges).Error; err != nil {
		return nil, err
	}

	return judges, nil
}

func (r *judgeRepository) MarkEvaluated(ctx context.Context, judgeID uint, score float64, comment string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Judge{}).
		Where("id = ?", judgeID).
		Where("score IS NULL").
		Updates(map[string]interface{}{
			"score":   score,
			"comment": comment,
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *judgeRepository) ClearEvaluation(ctx context.Context, judgeID uint) error {
	return r.db.WithContext(ctx).Model(&models.Judge{}).
		Where("id = ?", judgeID).
		Updates(map[string]interface{}{
			"score":   nil,
			"comment": "",
		}).Error
}
