package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/skilins-platform/skilins-competition-api/internal/models"
)

// SubmissionRepository defines data operations for competition submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	GetByUUID(ctx context.Context, uuid string) (models.Submission, error)
	ListByCompetition(ctx context.Context, competitionID uint) ([]models.Submission, error)
	ExistsForStudentAndCompetition(ctx context.Context, studentID, competitionID uint) (bool, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Preload("Competition").
		Preload("Content").
		Preload("Student.User")
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) GetByUUID(ctx context.Context, uuid string) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).Where("submissions.uuid = ?", uuid).First(&submission).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) ListByCompetition(ctx context.Context, competitionID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Preload("Content").
		Where("competition_id = ?", competitionID).
		Order("id ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) ExistsForStudentAndCompetition(ctx context.Context, studentID, competitionID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("student_id = ?", studentID).
		Where("competition_id = ?", competitionID).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}
