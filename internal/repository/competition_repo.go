package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/skilins-platform/skilins-competition-api/internal/models"
)

// CompetitionPartition selects how listings split on the end date.
type CompetitionPartition int

const (
	// PartitionAll keeps every competition regardless of end date.
	PartitionAll CompetitionPartition = iota
	// PartitionActive keeps competitions whose end date is still ahead.
	PartitionActive
	// PartitionFinished keeps competitions whose end date has passed.
	PartitionFinished
)

// CompetitionFilter narrows competition listings.
type CompetitionFilter struct {
	Search    string
	Type      string
	Partition CompetitionPartition
	Reference time.Time
	Page      int
	Limit     int
}

// CompetitionRepository defines data operations for competitions and their
// evaluation parameters.
type CompetitionRepository interface {
	Create(ctx context.Context, competition *models.Competition) error
	Update(ctx context.Context, competition *models.Competition) error
	GetByID(ctx context.Context, id uint) (models.Competition, error)
	GetBySlug(ctx context.Context, slug string) (models.Competition, error)
	GetDetailBySlugAndType(ctx context.Context, slug, contentType, statusFilter string) (models.Competition, error)
	List(ctx context.Context, filter CompetitionFilter) ([]models.Competition, int64, error)
	Delete(ctx context.Context, id uint) error
	// SlugExists reports whether another competition already owns the slug.
	// excludeID skips that competition's own row; zero means no exclusion.
	SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error)
	ReplaceParameters(ctx context.Context, competitionID uint, parameters []models.EvaluationParameter) error
	ListParameters(ctx context.Context, competitionID uint) ([]models.EvaluationParameter, error)
	ListEndedWithoutWinners(ctx context.Context, reference time.Time) ([]models.Competition, error)
}

type competitionRepository struct {
	db *gorm.DB
}

// NewCompetitionRepository instantiates the repository.
func NewCompetitionRepository(db *gorm.DB) CompetitionRepository {
	return &competitionRepository{db: db}
}

func (r *competitionRepository) Create(ctx context.Context, competition *models.Competition) error {
	return r.db.WithContext(ctx).Create(competition).Error
}

func (r *competitionRepository) Update(ctx context.Context, competition *models.Competition) error {
	return r.db.WithContext(ctx).Omit("Parameters", "Judges", "Submissions", "Winners").Save(competition).Error
}

func (r *competitionRepository) GetByID(ctx context.Context, id uint) (models.Competition, error) {
	var competition models.Competition
	if err := r.db.WithContext(ctx).
		Preload("Parameters").
		Preload("Judges.User").
		First(&competition, id).Error; err != nil {
		return models.Competition{}, err
	}

	return competition, nil
}

func (r *competitionRepository) GetBySlug(ctx context.Context, slug string) (models.Competition, error) {
	var competition models.Competition
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&competition).Error; err != nil {
		return models.Competition{}, err
	}

	return competition, nil
}

func (r *competitionRepository) GetDetailBySlugAndType(ctx context.Context, slug, contentType, statusFilter string) (models.Competition, error) {
	var competition models.Competition
	query := r.db.WithContext(ctx).
		Preload("Parameters").
		Preload("Judges.User").
		Preload("Submissions", func(db *gorm.DB) *gorm.DB {
			return db.Joins("JOIN contents ON contents.id = submissions.content_id").
				Where("contents.status = ?", statusFilter)
		}).
		Preload("Submissions.Content").
		Preload("Submissions.Student.User").
		Preload("Winners", func(db *gorm.DB) *gorm.DB {
			return db.Order("winners.rank ASC")
		}).
		Preload("Winners.Submission.Content").
		Preload("Winners.Submission.Student.User").
		Preload("Winners.Submission.Scores").
		Where("slug = ? AND type = ?", slug, contentType)

	if err := query.First(&competition).Error; err != nil {
		return models.Competition{}, err
	}

	return competition, nil
}

func (r *competitionRepository) List(ctx context.Context, filter CompetitionFilter) ([]models.Competition, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Competition{})

	if filter.Search != "" {
		query = query.Where("LOWER(title) LIKE LOWER(?)", "%"+filter.Search+"%")
	}

	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	switch filter.Partition {
	case PartitionActive:
		query = query.Where("end_date > ?", filter.Reference)
	case PartitionFinished:
		query = query.Where("end_date <= ?", filter.Reference)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.Limit > 0 {
		query = query.Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit)
	}

	var competitions []models.Competition
	if err := query.Order("end_date DESC").Find(&competitions).Error; err != nil {
		return nil, 0, err
	}

	return competitions, total, nil
}

func (r *competitionRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Competition{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *competitionRepository) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.Competition{}).
		Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *competitionRepository) ReplaceParameters(ctx context.Context, competitionID uint, parameters []models.EvaluationParameter) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("competition_id = ?", competitionID).
			Delete(&models.EvaluationParameter{}).Error; err != nil {
			return err
		}

		if len(parameters) == 0 {
			return nil
		}

		for i := range parameters {
			parameters[i].CompetitionID = competitionID
		}

		return tx.Create(&parameters).Error
	})
}

func (r *competitionRepository) ListParameters(ctx context.Context, competitionID uint) ([]models.EvaluationParameter, error) {
	var parameters []models.EvaluationParameter
	if err := r.db.WithContext(ctx).
		Where("competition_id = ?", competitionID).
		Order("id ASC").
		Find(&parameters).Error; err != nil {
		return nil, err
	}

	return parameters, nil
}

func (r *competitionRepository) ListEndedWithoutWinners(ctx context.Context, reference time.Time) ([]models.Competition, error) {
	var competitions []models.Competition
	if err := r.db.WithContext(ctx).
		Where("end_date <= ?", reference).
		Where("NOT EXISTS (SELECT 1 FROM winners WHERE winners.competition_id = competitions.id)").
		Find(&competitions).Error; err != nil {
		return nil, err
	}

	return competitions, nil
}
