package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skilins-platform/skilins-competition-api/internal/dto"
	"github.com/skilins-platform/skilins-competition-api/internal/models"
	"github.com/skilins-platform/skilins-competition-api/internal/repository"
)

// ErrCompetitionNotFound indicates a competition could not be located.
var ErrCompetitionNotFound = errors.New("competition not found")

// ErrJudgeNotFound indicates a referenced judge does not exist.
var ErrJudgeNotFound = errors.New("judge not found")

// ErrDeadlineAfterEnd indicates the submission deadline falls after the end date.
var ErrDeadlineAfterEnd = errors.New("submission deadline must not be after the end date")

// ErrInvalidStatusFilter indicates an unrecognised content status filter.
var ErrInvalidStatusFilter = errors.New("invalid status filter")

// ErrParametersLocked indicates the evaluation parameters can no longer
// change because judging has started.
var ErrParametersLocked = errors.New("evaluation parameters cannot change after judging has started")

// CompetitionService maintains competition definitions, their evaluation
// parameters and judge roster.
type CompetitionService interface {
	Create(ctx context.Context, payload dto.CompetitionCreateRequest) (dto.CompetitionResponse, error)
	Update(ctx context.Context, id uint, payload dto.CompetitionUpdateRequest) (dto.CompetitionResponse, error)
	List(ctx context.Context, query dto.CompetitionListQuery, partition repository.CompetitionPartition) (dto.PagedCompetitionsResponse, error)
	GetDetail(ctx context.Context, slug, contentType, statusFilter string) (dto.CompetitionDetailResponse, error)
	Delete(ctx context.Context, id uint) error
}

type competitionService struct {
	competitions repository.CompetitionRepository
	judges       repository.JudgeRepository
	validator    *validator.Validate
	sanitizer    *bluemonday.Policy
	cache        *redis.Client
	cacheTTL     time.Duration
	logger       zerolog.Logger
	now          func() time.Time
}

// NewCompetitionService constructs a CompetitionService instance.
func NewCompetitionService(competitions repository.CompetitionRepository, judges repository.JudgeRepository, validate *validator.Validate, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) CompetitionService {
	return &competitionService{
		competitions: competitions,
		judges:       judges,
		validator:    validate,
		sanitizer:    bluemonday.UGCPolicy(),
		cache:        cache,
		cacheTTL:     cacheTTL,
		logger:       logger.With().Str("component", "competition_service").Logger(),
		now:          time.Now,
	}
}

func (s *competitionService) Create(ctx context.Context, payload dto.CompetitionCreateRequest) (dto.CompetitionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CompetitionResponse{}, err
	}

	if payload.SubmissionDeadline.After(payload.EndDate) {
		return dto.CompetitionResponse{}, ErrDeadlineAfterEnd
	}

	slug, err := s.uniqueSlug(ctx, payload.Title, 0)
	if err != nil {
		return dto.CompetitionResponse{}, err
	}

	competition := models.Competition{
		UUID:               uuid.NewString(),
		Slug:               slug,
		Title:              strings.TrimSpace(payload.Title),
		Type:               payload.Type,
		Description:        s.sanitizer.Sanitize(payload.Description),
		Guide:              s.sanitizer.Sanitize(payload.Guide),
		StartDate:          payload.StartDate,
		EndDate:            payload.EndDate,
		SubmissionDeadline: payload.SubmissionDeadline,
		WinnerCount:        payload.WinnerCount,
		Parameters:         buildParameters(payload.Parameters),
	}

	if err := s.competitions.Create(ctx, &competition); err != nil {
		return dto.CompetitionResponse{}, err
	}

	if err := s.assignJudges(ctx, competition.ID, payload.JudgeUserIDs); err != nil {
		return dto.CompetitionResponse{}, err
	}

	s.logger.Info().Uint("competition_id", competition.ID).Str("slug", competition.Slug).Msg("competition created")

	return dto.NewCompetitionResponse(competition), nil
}

func (s *competitionService) Update(ctx context.Context, id uint, payload dto.CompetitionUpdateRequest) (dto.CompetitionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CompetitionResponse{}, err
	}

	if payload.SubmissionDeadline.After(payload.EndDate) {
		return dto.CompetitionResponse{}, ErrDeadlineAfterEnd
	}

	competition, err := s.competitions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CompetitionResponse{}, ErrCompetitionNotFound
		}
		return dto.CompetitionResponse{}, err
	}

	previousSlug := competition.Slug

	// The slug always follows the current title, never a cached value. The
	// competition's own row is excluded from the collision check so a
	// cosmetic title edit keeps the slug it already owns.
	if !strings.EqualFold(competition.Title, payload.Title) {
		slug, err := s.uniqueSlug(ctx, payload.Title, competition.ID)
		if err != nil {
			return dto.CompetitionResponse{}, err
		}
		competition.Slug = slug
	}

	competition.Title = strings.TrimSpace(payload.Title)
	competition.Type = payload.Type
	competition.Description = s.sanitizer.Sanitize(payload.Description)
	competition.Guide = s.sanitizer.Sanitize(payload.Guide)
	competition.StartDate = payload.StartDate
	competition.EndDate = payload.EndDate
	competition.SubmissionDeadline = payload.SubmissionDeadline
	competition.WinnerCount = payload.WinnerCount

	if err := s.competitions.Update(ctx, &competition); err != nil {
		return dto.CompetitionResponse{}, err
	}

	if err := s.replaceParametersIfChanged(ctx, competition.ID, buildParameters(payload.Parameters)); err != nil {
		return dto.CompetitionResponse{}, err
	}

	if err := s.assignJudges(ctx, competition.ID, payload.JudgeUserIDs); err != nil {
		return dto.CompetitionResponse{}, err
	}

	s.invalidateDetailCache(ctx, previousSlug, competition.Slug, competition.Type)
	s.logger.Info().Uint("competition_id", competition.ID).Msg("competition updated")

	return dto.NewCompetitionResponse(competition), nil
}

func (s *competitionService) List(ctx context.Context, query dto.CompetitionListQuery, partition repository.CompetitionPartition) (dto.PagedCompetitionsResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return dto.PagedCompetitionsResponse{}, err
	}

	filter := repository.CompetitionFilter{
		Search:    strings.TrimSpace(query.Search),
		Type:      query.Type,
		Partition: partition,
		Reference: s.now(),
		Page:      query.Page,
		Limit:     query.Limit,
	}

	competitions, total, err := s.competitions.List(ctx, filter)
	if err != nil {
		return dto.PagedCompetitionsResponse{}, err
	}

	page := query.Page
	if page < 1 {
		page = 1
	}

	totalPages := 1
	if query.Limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(query.Limit)))
		if totalPages < 1 {
			totalPages = 1
		}
	}

	return dto.PagedCompetitionsResponse{
		Items:      dto.NewCompetitionResponseSlice(competitions),
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}, nil
}

func (s *competitionService) GetDetail(ctx context.Context, slug, contentType, statusFilter string) (dto.CompetitionDetailResponse, error) {
	if statusFilter == "" {
		statusFilter = models.ContentStatusApproved
	}
	if !models.ValidContentStatus(statusFilter) {
		return dto.CompetitionDetailResponse{}, fmt.Errorf("%w: %q", ErrInvalidStatusFilter, statusFilter)
	}

	cacheKey := detailCacheKey(slug, contentType, statusFilter)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.CompetitionDetailResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Str("slug", slug).Msg("competition detail cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read competition detail cache")
		}
	}

	competition, err := s.competitions.GetDetailBySlugAndType(ctx, slug, contentType, statusFilter)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CompetitionDetailResponse{}, ErrCompetitionNotFound
		}
		return dto.CompetitionDetailResponse{}, err
	}

	response := dto.NewCompetitionDetailResponse(competition)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store competition detail cache")
			}
		}
	}

	return response, nil
}

func (s *competitionService) Delete(ctx context.Context, id uint) error {
	competition, err := s.competitions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCompetitionNotFound
		}
		return err
	}

	if err := s.competitions.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCompetitionNotFound
		}
		return err
	}

	s.invalidateDetailCache(ctx, competition.Slug, competition.Slug, competition.Type)
	s.logger.Info().Uint("competition_id", id).Msg("competition deleted")

	return nil
}

func (s *competitionService) assignJudges(ctx context.Context, competitionID uint, judgeUserIDs []uint) error {
	for _, userID := range judgeUserIDs {
		judge, err := s.judges.GetByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user %d", ErrJudgeNotFound, userID)
			}
			return err
		}

		// Last write wins: a judge rides on at most one competition.
		if err := s.judges.AssignToCompetition(ctx, judge.ID, competitionID); err != nil {
			return err
		}
	}

	return nil
}

// uniqueSlug derives a slug from the title and resolves collisions by
// suffixing an incrementing counter. excludeID skips the competition's own
// row during updates; zero means no exclusion.
func (s *competitionService) uniqueSlug(ctx context.Context, title string, excludeID uint) (string, error) {
	base := slugify(title)

	candidate := base
	for counter := 2; ; counter++ {
		exists, err := s.competitions.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}

// replaceParametersIfChanged swaps the parameter set only when the payload
// actually differs from the stored one. Replacement re-creates the rows, so
// it is refused once any judge has evaluated: the existing Score rows
// reference the current parameter IDs and must keep counting.
func (s *competitionService) replaceParametersIfChanged(ctx context.Context, competitionID uint, desired []models.EvaluationParameter) error {
	current, err := s.competitions.ListParameters(ctx, competitionID)
	if err != nil {
		return err
	}
	if parametersEqual(current, desired) {
		return nil
	}

	judges, err := s.judges.ListByCompetition(ctx, competitionID)
	if err != nil {
		return err
	}
	for _, judge := range judges {
		if judge.HasEvaluated() {
			return ErrParametersLocked
		}
	}

	return s.competitions.ReplaceParameters(ctx, competitionID, desired)
}

func parametersEqual(current, desired []models.EvaluationParameter) bool {
	if len(current) != len(desired) {
		return false
	}
	for i := range current {
		if current[i].Name != desired[i].Name || current[i].Weight != desired[i].Weight {
			return false
		}
	}
	return true
}

func (s *competitionService) invalidateDetailCache(ctx context.Context, previousSlug, currentSlug, contentType string) {
	if s.cache == nil {
		return
	}

	statuses := []string{models.ContentStatusPending, models.ContentStatusApproved, models.ContentStatusRejected}
	keys := make([]string, 0, len(statuses)*2)
	for _, status := range statuses {
		keys = append(keys, detailCacheKey(previousSlug, contentType, status))
		if currentSlug != previousSlug {
			keys = append(keys, detailCacheKey(currentSlug, contentType, status))
		}
	}

	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate competition detail cache")
	}
}

func detailCacheKey(slug, contentType, status string) string {
	return fmt.Sprintf("competition:detail:%s:%s:%s", slug, contentType, status)
}

func buildParameters(requests []dto.EvaluationParameterRequest) []models.EvaluationParameter {
	parameters := make([]models.EvaluationParameter, 0, len(requests))
	for _, request := range requests {
		parameters = append(parameters, models.EvaluationParameter{
			Name:   strings.TrimSpace(request.Name),
			Weight: request.Weight,
		})
	}
	return parameters
}

func slugify(title string) string {
	base := strings.ToLower(strings.TrimSpace(title))
	if base == "" {
		base = "competition"
	}

	slug := make([]rune, 0, len(base))
	for _, r := range base {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			slug = append(slug, r)
		case r == ' ' || r == '-' || r == '_' || r == '.':
			if len(slug) == 0 || slug[len(slug)-1] == '-' {
				continue
			}
			slug = append(slug, '-')
		}
	}

	trimmed := strings.Trim(string(slug), "-")
	if trimmed == "" {
		trimmed = "competition"
	}
	return trimmed
}
