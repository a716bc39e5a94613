package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/skilins-platform/skilins-competition-api/internal/dto"
	"github.com/skilins-platform/skilins-competition-api/internal/models"
	"github.com/skilins-platform/skilins-competition-api/internal/observability"
	"github.com/skilins-platform/skilins-competition-api/internal/repository"
)

// ErrJudgeNotAssigned indicates the judge is not on this competition's roster.
var ErrJudgeNotAssigned = errors.New("judge is not assigned to this competition")

// ErrDuplicateEvaluation indicates the judge already evaluated within this
// competition.
var ErrDuplicateEvaluation = errors.New("judge has already evaluated this submission")

// ErrUnknownParameter indicates a score references a parameter outside the
// submission's competition.
var ErrUnknownParameter = errors.New("evaluation parameter does not belong to this competition")

// ErrDuplicateParameter indicates the payload scores the same parameter twice.
var ErrDuplicateParameter = errors.New("evaluation parameter scored more than once")

// EvaluationService records judge evaluations of submissions.
type EvaluationService interface {
	Evaluate(ctx context.Context, judgeUserID uint, payload dto.EvaluationRequest) (dto.EvaluationResponse, error)
}

type evaluationService struct {
	submissions  repository.SubmissionRepository
	judges       repository.JudgeRepository
	competitions repository.CompetitionRepository
	scores       repository.ScoreRepository
	validator    *validator.Validate
	logger       zerolog.Logger
	now          func() time.Time
}

// NewEvaluationService constructs an EvaluationService instance.
func NewEvaluationService(submissions repository.SubmissionRepository, judges repository.JudgeRepository, competitions repository.CompetitionRepository, scores repository.ScoreRepository, validate *validator.Validate, logger zerolog.Logger) EvaluationService {
	return &evaluationService{
		submissions:  submissions,
		judges:       judges,
		competitions: competitions,
		scores:       scores,
		validator:    validate,
		logger:       logger.With().Str("component", "evaluation_service").Logger(),
		now:          time.Now,
	}
}

func (s *evaluationService) Evaluate(ctx context.Context, judgeUserID uint, payload dto.EvaluationRequest) (dto.EvaluationResponse, error) {
	tracer := otel.Tracer("github.com/skilins-platform/skilins-competition-api/internal/service/evaluation")
	ctx, span := tracer.Start(ctx, "evaluation.evaluate")
	span.SetAttributes(
		attribute.Int64("evaluation.judge_user_id", int64(judgeUserID)),
		attribute.String("evaluation.submission_uuid", payload.SubmissionUUID),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.EvaluationResponse{}, err
	}

	submission, err := s.submissions.GetByUUID(ctx, payload.SubmissionUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.EvaluationResponse{}, ErrSubmissionNotFound
		}
		return dto.EvaluationResponse{}, err
	}

	judge, err := s.judges.GetByUserAndCompetition(ctx, judgeUserID, submission.CompetitionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "judge_not_assigned")
			return dto.EvaluationResponse{}, ErrJudgeNotAssigned
		}
		return dto.EvaluationResponse{}, err
	}

	parameters, err := s.competitions.ListParameters(ctx, submission.CompetitionID)
	if err != nil {
		return dto.EvaluationResponse{}, err
	}

	known := make(map[uint]struct{}, len(parameters))
	for _, parameter := range parameters {
		known[parameter.ID] = struct{}{}
	}

	var total float64
	seen := make(map[uint]struct{}, len(payload.ParameterScores))
	for _, entry := range payload.ParameterScores {
		if _, ok := known[entry.ParameterID]; !ok {
			span.SetStatus(codes.Error, "unknown_parameter")
			return dto.EvaluationResponse{}, fmt.Errorf("%w: parameter %d", ErrUnknownParameter, entry.ParameterID)
		}
		if _, dup := seen[entry.ParameterID]; dup {
			span.SetStatus(codes.Error, "duplicate_parameter")
			return dto.EvaluationResponse{}, fmt.Errorf("%w: parameter %d", ErrDuplicateParameter, entry.ParameterID)
		}
		seen[entry.ParameterID] = struct{}{}
		total += entry.Score
	}

	average := total / float64(len(payload.ParameterScores))

	// The latch write is an atomic conditional update: it only succeeds when
	// no prior evaluation exists, so a concurrent second call loses.
	latched, err := s.judges.MarkEvaluated(ctx, judge.ID, average, strings.TrimSpace(payload.Comment))
	if err != nil {
		return dto.EvaluationResponse{}, err
	}
	if !latched {
		observability.DuplicateEvaluationsRejected().Inc()
		span.SetStatus(codes.Error, "duplicate_evaluation")
		return dto.EvaluationResponse{}, ErrDuplicateEvaluation
	}

	records := make([]models.Score, 0, len(payload.ParameterScores))
	for _, entry := range payload.ParameterScores {
		records = append(records, models.Score{
			ParameterID:  entry.ParameterID,
			JudgeID:      judge.ID,
			SubmissionID: submission.ID,
			Score:        entry.Score,
			Note:         strings.TrimSpace(entry.Note),
		})
	}

	if err := s.scores.CreateBatch(ctx, records); err != nil {
		span.RecordError(err)
		// Release the latch so the judge can retry; a failed batch must not
		// leave the judge latched with no Score rows behind it.
		if clearErr := s.judges.ClearEvaluation(ctx, judge.ID); clearErr != nil {
			s.logger.Error().Err(clearErr).Uint("judge_id", judge.ID).Msg("failed to release evaluation latch after score write failure")
		}
		return dto.EvaluationResponse{}, err
	}

	observability.EvaluationsRecorded().Inc()
	s.logger.Info().
		Uint("judge_id", judge.ID).
		Str("submission_uuid", submission.UUID).
		Int("score_count", len(records)).
		Msg("evaluation recorded")

	return dto.EvaluationResponse{
		SubmissionUUID: submission.UUID,
		JudgeID:        judge.ID,
		ScoreCount:     len(records),
		AverageScore:   average,
	}, nil
}
