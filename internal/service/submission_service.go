package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
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

// ErrDeadlinePassed indicates a submission arrived after the deadline.
var ErrDeadlinePassed = errors.New("submission deadline has passed")

// ErrTypeMismatch indicates the submitted content kind does not match the
// competition's configured category.
var ErrTypeMismatch = errors.New("content type does not match competition category")

// ErrDuplicateSubmission indicates the student already entered this competition.
var ErrDuplicateSubmission = errors.New("student already has a submission for this competition")

// ErrStudentNotFound indicates the submitting user has no student profile.
var ErrStudentNotFound = errors.New("student profile not found")

// ErrSubmissionNotFound indicates a submission could not be located.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrUploadFailed indicates the storage backend rejected an asset upload.
var ErrUploadFailed = errors.New("failed to upload asset")

// ErrUnsupportedFileType indicates the uploaded file does not match the
// declared content kind.
var ErrUnsupportedFileType = errors.New("unsupported file type for declared content kind")

// SubmissionIntakeService validates and records competition entries.
type SubmissionIntakeService interface {
	Submit(ctx context.Context, studentUserID uint, payload dto.SubmissionCreateRequest, file, thumbnail *multipart.FileHeader) (dto.SubmissionResponse, error)
}

type submissionIntakeService struct {
	competitions repository.CompetitionRepository
	submissions  repository.SubmissionRepository
	students     repository.StudentRepository
	contents     repository.ContentRepository
	adapters     map[string]ContentCreator
	uploader     FileUploader
	validator    *validator.Validate
	logger       zerolog.Logger
	now          func() time.Time
}

// NewSubmissionIntakeService constructs the intake service. Adapters are
// keyed by the content kind they produce.
func NewSubmissionIntakeService(competitions repository.CompetitionRepository, submissions repository.SubmissionRepository, students repository.StudentRepository, contents repository.ContentRepository, adapters []ContentCreator, uploader FileUploader, validate *validator.Validate, logger zerolog.Logger) SubmissionIntakeService {
	byKind := make(map[string]ContentCreator, len(adapters))
	for _, adapter := range adapters {
		byKind[adapter.Kind()] = adapter
	}

	return &submissionIntakeService{
		competitions: competitions,
		submissions:  submissions,
		students:     students,
		contents:     contents,
		adapters:     byKind,
		uploader:     uploader,
		validator:    validate,
		logger:       logger.With().Str("component", "submission_intake_service").Logger(),
		now:          time.Now,
	}
}

func (s *submissionIntakeService) Submit(ctx context.Context, studentUserID uint, payload dto.SubmissionCreateRequest, file, thumbnail *multipart.FileHeader) (dto.SubmissionResponse, error) {
	tracer := otel.Tracer("github.com/skilins-platform/skilins-competition-api/internal/service/submission_intake")
	ctx, span := tracer.Start(ctx, "submission.submit")
	span.SetAttributes(
		attribute.Int64("submission.student_user_id", int64(studentUserID)),
		attribute.String("submission.competition_slug", payload.CompetitionSlug),
		attribute.String("submission.type", payload.Type),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	if file == nil {
		return dto.SubmissionResponse{}, fmt.Errorf("submission file is required")
	}

	competition, err := s.competitions.GetBySlug(ctx, payload.CompetitionSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrCompetitionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	// Submitting exactly at the deadline is still allowed.
	if !competition.AcceptsSubmissions(s.now()) {
		span.SetStatus(codes.Error, "deadline_passed")
		return dto.SubmissionResponse{}, ErrDeadlinePassed
	}

	if !payload.VariantForType() {
		span.SetStatus(codes.Error, "type_mismatch")
		return dto.SubmissionResponse{}, ErrTypeMismatch
	}

	if competition.Type != payload.Type {
		span.SetStatus(codes.Error, "type_mismatch")
		return dto.SubmissionResponse{}, ErrTypeMismatch
	}

	adapter, ok := s.adapters[payload.Type]
	if !ok {
		span.SetStatus(codes.Error, "type_mismatch")
		return dto.SubmissionResponse{}, ErrTypeMismatch
	}

	student, err := s.students.GetByUserID(ctx, studentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrStudentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	exists, err := s.submissions.ExistsForStudentAndCompetition(ctx, student.ID, competition.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if exists {
		return dto.SubmissionResponse{}, ErrDuplicateSubmission
	}

	if err := validateUploadType(file, payload.Type); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unsupported_file_type")
		return dto.SubmissionResponse{}, err
	}

	assets, err := s.uploadAssets(ctx, file, thumbnail)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	content, err := adapter.Create(ctx, payload, student.UserID, assets)
	if err != nil {
		s.cleanupAssets(ctx, assets)
		if errors.Is(err, ErrNoAdapterPayload) {
			return dto.SubmissionResponse{}, ErrTypeMismatch
		}
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	submission := models.Submission{
		UUID:          uuid.NewString(),
		StudentID:     student.ID,
		ContentID:     content.ID,
		CompetitionID: competition.ID,
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		// The upload side effect already happened; compensating delete is
		// the fallback, not a transactional rollback.
		s.cleanupAssets(ctx, assets)
		if deleteErr := s.contents.Delete(ctx, content.ID); deleteErr != nil {
			s.logger.Error().Err(deleteErr).Uint("content_id", content.ID).Msg("failed to remove orphaned content")
		}
		span.RecordError(err)
		if isUniqueViolation(err) {
			return dto.SubmissionResponse{}, ErrDuplicateSubmission
		}
		return dto.SubmissionResponse{}, err
	}

	created, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	observability.SubmissionsCreated().WithLabelValues(payload.Type).Inc()
	s.logger.Info().
		Uint("submission_id", created.ID).
		Str("competition_slug", competition.Slug).
		Msg("submission created")

	return dto.NewSubmissionResponse(created), nil
}

func (s *submissionIntakeService) uploadAssets(ctx context.Context, file, thumbnail *multipart.FileHeader) (UploadedAssets, error) {
	assets := UploadedAssets{}

	reader, err := file.Open()
	if err != nil {
		return assets, fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	fileURL, err := s.uploader.Upload(ctx, file.Filename, reader)
	if err != nil {
		return assets, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	assets.FileURL = fileURL

	if thumbnail != nil {
		thumbReader, err := thumbnail.Open()
		if err != nil {
			s.cleanupAssets(ctx, assets)
			return UploadedAssets{}, fmt.Errorf("failed to open thumbnail: %w", err)
		}
		defer thumbReader.Close()

		thumbnailURL, err := s.uploader.Upload(ctx, thumbnail.Filename, thumbReader)
		if err != nil {
			s.cleanupAssets(ctx, assets)
			return UploadedAssets{}, fmt.Errorf("%w: %v", ErrUploadFailed, err)
		}
		assets.ThumbnailURL = thumbnailURL
	}

	return assets, nil
}

// cleanupAssets removes already-uploaded binaries after a failed intake.
// Deletion failures are logged and never mask the original error.
func (s *submissionIntakeService) cleanupAssets(ctx context.Context, assets UploadedAssets) {
	for _, assetURL := range []string{assets.FileURL, assets.ThumbnailURL} {
		if assetURL == "" {
			continue
		}
		if err := s.uploader.Destroy(ctx, assetURL); err != nil {
			s.logger.Error().Err(err).Str("asset_url", assetURL).Msg("failed to delete uploaded asset")
		}
	}
}

func validateUploadType(file *multipart.FileHeader, kind string) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	mime, err := mimetype.DetectReader(reader)
	if err != nil {
		return fmt.Errorf("failed to detect file type: %w", err)
	}

	var allowed []string
	switch kind {
	case models.ContentTypeAudio:
		allowed = []string{"audio/mpeg", "audio/mp4", "audio/wav", "audio/ogg", "audio/flac"}
	case models.ContentTypeVideo:
		allowed = []string{"video/mp4", "video/webm", "video/quicktime", "video/x-matroska"}
	case models.ContentTypePrakerin:
		allowed = []string{"application/pdf"}
	default:
		return ErrUnsupportedFileType
	}

	for _, candidate := range allowed {
		if mime.Is(candidate) {
			return nil
		}
	}

	return fmt.Errorf("%w: got %s", ErrUnsupportedFileType, mime.String())
}

// isUniqueViolation recognises unique-index violations from the drivers we
// run against (pgx wraps SQLSTATE 23505, sqlite reports a UNIQUE message).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	message := err.Error()
	return strings.Contains(message, "SQLSTATE 23505") || strings.Contains(message, "UNIQUE constraint failed")
}
