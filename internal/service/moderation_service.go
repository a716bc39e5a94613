package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
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

// ErrContentNotFound indicates the moderated content record is missing.
var ErrContentNotFound = errors.New("content not found")

// ModerationService drives staff approval and rejection of submissions.
type ModerationService interface {
	Approve(ctx context.Context, submissionID uint) (dto.ModerationResult, error)
	Reject(ctx context.Context, submissionID uint) (dto.ModerationResult, error)
}

type moderationService struct {
	submissions repository.SubmissionRepository
	contents    repository.ContentRepository
	events      repository.ModerationEventRepository
	mailer      Mailer
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger
	now         func() time.Time
}

// NewModerationService constructs the moderation workflow. The NATS
// connection is optional; when nil only mail goes out.
func NewModerationService(submissions repository.SubmissionRepository, contents repository.ContentRepository, events repository.ModerationEventRepository, mailer Mailer, natsConn *nats.Conn, natsSubject string, logger zerolog.Logger) ModerationService {
	return &moderationService{
		submissions: submissions,
		contents:    contents,
		events:      events,
		mailer:      mailer,
		nats:        natsConn,
		natsSubject: natsSubject,
		logger:      logger.With().Str("component", "moderation_service").Logger(),
		now:         time.Now,
	}
}

func (s *moderationService) Approve(ctx context.Context, submissionID uint) (dto.ModerationResult, error) {
	return s.moderate(ctx, submissionID, models.ContentStatusApproved, MailTemplateApproved)
}

func (s *moderationService) Reject(ctx context.Context, submissionID uint) (dto.ModerationResult, error) {
	return s.moderate(ctx, submissionID, models.ContentStatusRejected, MailTemplateRejected)
}

// moderate runs the two-step workflow: notification then status write. The
// notification is attempted exactly once; its failure never skips the status
// update, and both steps are reported independently.
func (s *moderationService) moderate(ctx context.Context, submissionID uint, status, template string) (dto.ModerationResult, error) {
	tracer := otel.Tracer("github.com/skilins-platform/skilins-competition-api/internal/service/moderation")
	ctx, span := tracer.Start(ctx, "moderation.moderate")
	span.SetAttributes(
		attribute.Int64("moderation.submission_id", int64(submissionID)),
		attribute.String("moderation.status", status),
	)
	defer span.End()

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.ModerationResult{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		return dto.ModerationResult{}, err
	}

	mailSent := s.notify(ctx, submission, status, template)

	if err := s.contents.UpdateStatus(ctx, submission.Content.UUID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "content_not_found")
			return dto.ModerationResult{}, ErrContentNotFound
		}
		span.RecordError(err)
		return dto.ModerationResult{}, err
	}

	s.publishEvent(submission, status)

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Str("status", status).
		Bool("mail_sent", mailSent).
		Msg("submission moderated")

	return dto.ModerationResult{
		ContentUUID: submission.Content.UUID,
		Status:      status,
		MailSent:    mailSent,
	}, nil
}

func (s *moderationService) notify(ctx context.Context, submission models.Submission, status, template string) bool {
	mailContext := map[string]string{
		"student_name":      submission.Student.User.Name,
		"competition_title": submission.Competition.Title,
		"submission_title":  submission.Content.Title,
		"submission_id":     fmt.Sprintf("%d", submission.ID),
		"submission_date":   submission.CreatedAt.Format("2 January 2006"),
		"competition_range": fmt.Sprintf("%s until %s", submission.Competition.StartDate.Format("2 January 2006"), submission.Competition.EndDate.Format("2 January 2006")),
	}

	subject := fmt.Sprintf("Your submission to %s", submission.Competition.Title)

	event := models.ModerationEvent{
		SubmissionID: submission.ID,
		Outcome:      status,
		Recipient:    submission.Student.User.Email,
		Subject:      subject,
	}
	if payload, err := json.Marshal(mailContext); err == nil {
		event.Context = payload
	}
	if err := s.events.Create(ctx, &event); err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("failed to record moderation event")
	}

	err := s.mailer.Send(ctx, MailMessage{
		To:       submission.Student.User.Email,
		Subject:  subject,
		Template: template,
		Context:  mailContext,
	})
	if err != nil {
		observability.ModerationMails().WithLabelValues(status, "failure").Inc()
		s.logger.Error().Err(err).Uint("submission_id", submission.ID).Msg("failed to send moderation mail")
		return false
	}

	observability.ModerationMails().WithLabelValues(status, "success").Inc()
	if event.ID != 0 {
		if err := s.events.MarkSent(ctx, event.ID, s.now()); err != nil {
			s.logger.Warn().Err(err).Uint("event_id", event.ID).Msg("failed to mark moderation event sent")
		}
	}

	return true
}

type moderationEventPayload struct {
	SubmissionID   uint   `json:"submission_id"`
	SubmissionUUID string `json:"submission_uuid"`
	ContentUUID    string `json:"content_uuid"`
	Status         string `json:"status"`
	Competition    string `json:"competition"`
}

// publishEvent fans the outcome out to other platform services, best effort.
func (s *moderationService) publishEvent(submission models.Submission, status string) {
	if s.nats == nil || s.natsSubject == "" {
		return
	}

	payload, err := json.Marshal(moderationEventPayload{
		SubmissionID:   submission.ID,
		SubmissionUUID: submission.UUID,
		ContentUUID:    submission.Content.UUID,
		Status:         status,
		Competition:    submission.Competition.Slug,
	})
	if err != nil {
		return
	}

	if err := s.nats.Publish(s.natsSubject, payload); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish moderation event")
	}
}
