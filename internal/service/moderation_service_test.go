package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/skilins-platform/skilins-competition-api/internal/models"
)

type memoryModerationEventRepo struct {
	events []models.ModerationEvent
	nextID uint
}

func newMemoryModerationEventRepo() *memoryModerationEventRepo {
	return &memoryModerationEventRepo{nextID: 1}
}

func (m *memoryModerationEventRepo) Create(ctx context.Context, event *models.ModerationEvent) error {
	event.ID = m.nextID
	m.nextID++
	m.events = append(m.events, *event)
	return nil
}

func (m *memoryModerationEventRepo) MarkSent(ctx context.Context, id uint, sentAt time.Time) error {
	for i := range m.events {
		if m.events[i].ID == id {
			m.events[i].SentAt = &sentAt
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type stubMailer struct {
	sent []MailMessage
	fail bool
}

func (s *stubMailer) Send(_ context.Context, message MailMessage) error {
	if s.fail {
		return fmt.Errorf("smtp connection refused")
	}
	s.sent = append(s.sent, message)
	return nil
}

type moderationFixture struct {
	submissions *memorySubmissionRepo
	contents    *memoryContentRepo
	events      *memoryModerationEventRepo
	mailer      *stubMailer
	service     ModerationService
	submission  models.Submission
	content     models.Content
}

func newModerationFixture(t *testing.T) *moderationFixture {
	t.Helper()

	submissions := newMemorySubmissionRepo()
	contents := newMemoryContentRepo()
	submissions.contents = contents
	events := newMemoryModerationEventRepo()
	mailer := &stubMailer{}

	content := models.Content{
		UUID:   "content-uuid-1",
		Type:   models.ContentTypeAudio,
		Title:  "Morning Show",
		Status: models.ContentStatusPending,
	}
	require.NoError(t, contents.Create(context.Background(), &content))

	submission := models.Submission{
		UUID:          "55555555-5555-4555-8555-555555555555",
		StudentID:     1,
		ContentID:     content.ID,
		CompetitionID: 1,
		Student: models.Student{
			ID:     1,
			UserID: 5,
			User:   models.User{ID: 5, Name: "Sinta", Email: "sinta@example.com"},
		},
		Competition: models.Competition{ID: 1, Slug: "podcast-cup", Title: "Podcast Cup"},
	}
	require.NoError(t, submissions.Create(context.Background(), &submission))

	svc := NewModerationService(submissions, contents, events, mailer, nil, "", testLogger())

	return &moderationFixture{
		submissions: submissions,
		contents:    contents,
		events:      events,
		mailer:      mailer,
		service:     svc,
		submission:  submission,
		content:     content,
	}
}

func TestModerationServiceApproveUpdatesStatusAndMails(t *testing.T) {
	fixture := newModerationFixture(t)

	result, err := fixture.service.Approve(context.Background(), fixture.submission.ID)
	require.NoError(t, err)
	require.Equal(t, models.ContentStatusApproved, result.Status)
	require.Equal(t, fixture.content.UUID, result.ContentUUID)
	require.True(t, result.MailSent)

	stored, err := fixture.contents.GetByUUID(context.Background(), fixture.content.UUID)
	require.NoError(t, err)
	require.Equal(t, models.ContentStatusApproved, stored.Status)

	require.Len(t, fixture.mailer.sent, 1)
	require.Equal(t, "sinta@example.com", fixture.mailer.sent[0].To)
	require.Equal(t, MailTemplateApproved, fixture.mailer.sent[0].Template)
	require.Equal(t, "Podcast Cup", fixture.mailer.sent[0].Context["competition_title"])

	require.Len(t, fixture.events.events, 1)
	require.Equal(t, models.ContentStatusApproved, fixture.events.events[0].Outcome)
	require.NotNil(t, fixture.events.events[0].SentAt)
}

func TestModerationServiceRejectUsesRejectionTemplate(t *testing.T) {
	fixture := newModerationFixture(t)

	result, err := fixture.service.Reject(context.Background(), fixture.submission.ID)
	require.NoError(t, err)
	require.Equal(t, models.ContentStatusRejected, result.Status)

	stored, err := fixture.contents.GetByUUID(context.Background(), fixture.content.UUID)
	require.NoError(t, err)
	require.Equal(t, models.ContentStatusRejected, stored.Status)

	require.Len(t, fixture.mailer.sent, 1)
	require.Equal(t, MailTemplateRejected, fixture.mailer.sent[0].Template)
}

func TestModerationServiceMailFailureStillUpdatesStatus(t *testing.T) {
	fixture := newModerationFixture(t)
	fixture.mailer.fail = true

	result, err := fixture.service.Approve(context.Background(), fixture.submission.ID)
	require.NoError(t, err)
	require.False(t, result.MailSent)
	require.Equal(t, models.ContentStatusApproved, result.Status)

	stored, err := fixture.contents.GetByUUID(context.Background(), fixture.content.UUID)
	require.NoError(t, err)
	require.Equal(t, models.ContentStatusApproved, stored.Status)

	require.Len(t, fixture.events.events, 1)
	require.Nil(t, fixture.events.events[0].SentAt, "unsent mail must keep the outbox row pending")
}

func TestModerationServiceUnknownSubmission(t *testing.T) {
	fixture := newModerationFixture(t)

	_, err := fixture.service.Approve(context.Background(), 999)
	require.ErrorIs(t, err, ErrSubmissionNotFound)
	require.Empty(t, fixture.mailer.sent)
}
