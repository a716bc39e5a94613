package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/skilins-platform/skilins-competition-api/internal/models"
)

func TestContentRepositoryCreatePersistsDetail(t *testing.T) {
	db := setupTestDB(t, &models.Content{}, &models.AudioDetail{}, &models.VideoDetail{}, &models.PrakerinDetail{})
	repo := NewContentRepository(db)

	content := models.Content{
		UUID:      "content-1",
		Type:      models.ContentTypeAudio,
		Title:     "Morning Show",
		Status:    models.ContentStatusPending,
		CreatorID: 1,
		AudioDetail: &models.AudioDetail{
			DurationSeconds: 900,
			Narrator:        "Alex",
		},
	}
	require.NoError(t, repo.Create(context.Background(), &content))
	require.NotZero(t, content.ID)

	loaded, err := repo.GetByUUID(context.Background(), "content-1")
	require.NoError(t, err)
	require.NotNil(t, loaded.AudioDetail)
	require.Equal(t, 900, loaded.AudioDetail.DurationSeconds)
}

func TestContentRepositoryUpdateStatus(t *testing.T) {
	db := setupTestDB(t, &models.Content{}, &models.AudioDetail{}, &models.VideoDetail{}, &models.PrakerinDetail{})
	repo := NewContentRepository(db)

	content := models.Content{UUID: "content-1", Type: models.ContentTypeAudio, Title: "Ep", Status: models.ContentStatusPending, CreatorID: 1}
	require.NoError(t, repo.Create(context.Background(), &content))

	require.NoError(t, repo.UpdateStatus(context.Background(), "content-1", models.ContentStatusApproved))

	loaded, err := repo.GetByUUID(context.Background(), "content-1")
	require.NoError(t, err)
	require.Equal(t, models.ContentStatusApproved, loaded.Status)
	require.True(t, loaded.IsModerated())

	err = repo.UpdateStatus(context.Background(), "missing", models.ContentStatusApproved)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestModerationEventRepositoryMarkSent(t *testing.T) {
	db := setupTestDB(t, &models.ModerationEvent{})
	repo := NewModerationEventRepository(db)

	event := models.ModerationEvent{
		SubmissionID: 1,
		Outcome:      models.ContentStatusApproved,
		Recipient:    "sinta@example.com",
		Subject:      "Your submission to Podcast Cup",
	}
	require.NoError(t, repo.Create(context.Background(), &event))
	require.NotZero(t, event.ID)

	sentAt := time.Now()
	require.NoError(t, repo.MarkSent(context.Background(), event.ID, sentAt))

	var stored models.ModerationEvent
	require.NoError(t, db.First(&stored, event.ID).Error)
	require.NotNil(t, stored.SentAt)
}
