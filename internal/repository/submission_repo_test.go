package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skilins-platform/skilins-competition-api/internal/models"
)

func TestSubmissionRepositoryUniquePerStudentAndCompetition(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.Student{}, &models.Competition{}, &models.Content{}, &models.Submission{})
	repo := NewSubmissionRepository(db)

	user := models.User{UUID: "user-sinta", Name: "Sinta", Email: "sinta@example.com", Role: models.RoleStudent}
	require.NoError(t, db.Create(&user).Error)
	student := models.Student{UserID: user.ID, Major: "Broadcasting"}
	require.NoError(t, db.Create(&student).Error)

	competition := competitionFixture("podcast-cup", 24*time.Hour)
	require.NoError(t, db.Create(&competition).Error)

	first := models.Content{UUID: "content-1", Type: models.ContentTypeAudio, Title: "Ep 1", Status: models.ContentStatusPending, CreatorID: user.ID}
	second := models.Content{UUID: "content-2", Type: models.ContentTypeAudio, Title: "Ep 2", Status: models.ContentStatusPending, CreatorID: user.ID}
	require.NoError(t, db.Create(&first).Error)
	require.NoError(t, db.Create(&second).Error)

	submission := models.Submission{UUID: "sub-1", StudentID: student.ID, ContentID: first.ID, CompetitionID: competition.ID}
	require.NoError(t, repo.Create(context.Background(), &submission))

	exists, err := repo.ExistsForStudentAndCompetition(context.Background(), student.ID, competition.ID)
	require.NoError(t, err)
	require.True(t, exists)

	duplicate := models.Submission{UUID: "sub-2", StudentID: student.ID, ContentID: second.ID, CompetitionID: competition.ID}
	err = repo.Create(context.Background(), &duplicate)
	require.Error(t, err, "second entry for the same student and competition must hit the unique index")
}

func TestSubmissionRepositoryGetByUUIDPreloads(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.Student{}, &models.Competition{}, &models.Content{}, &models.Submission{})
	repo := NewSubmissionRepository(db)

	user := models.User{UUID: "user-sinta", Name: "Sinta", Email: "sinta@example.com", Role: models.RoleStudent}
	require.NoError(t, db.Create(&user).Error)
	student := models.Student{UserID: user.ID, Major: "Broadcasting"}
	require.NoError(t, db.Create(&student).Error)

	competition := competitionFixture("podcast-cup", 24*time.Hour)
	require.NoError(t, db.Create(&competition).Error)

	content := models.Content{UUID: "content-1", Type: models.ContentTypeAudio, Title: "Ep 1", Status: models.ContentStatusPending, CreatorID: user.ID}
	require.NoError(t, db.Create(&content).Error)

	submission := models.Submission{UUID: "sub-1", StudentID: student.ID, ContentID: content.ID, CompetitionID: competition.ID}
	require.NoError(t, repo.Create(context.Background(), &submission))

	loaded, err := repo.GetByUUID(context.Background(), "sub-1")
	require.NoError(t, err)
	require.Equal(t, "podcast-cup", loaded.Competition.Slug)
	require.Equal(t, "Ep 1", loaded.Content.Title)
	require.Equal(t, "Sinta", loaded.Student.User.Name)
}

func TestSubmissionRepositoryListOrdersByID(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.Student{}, &models.Competition{}, &models.Content{}, &models.Submission{})
	repo := NewSubmissionRepository(db)

	competition := competitionFixture("podcast-cup", 24*time.Hour)
	require.NoError(t, db.Create(&competition).Error)

	for i := 0; i < 3; i++ {
		user := models.User{UUID: fmt.Sprintf("user-%d", i), Name: "Student", Email: fmt.Sprintf("student%d@example.com", i), Role: models.RoleStudent}
		require.NoError(t, db.Create(&user).Error)
		student := models.Student{UserID: user.ID}
		require.NoError(t, db.Create(&student).Error)
		content := models.Content{UUID: fmt.Sprintf("content-%d", i), Type: models.ContentTypeAudio, Title: "Ep", Status: models.ContentStatusPending, CreatorID: user.ID}
		require.NoError(t, db.Create(&content).Error)

		submission := models.Submission{UUID: fmt.Sprintf("sub-%d", i), StudentID: student.ID, ContentID: content.ID, CompetitionID: competition.ID}
		require.NoError(t, repo.Create(context.Background(), &submission))
	}

	listed, err := repo.ListByCompetition(context.Background(), competition.ID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	require.Less(t, listed[0].ID, listed[1].ID)
	require.Less(t, listed[1].ID, listed[2].ID)
}
