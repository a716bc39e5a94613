package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skilins-platform/skilins-competition-api/internal/config"
	"github.com/skilins-platform/skilins-competition-api/internal/dto"
	"github.com/skilins-platform/skilins-competition-api/internal/handler"
	"github.com/skilins-platform/skilins-competition-api/internal/models"
	"github.com/skilins-platform/skilins-competition-api/internal/repository"
	"github.com/skilins-platform/skilins-competition-api/internal/router"
	"github.com/skilins-platform/skilins-competition-api/internal/service"
)

type testApp struct {
	app    *fiber.App
	db     *gorm.DB
	mailer *captureMailer
}

type captureMailer struct {
	sent []service.MailMessage
}

func (m *captureMailer) Send(_ context.Context, message service.MailMessage) error {
	m.sent = append(m.sent, message)
	return nil
}

// setupApp wires the full HTTP stack against an in-memory database. The JWT
// middleware is replaced with a stub that trusts X-Test-User-ID and
// X-Test-Role headers so tests can impersonate any role.
func setupApp(t *testing.T) testApp {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Student{}, &models.Judge{},
		&models.Competition{}, &models.EvaluationParameter{},
		&models.Content{}, &models.AudioDetail{}, &models.VideoDetail{}, &models.PrakerinDetail{},
		&models.Submission{}, &models.Score{}, &models.Rating{}, &models.Winner{},
		&models.ModerationEvent{},
	))

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	competitionRepo := repository.NewCompetitionRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	judgeRepo := repository.NewJudgeRepository(db)
	scoreRepo := repository.NewScoreRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	winnerRepo := repository.NewWinnerRepository(db)
	contentRepo := repository.NewContentRepository(db)
	eventRepo := repository.NewModerationEventRepository(db)

	competitionService := service.NewCompetitionService(competitionRepo, judgeRepo, validate, cache, time.Minute, logger)
	engine := service.NewScoringEngine(submissionRepo, competitionRepo, scoreRepo, ratingRepo, cache, time.Minute, logger)
	scheduler := service.NewWinnerScheduler(competitionRepo, submissionRepo, winnerRepo, engine, 0, logger)
	winnerService := service.NewWinnerService(competitionRepo, winnerRepo, scheduler, logger)
	evaluationService := service.NewEvaluationService(submissionRepo, judgeRepo, competitionRepo, scoreRepo, validate, logger)
	mailer := &captureMailer{}
	moderationService := service.NewModerationService(submissionRepo, contentRepo, eventRepo, mailer, nil, "", logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test"}, router.Dependencies{
		CompetitionHandler: handler.NewCompetitionHandler(competitionService, winnerService, validate, logger),
		EvaluationHandler:  handler.NewEvaluationHandler(evaluationService, logger),
		ModerationHandler:  handler.NewModerationHandler(moderationService, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(parseHeaderUint(c.Get("X-Test-User-ID"), 1)))
			c.Locals("user_role", c.Get("X-Test-Role", models.RoleStudent))
			return c.Next()
		},
	})

	return testApp{app: app, db: db, mailer: mailer}
}

func parseHeaderUint(value string, fallback uint64) uint64 {
	if value == "" {
		return fallback
	}
	var parsed uint64
	if _, err := fmt.Sscanf(value, "%d", &parsed); err != nil {
		return fallback
	}
	return parsed
}

func jsonRequest(t *testing.T, method, target, role string, payload interface{}) *http.Request {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Test-Role", role)
	return req
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

func competitionRequest(title string) dto.CompetitionCreateRequest {
	now := time.Now()
	return dto.CompetitionCreateRequest{
		Title:              title,
		Type:               "audio",
		Description:        "Annual podcast contest",
		StartDate:          now,
		EndDate:            now.Add(72 * time.Hour),
		SubmissionDeadline: now.Add(48 * time.Hour),
		WinnerCount:        3,
		Parameters: []dto.EvaluationParameterRequest{
			{Name: "Clarity", Weight: 50},
			{Name: "Creativity", Weight: 50},
		},
	}
}

func TestCompetitionHandlerCreateListDetail(t *testing.T) {
	ta := setupApp(t)

	req := jsonRequest(t, "POST", "/api/v1/competitions", models.RoleStaff, competitionRequest("Podcast Cup 2026"))
	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var createBody struct {
		Success bool                    `json:"success"`
		Data    dto.CompetitionResponse `json:"data"`
		Message string                  `json:"message"`
	}
	decodeResponse(t, resp, &createBody)
	require.True(t, createBody.Success)
	require.Equal(t, "competition created", createBody.Message)
	require.Equal(t, "podcast-cup-2026", createBody.Data.Slug)

	listResp, err := ta.app.Test(jsonRequest(t, "GET", "/api/v1/competitions", models.RoleStudent, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, listResp.StatusCode)

	var listBody struct {
		Success bool                          `json:"success"`
		Data    dto.PagedCompetitionsResponse `json:"data"`
	}
	decodeResponse(t, listResp, &listBody)
	require.True(t, listBody.Success)
	require.Len(t, listBody.Data.Items, 1)
	require.Equal(t, "Podcast Cup 2026", listBody.Data.Items[0].Title)

	detailResp, err := ta.app.Test(jsonRequest(t, "GET", "/api/v1/competitions/detail/audio/podcast-cup-2026", models.RoleStudent, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, detailResp.StatusCode)

	var detailBody struct {
		Data dto.CompetitionDetailResponse `json:"data"`
	}
	decodeResponse(t, detailResp, &detailBody)
	require.Equal(t, "podcast-cup-2026", detailBody.Data.Slug)
	require.Len(t, detailBody.Data.Parameters, 2)
}

func TestCompetitionHandlerCreateRequiresStaff(t *testing.T) {
	ta := setupApp(t)

	resp, err := ta.app.Test(jsonRequest(t, "POST", "/api/v1/competitions", models.RoleStudent, competitionRequest("Sneaky Contest")))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &body)
	require.False(t, body.Success)
	require.Equal(t, "insufficient permissions", body.Message)
}

func TestCompetitionHandlerCreateRejectsDeadlineAfterEnd(t *testing.T) {
	ta := setupApp(t)

	payload := competitionRequest("Broken Dates")
	payload.SubmissionDeadline = payload.EndDate.Add(time.Hour)

	resp, err := ta.app.Test(jsonRequest(t, "POST", "/api/v1/competitions", models.RoleStaff, payload))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCompetitionHandlerDetailUnknownSlug(t *testing.T) {
	ta := setupApp(t)

	resp, err := ta.app.Test(jsonRequest(t, "GET", "/api/v1/competitions/detail/audio/missing", models.RoleStudent, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCompetitionHandlerDetermineWinnersGuards(t *testing.T) {
	ta := setupApp(t)

	createResp, err := ta.app.Test(jsonRequest(t, "POST", "/api/v1/competitions", models.RoleStaff, competitionRequest("Running Contest")))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, createResp.StatusCode)

	var createBody struct {
		Data dto.CompetitionResponse `json:"data"`
	}
	decodeResponse(t, createResp, &createBody)

	target := fmt.Sprintf("/api/v1/competitions/%d/determine-winners", createBody.Data.ID)
	resp, err := ta.app.Test(jsonRequest(t, "POST", target, models.RoleStaff, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = ta.app.Test(jsonRequest(t, "POST", target, models.RoleStudent, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestCompetitionHandlerWinnersUnknownCompetition(t *testing.T) {
	ta := setupApp(t)

	resp, err := ta.app.Test(jsonRequest(t, "GET", "/api/v1/competitions/999/winners", models.RoleStudent, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
