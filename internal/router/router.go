package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/skilins-platform/skilins-competition-api/internal/config"
	"github.com/skilins-platform/skilins-competition-api/internal/handler"
	"github.com/skilins-platform/skilins-competition-api/internal/middleware"
	"github.com/skilins-platform/skilins-competition-api/internal/models"
	"github.com/skilins-platform/skilins-competition-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	CompetitionHandler *handler.CompetitionHandler
	SubmissionHandler  *handler.SubmissionHandler
	ModerationHandler  *handler.ModerationHandler
	EvaluationHandler  *handler.EvaluationHandler
	JWTMiddleware      fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	staffOnly := middleware.RequireRole(models.RoleStaff)
	judgeOnly := middleware.RequireRole(models.RoleJudge)

	// Competitions (listing, detail, staff management, winners)
	if deps.CompetitionHandler != nil {
		competitions := api.Group("/competitions", jwtMiddleware)
		deps.CompetitionHandler.Register(competitions, staffOnly)

		if deps.SubmissionHandler != nil {
			intake := competitions.Group("", middleware.RateLimit("competition-submit", 10, time.Minute))
			deps.SubmissionHandler.Register(intake)
		}
	}

	// Moderation (staff)
	if deps.ModerationHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		deps.ModerationHandler.Register(submissions, staffOnly)
	}

	// Judge scoring
	if deps.EvaluationHandler != nil {
		judges := api.Group("/judges", jwtMiddleware)
		deps.EvaluationHandler.Register(judges, judgeOnly)
	}
}
