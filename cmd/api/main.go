package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/skilins-platform/skilins-competition-api/internal/config"
	"github.com/skilins-platform/skilins-competition-api/internal/database"
	"github.com/skilins-platform/skilins-competition-api/internal/handler"
	"github.com/skilins-platform/skilins-competition-api/internal/middleware"
	"github.com/skilins-platform/skilins-competition-api/internal/models"
	"github.com/skilins-platform/skilins-competition-api/internal/repository"
	"github.com/skilins-platform/skilins-competition-api/internal/router"
	"github.com/skilins-platform/skilins-competition-api/internal/service"
	cloud "github.com/skilins-platform/skilins-competition-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Student{},
		&models.Judge{},
		&models.Competition{},
		&models.EvaluationParameter{},
		&models.Content{},
		&models.AudioDetail{},
		&models.VideoDetail{},
		&models.PrakerinDetail{},
		&models.Rating{},
		&models.Submission{},
		&models.Score{},
		&models.Winner{},
		&models.ModerationEvent{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, moderation events will not be published")
			natsConn = nil
		} else {
			defer natsConn.Drain()
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	competitionRepo := repository.NewCompetitionRepository(db)
	judgeRepo := repository.NewJudgeRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	scoreRepo := repository.NewScoreRepository(db)
	winnerRepo := repository.NewWinnerRepository(db)
	contentRepo := repository.NewContentRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	moderationRepo := repository.NewModerationEventRepository(db)

	adapters := []service.ContentCreator{
		service.NewAudioContentCreator(contentRepo, logger),
		service.NewVideoContentCreator(contentRepo, logger),
		service.NewPrakerinContentCreator(contentRepo, logger),
	}

	mailer := service.NewSMTPMailer(service.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     strconv.Itoa(cfg.SMTPPort),
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}, logger)

	competitionService := service.NewCompetitionService(competitionRepo, judgeRepo, validate, redisClient, cfg.CacheTTL, logger)
	intakeService := service.NewSubmissionIntakeService(competitionRepo, submissionRepo, studentRepo, contentRepo, adapters, uploader, validate, logger)
	moderationService := service.NewModerationService(submissionRepo, contentRepo, moderationRepo, mailer, natsConn, cfg.NATSModerationSubject, logger)
	evaluationService := service.NewEvaluationService(submissionRepo, judgeRepo, competitionRepo, scoreRepo, validate, logger)
	scoringEngine := service.NewScoringEngine(submissionRepo, competitionRepo, scoreRepo, ratingRepo, redisClient, cfg.CacheTTL, logger)
	scheduler := service.NewWinnerScheduler(competitionRepo, submissionRepo, winnerRepo, scoringEngine, cfg.SchedulerRunHour, logger)
	winnerService := service.NewWinnerService(competitionRepo, winnerRepo, scheduler, logger)

	competitionHandler := handler.NewCompetitionHandler(competitionService, winnerService, validate, logger)
	submissionHandler := handler.NewSubmissionHandler(intakeService, validate, logger)
	moderationHandler := handler.NewModerationHandler(moderationService, logger)
	evaluationHandler := handler.NewEvaluationHandler(evaluationService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		CompetitionHandler: competitionHandler,
		SubmissionHandler:  submissionHandler,
		ModerationHandler:  moderationHandler,
		EvaluationHandler:  evaluationHandler,
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret),
	})

	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	scheduler.Start(schedulerCtx)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, stopScheduler)
}

func waitForShutdown(app *fiber.App, stopScheduler context.CancelFunc) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()
	stopScheduler()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
