package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skilins-platform/skilins-competition-api/internal/dto"
	"github.com/skilins-platform/skilins-competition-api/internal/models"
	"github.com/skilins-platform/skilins-competition-api/internal/service"
	"github.com/skilins-platform/skilins-competition-api/internal/utils"
)

// SubmissionHandler manages competition submission intake.
type SubmissionHandler struct {
	service   service.SubmissionIntakeService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance.
func NewSubmissionHandler(service service.SubmissionIntakeService, validator *validator.Validate, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Post("/submit", h.submit)
}

// submit accepts a multipart form: the common fields, the kind-specific
// fields, the content binary under "file" and an optional "thumbnail".
func (h *SubmissionHandler) submit(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	payload := dto.SubmissionCreateRequest{
		CompetitionSlug: c.FormValue("competition_slug"),
		Type:            c.FormValue("type"),
		Title:           c.FormValue("title"),
		Description:     c.FormValue("description"),
	}

	switch payload.Type {
	case models.ContentTypeAudio:
		payload.Audio = &dto.AudioPayload{
			DurationSeconds: parseFormInt(c, "duration_seconds"),
			Narrator:        c.FormValue("narrator"),
		}
	case models.ContentTypeVideo:
		payload.Video = &dto.VideoPayload{
			DurationSeconds: parseFormInt(c, "duration_seconds"),
			LinkURL:         c.FormValue("link_url"),
		}
	case models.ContentTypePrakerin:
		payload.Prakerin = &dto.PrakerinPayload{
			Advisor: c.FormValue("advisor"),
			Pages:   parseFormInt(c, "pages"),
		}
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	thumbnail, err := c.FormFile("thumbnail")
	if err != nil {
		thumbnail = nil
	}

	submission, err := h.service.Submit(c.Context(), userID, payload, file, thumbnail)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission created", submission)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrCompetitionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "competition not found")
	case errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "student profile not found")
	case errors.Is(err, service.ErrDeadlinePassed):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrTypeMismatch):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnsupportedFileType):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrDuplicateSubmission):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUploadFailed):
		h.logger.Error().Err(err).Msg("asset upload failed")
		return utils.SendError(c, fiber.StatusBadGateway, "failed to store uploaded file")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
