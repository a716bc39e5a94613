package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skilins-platform/skilins-competition-api/internal/service"
	"github.com/skilins-platform/skilins-competition-api/internal/utils"
)

// ModerationHandler exposes the staff moderation endpoints.
type ModerationHandler struct {
	service service.ModerationService
	logger  zerolog.Logger
}

// NewModerationHandler builds a moderation handler instance.
func NewModerationHandler(service service.ModerationService, logger zerolog.Logger) *ModerationHandler {
	return &ModerationHandler{
		service: service,
		logger:  logger.With().Str("component", "moderation_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ModerationHandler) Register(router fiber.Router, staffOnly fiber.Handler) {
	router.Patch("/:id/approve", staffOnly, h.approve)
	router.Patch("/:id/reject", staffOnly, h.reject)
}

func (h *ModerationHandler) approve(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid submission id")
	}

	result, err := h.service.Approve(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission approved", result)
}

func (h *ModerationHandler) reject(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid submission id")
	}

	result, err := h.service.Reject(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission rejected", result)
}

func (h *ModerationHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrContentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "content not found")
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
