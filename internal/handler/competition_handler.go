package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skilins-platform/skilins-competition-api/internal/dto"
	"github.com/skilins-platform/skilins-competition-api/internal/repository"
	"github.com/skilins-platform/skilins-competition-api/internal/service"
	"github.com/skilins-platform/skilins-competition-api/internal/utils"
)

// CompetitionHandler manages competition registry endpoints.
type CompetitionHandler struct {
	service   service.CompetitionService
	winners   service.WinnerService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCompetitionHandler builds a competition handler instance.
func NewCompetitionHandler(service service.CompetitionService, winners service.WinnerService, validator *validator.Validate, logger zerolog.Logger) *CompetitionHandler {
	return &CompetitionHandler{
		service:   service,
		winners:   winners,
		validator: validator,
		logger:    logger.With().Str("component", "competition_handler").Logger(),
	}
}

// Register attaches public routes to the provided router group; staff-only
// routes must be wrapped by the caller.
func (h *CompetitionHandler) Register(router fiber.Router, staffOnly fiber.Handler) {
	router.Get("", h.list)
	router.Post("", staffOnly, h.create)
	router.Get("/detail/:type/:slug", h.detail)
	router.Patch("/:id", staffOnly, h.update)
	router.Delete("/:id", staffOnly, h.remove)
	router.Get("/:id/winners", h.listWinners)
	router.Post("/:id/determine-winners", staffOnly, h.determineWinners)
}

func (h *CompetitionHandler) create(c *fiber.Ctx) error {
	var payload dto.CompetitionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	competition, err := h.service.Create(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "competition created", competition)
}

func (h *CompetitionHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.CompetitionUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	competition, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "competition updated", competition)
}

func (h *CompetitionHandler) list(c *fiber.Ctx) error {
	query := dto.CompetitionListQuery{
		Search: c.Query("search"),
		Type:   c.Query("type"),
		Page:   parseQueryInt(c, "page"),
		Limit:  parseQueryInt(c, "limit"),
	}

	partition := repository.PartitionAll
	switch c.Query("status") {
	case "active":
		partition = repository.PartitionActive
	case "finished":
		partition = repository.PartitionFinished
	}

	page, err := h.service.List(c.Context(), query, partition)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "competitions retrieved", page)
}

func (h *CompetitionHandler) detail(c *fiber.Ctx) error {
	statusFilter := c.Query("status")

	detail, err := h.service.GetDetail(c.Context(), c.Params("slug"), c.Params("type"), statusFilter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "competition retrieved", detail)
}

func (h *CompetitionHandler) remove(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "competition deleted", nil)
}

func (h *CompetitionHandler) listWinners(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	winners, err := h.winners.ListWinners(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "winners retrieved", winners)
}

func (h *CompetitionHandler) determineWinners(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	winners, err := h.winners.Determine(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "winners determined", winners)
}

func (h *CompetitionHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrCompetitionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "competition not found")
	case errors.Is(err, service.ErrJudgeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrDeadlineAfterEnd):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidStatusFilter):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrCompetitionNotEnded):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrWinnersAlreadyRecorded):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrParametersLocked):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
