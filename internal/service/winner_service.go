package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skilins-platform/skilins-competition-api/internal/dto"
	"github.com/skilins-platform/skilins-competition-api/internal/repository"
)

// WinnerService exposes recorded winners and the manual determination
// override to the HTTP surface.
type WinnerService interface {
	ListWinners(ctx context.Context, competitionID uint) ([]dto.WinnerResponse, error)
	Determine(ctx context.Context, competitionID uint) ([]dto.WinnerResponse, error)
}

type winnerService struct {
	competitions repository.CompetitionRepository
	winners      repository.WinnerRepository
	scheduler    *WinnerScheduler
	logger       zerolog.Logger
}

// NewWinnerService constructs a WinnerService instance.
func NewWinnerService(competitions repository.CompetitionRepository, winners repository.WinnerRepository, scheduler *WinnerScheduler, logger zerolog.Logger) WinnerService {
	return &winnerService{
		competitions: competitions,
		winners:      winners,
		scheduler:    scheduler,
		logger:       logger.With().Str("component", "winner_service").Logger(),
	}
}

func (s *winnerService) ListWinners(ctx context.Context, competitionID uint) ([]dto.WinnerResponse, error) {
	if _, err := s.competitions.GetByID(ctx, competitionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}

	winners, err := s.winners.ListByCompetition(ctx, competitionID)
	if err != nil {
		return nil, err
	}

	return dto.NewWinnerResponseSlice(winners), nil
}

func (s *winnerService) Determine(ctx context.Context, competitionID uint) ([]dto.WinnerResponse, error) {
	if _, err := s.scheduler.DetermineWinners(ctx, competitionID); err != nil {
		return nil, err
	}

	// Reload with submission detail for the response.
	winners, err := s.winners.ListByCompetition(ctx, competitionID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Uint("competition_id", competitionID).Int("winners", len(winners)).Msg("manual winner determination completed")

	return dto.NewWinnerResponseSlice(winners), nil
}
