package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skilins-platform/skilins-competition-api/internal/models"
	"github.com/skilins-platform/skilins-competition-api/internal/observability"
	"github.com/skilins-platform/skilins-competition-api/internal/repository"
)

// ErrCompetitionNotEnded indicates winner determination was requested before
// the end date.
var ErrCompetitionNotEnded = errors.New("competition has not ended yet")

// ErrWinnersAlreadyRecorded indicates the competition was already processed.
var ErrWinnersAlreadyRecorded = errors.New("winners already recorded for this competition")

// WinnerScheduler runs the daily winner determination pass and backs the
// manual staff override. A competition is processed exactly once, ever.
type WinnerScheduler struct {
	competitions repository.CompetitionRepository
	submissions  repository.SubmissionRepository
	winners      repository.WinnerRepository
	engine       ScoringEngine
	logger       zerolog.Logger
	now          func() time.Time
	runHour      int
	tick         time.Duration
}

// NewWinnerScheduler constructs the scheduler. runHour is the local hour of
// day (0-23) at which the daily pass fires.
func NewWinnerScheduler(competitions repository.CompetitionRepository, submissions repository.SubmissionRepository, winners repository.WinnerRepository, engine ScoringEngine, runHour int, logger zerolog.Logger) *WinnerScheduler {
	if runHour < 0 || runHour > 23 {
		runHour = 0
	}

	return &WinnerScheduler{
		competitions: competitions,
		submissions:  submissions,
		winners:      winners,
		engine:       engine,
		logger:       logger.With().Str("component", "winner_scheduler").Logger(),
		now:          time.Now,
		runHour:      runHour,
		tick:         time.Minute,
	}
}

// Start launches the background loop. It returns immediately; the loop stops
// when ctx is cancelled.
func (s *WinnerScheduler) Start(ctx context.Context) {
	go func() {
		s.logger.Info().Int("run_hour", s.runHour).Msg("winner scheduler started")
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info().Msg("winner scheduler stopped")
				return
			case <-ticker.C:
				now := s.now()
				if now.Hour() == s.runHour && now.Minute() == 0 {
					if err := s.RunOnce(ctx); err != nil {
						s.logger.Error().Err(err).Msg("winner determination pass failed")
					}
				}
			}
		}
	}()
}

// RunOnce executes one winner determination pass. A failure while processing
// one competition never aborts the others.
func (s *WinnerScheduler) RunOnce(ctx context.Context) error {
	observability.SchedulerRuns().Inc()

	competitions, err := s.competitions.ListEndedWithoutWinners(ctx, s.now())
	if err != nil {
		return fmt.Errorf("failed to list ended competitions: %w", err)
	}

	if len(competitions) == 0 {
		s.logger.Debug().Msg("no competitions awaiting winner determination")
		return nil
	}

	var failures int
	for _, competition := range competitions {
		observability.SchedulerCompetitions().Inc()

		if err := s.determineIsolated(ctx, competition); err != nil {
			failures++
			observability.SchedulerFailures().Inc()
			s.logger.Error().Err(err).
				Uint("competition_id", competition.ID).
				Str("slug", competition.Slug).
				Msg("winner determination failed for competition")
		}
	}

	s.logger.Info().
		Int("competitions", len(competitions)).
		Int("failures", failures).
		Msg("winner determination pass completed")

	return nil
}

// determineIsolated wraps one competition's processing in its own error
// boundary so a malformed record cannot take down the whole pass.
func (s *WinnerScheduler) determineIsolated(ctx context.Context, competition models.Competition) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("panic during winner determination: %v", recovered)
		}
	}()

	_, err = s.determine(ctx, competition)
	return err
}

// DetermineWinners is the manual override for a single competition. It
// enforces the same eligibility rules as the scheduled pass.
func (s *WinnerScheduler) DetermineWinners(ctx context.Context, competitionID uint) ([]models.Winner, error) {
	competition, err := s.competitions.GetByID(ctx, competitionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}

	if !competition.HasEnded(s.now()) {
		return nil, ErrCompetitionNotEnded
	}

	return s.determine(ctx, competition)
}

type rankedSubmission struct {
	submissionID uint
	finalScore   float64
	err          error
}

func (s *WinnerScheduler) determine(ctx context.Context, competition models.Competition) ([]models.Winner, error) {
	exists, err := s.winners.ExistsForCompetition(ctx, competition.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrWinnersAlreadyRecorded
	}

	submissions, err := s.submissions.ListByCompetition(ctx, competition.ID)
	if err != nil {
		return nil, err
	}

	if len(submissions) == 0 {
		s.logger.Warn().Uint("competition_id", competition.ID).Msg("competition ended with no submissions")
		return nil, nil
	}

	ranked := make([]rankedSubmission, len(submissions))
	var wg sync.WaitGroup
	for i, submission := range submissions {
		wg.Add(1)
		go func(index int, submissionID uint) {
			defer wg.Done()
			score, err := s.engine.FinalScore(ctx, submissionID)
			ranked[index] = rankedSubmission{submissionID: submissionID, finalScore: score, err: err}
		}(i, submission.ID)
	}
	wg.Wait()

	for _, entry := range ranked {
		if entry.err != nil {
			return nil, fmt.Errorf("failed to score submission %d: %w", entry.submissionID, entry.err)
		}
	}

	// Descending by final score; ties resolved by ascending submission ID so
	// the earlier entry wins deterministically.
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].finalScore != ranked[j].finalScore {
			return ranked[i].finalScore > ranked[j].finalScore
		}
		return ranked[i].submissionID < ranked[j].submissionID
	})

	count := competition.WinnerCount
	if count < 1 {
		count = 1
	}
	if count > len(ranked) {
		count = len(ranked)
	}

	winners := make([]models.Winner, 0, count)
	for i := 0; i < count; i++ {
		winners = append(winners, models.Winner{
			CompetitionID: competition.ID,
			SubmissionID:  ranked[i].submissionID,
			Rank:          i + 1,
			FinalScore:    ranked[i].finalScore,
		})
	}

	if err := s.winners.CreateBatch(ctx, winners); err != nil {
		return nil, err
	}

	observability.WinnersRecorded().Add(float64(len(winners)))
	s.logger.Info().
		Uint("competition_id", competition.ID).
		Int("winners", len(winners)).
		Msg("winners recorded")

	return winners, nil
}
