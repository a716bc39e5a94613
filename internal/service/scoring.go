package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/skilins-platform/skilins-competition-api/internal/repository"
)

// Final score blend: judged score dominates public opinion 80/20.
const (
	publicRatingWeight = 0.2
	judgedScoreWeight  = 0.8
)

// ScoringEngine computes the normalized, weighted final score for a
// submission. Pure read-then-compute; safe to call repeatedly.
type ScoringEngine interface {
	FinalScore(ctx context.Context, submissionID uint) (float64, error)
}

type scoringEngine struct {
	submissions  repository.SubmissionRepository
	competitions repository.CompetitionRepository
	scores       repository.ScoreRepository
	ratings      repository.RatingRepository
	cache        *redis.Client
	cacheTTL     time.Duration
	logger       zerolog.Logger
}

// NewScoringEngine constructs a ScoringEngine instance. The cache is
// optional and only shortcuts the public rating aggregate.
func NewScoringEngine(submissions repository.SubmissionRepository, competitions repository.CompetitionRepository, scores repository.ScoreRepository, ratings repository.RatingRepository, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) ScoringEngine {
	return &scoringEngine{
		submissions:  submissions,
		competitions: competitions,
		scores:       scores,
		ratings:      ratings,
		cache:        cache,
		cacheTTL:     cacheTTL,
		logger:       logger.With().Str("component", "scoring_engine").Logger(),
	}
}

func (e *scoringEngine) FinalScore(ctx context.Context, submissionID uint) (float64, error) {
	submission, err := e.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return 0, fmt.Errorf("failed to load submission %d: %w", submissionID, err)
	}

	parameters, err := e.competitions.ListParameters(ctx, submission.CompetitionID)
	if err != nil {
		return 0, fmt.Errorf("failed to load evaluation parameters: %w", err)
	}

	scores, err := e.scores.ListBySubmission(ctx, submissionID)
	if err != nil {
		return 0, fmt.Errorf("failed to load scores: %w", err)
	}

	type bucket struct {
		total float64
		count int
	}
	byParameter := make(map[uint]bucket, len(parameters))
	for _, score := range scores {
		entry := byParameter[score.ParameterID]
		entry.total += score.Score
		entry.count++
		byParameter[score.ParameterID] = entry
	}

	var weightedScore, totalWeight float64
	for _, parameter := range parameters {
		average := 0.0
		if entry, ok := byParameter[parameter.ID]; ok && entry.count > 0 {
			average = entry.total / float64(entry.count)
		}
		weightedScore += average * (parameter.Weight / 100)
		totalWeight += parameter.Weight
	}

	// Normalize against whatever total weight was actually configured,
	// tolerant of parameter sets that do not sum to 100.
	normalizedScore := 0.0
	if totalWeight > 0 {
		normalizedScore = weightedScore / (totalWeight / 100)
	}

	averageRating, err := e.averageRating(ctx, submission.ContentID)
	if err != nil {
		return 0, err
	}

	return publicRatingWeight*averageRating + judgedScoreWeight*normalizedScore, nil
}

func (e *scoringEngine) averageRating(ctx context.Context, contentID uint) (float64, error) {
	cacheKey := fmt.Sprintf("ratings:average:%d", contentID)

	if e.cache != nil {
		if cached, err := e.cache.Get(ctx, cacheKey).Result(); err == nil {
			var value float64
			if unmarshalErr := json.Unmarshal([]byte(cached), &value); unmarshalErr == nil {
				return value, nil
			}
		} else if err != redis.Nil {
			e.logger.Warn().Err(err).Msg("failed to read rating cache")
		}
	}

	average, err := e.ratings.AverageForContent(ctx, contentID)
	if err != nil {
		return 0, fmt.Errorf("failed to load rating aggregate: %w", err)
	}

	value := 0.0
	if average != nil {
		value = *average
	}

	if e.cache != nil {
		if payload, err := json.Marshal(value); err == nil {
			if err := e.cache.Set(ctx, cacheKey, payload, e.cacheTTL).Err(); err != nil {
				e.logger.Warn().Err(err).Msg("failed to store rating cache")
			}
		}
	}

	return value, nil
}
