package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/okian/platformer/internal/adapters/repository"
	"github.com/okian/platformer/internal/domain/model"
	"github.com/okian/platformer/internal/domain/progress"
	"github.com/okian/platformer/internal/domain/ranking"
	"github.com/okian/platformer/pkg/logger"
	"github.com/okian/platformer/pkg/metrics"
)

// Submission is one finished attempt on a level.
type Submission struct {
	LevelID string
	Points  int64
	Time    float64
}

func (sub Submission) validate() error {
	if sub.LevelID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	if math.IsNaN(sub.Time) || math.IsInf(sub.Time, 0) {
		return fmt.Errorf("%w: time must be a finite number", ErrInvalidInput)
	}
	return nil
}

// SubmitScore merges an attempt into the player's progress, then into the
// level leaderboard, and returns the updated user. Each record is written
// with compare-and-swap and retried on conflict.
func (s *Service) SubmitScore(ctx context.Context, userID string, sub Submission) (model.User, error) {
	if err := sub.validate(); err != nil {
		return model.User{}, err
	}
	if _, err := s.level(ctx, sub.LevelID); err != nil {
		return model.User{}, err
	}

	var (
		username string
		imp      progress.Improvement
	)
	u, err := s.updateUser(ctx, userID, func(u *model.User) error {
		u.Progress, imp = u.Progress.Record(sub.LevelID, sub.Points, sub.Time)
		username = u.Username
		return nil
	})
	if err != nil {
		return model.User{}, err
	}
	recordImprovement(imp)

	res, err := s.mergeLeaderboard(ctx, sub, username)
	if err != nil {
		return model.User{}, err
	}
	metrics.RecordScoreSubmission()
	metrics.RecordRankingOutcome("time", string(res.Time))
	metrics.RecordRankingOutcome("points", string(res.Points))
	s.logger.Debug(ctx, "score submitted",
		logger.String("level_id", sub.LevelID),
		logger.String("player", username),
		logger.Int64("points", sub.Points),
		logger.Float64("time", sub.Time),
		logger.String("time_outcome", string(res.Time)),
		logger.String("points_outcome", string(res.Points)),
	)
	return u, nil
}

func (s *Service) mergeLeaderboard(ctx context.Context, sub Submission, player string) (ranking.Result, error) {
	var res ranking.Result
	err := s.retry(ctx, "leaderboard", func() error {
		lb, err := s.store.Leaderboard(ctx, sub.LevelID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			var board ranking.Board
			board, res = ranking.Submit(nil, player, sub.Points, sub.Time, s.capacity)
			return s.store.CreateLeaderboard(ctx, model.Leaderboard{
				ID:        sub.LevelID,
				Board:     board,
				UpdatedAt: s.now().UTC(),
			})
		case err != nil:
			return err
		}
		lb.Board, res = ranking.Submit(&lb.Board, player, sub.Points, sub.Time, s.capacity)
		lb.UpdatedAt = s.now().UTC()
		_, err = s.store.UpdateLeaderboard(ctx, lb)
		return err
	})
	return res, err
}

func recordImprovement(imp progress.Improvement) {
	if imp.First {
		metrics.RecordProgressImprovement("first")
		return
	}
	if imp.Points {
		metrics.RecordProgressImprovement("points")
	}
	if imp.Time {
		metrics.RecordProgressImprovement("time")
	}
}

// Highscore returns the leaderboard of a level.
func (s *Service) Highscore(ctx context.Context, levelID string) (model.Leaderboard, error) {
	lb, err := s.store.Leaderboard(ctx, levelID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Leaderboard{}, ErrLeaderboardNotFound
	}
	return lb, err
}
