package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/okian/platformer/internal/adapters/repository"
	"github.com/okian/platformer/internal/domain/model"
	"github.com/okian/platformer/pkg/logger"
	"github.com/okian/platformer/pkg/metrics"
)

// LevelInput is the body of a level save. An ID naming an existing level
// updates it; anything else creates a new level.
type LevelInput struct {
	ID        string
	JSON      string
	Thumbnail string
}

// SaveLevel creates or updates a level on behalf of userID.
func (s *Service) SaveLevel(ctx context.Context, userID string, in LevelInput) (model.Level, error) {
	u, err := s.User(ctx, userID)
	if err != nil {
		return model.Level{}, err
	}

	if in.ID != "" {
		lvl, err := s.updateLevel(ctx, u, in)
		if !errors.Is(err, ErrLevelNotFound) {
			return lvl, err
		}
	}

	if in.JSON == "" {
		return model.Level{}, fmt.Errorf("%w: json must not be empty for level creation", ErrInvalidInput)
	}
	now := s.now().UTC()
	lvl := model.Level{
		ID:           uuid.NewString(),
		Creator:      u.Username,
		JSON:         in.JSON,
		Thumbnail:    in.Thumbnail,
		CreatedAt:    now,
		LastModified: now,
	}
	if err := s.store.CreateLevel(ctx, lvl); err != nil {
		return model.Level{}, err
	}
	if _, err := s.updateUser(ctx, u.ID, func(u *model.User) error {
		u.CreatedLevels = model.AddUnique(u.CreatedLevels, lvl.ID)
		return nil
	}); err != nil {
		return model.Level{}, err
	}
	metrics.RecordLevelWrite("create")
	s.logger.Info(ctx, "level created", logger.String("level_id", lvl.ID), logger.String("creator", lvl.Creator))
	return lvl, nil
}

func (s *Service) updateLevel(ctx context.Context, u model.User, in LevelInput) (model.Level, error) {
	var out model.Level
	err := s.retry(ctx, "level", func() error {
		lvl, err := s.level(ctx, in.ID)
		if err != nil {
			return err
		}
		if lvl.Creator != u.Username {
			return ErrForbidden
		}
		if in.JSON != "" {
			lvl.JSON = in.JSON
		}
		if in.Thumbnail != "" {
			lvl.Thumbnail = in.Thumbnail
		}
		lvl.LastModified = s.now().UTC()
		out, err = s.store.UpdateLevel(ctx, lvl)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLevelNotFound
		}
		return err
	})
	if err == nil {
		metrics.RecordLevelWrite("update")
	}
	return out, err
}

func (s *Service) level(ctx context.Context, id string) (model.Level, error) {
	lvl, err := s.store.Level(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Level{}, ErrLevelNotFound
	}
	return lvl, err
}

// Level returns one level.
func (s *Service) Level(ctx context.Context, id string) (model.Level, error) {
	return s.level(ctx, id)
}

// Levels lists levels newest first. limit <= 0 uses the default; larger
// values are capped.
func (s *Service) Levels(ctx context.Context, creator string, limit int) ([]model.Level, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > s.maxListLimit {
		limit = s.maxListLimit
	}
	return s.store.Levels(ctx, repository.LevelFilter{Creator: creator, Limit: limit})
}

// DeleteLevel removes a level, its leaderboard and the creator's reference.
// Saved references held by other players are left; they resolve to 404.
func (s *Service) DeleteLevel(ctx context.Context, userID, levelID string) error {
	u, err := s.User(ctx, userID)
	if err != nil {
		return err
	}
	lvl, err := s.level(ctx, levelID)
	if err != nil {
		return err
	}
	if lvl.Creator != u.Username {
		return ErrForbidden
	}
	if err := s.store.DeleteLevel(ctx, levelID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLevelNotFound
		}
		return err
	}
	if err := s.store.DeleteLeaderboard(ctx, levelID); err != nil {
		return err
	}
	if _, err := s.updateUser(ctx, u.ID, func(u *model.User) error {
		u.CreatedLevels = model.Remove(u.CreatedLevels, levelID)
		return nil
	}); err != nil {
		return err
	}
	metrics.RecordLevelWrite("delete")
	s.logger.Info(ctx, "level deleted", logger.String("level_id", levelID))
	return nil
}

// Subscribe adds a level to the user's saved levels.
func (s *Service) Subscribe(ctx context.Context, userID, levelID string) (model.User, error) {
	if _, err := s.level(ctx, levelID); err != nil {
		return model.User{}, err
	}
	return s.updateUser(ctx, userID, func(u *model.User) error {
		u.SavedLevels = model.AddUnique(u.SavedLevels, levelID)
		return nil
	})
}

// Unsubscribe removes a level from the user's saved levels.
func (s *Service) Unsubscribe(ctx context.Context, userID, levelID string) (model.User, error) {
	return s.updateUser(ctx, userID, func(u *model.User) error {
		u.SavedLevels = model.Remove(u.SavedLevels, levelID)
		return nil
	})
}
