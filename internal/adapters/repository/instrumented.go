package repository

import (
	"context"
	"errors"
	"time"

	"github.com/okian/platformer/internal/domain/model"
	"github.com/okian/platformer/pkg/metrics"
)

// Instrument wraps s so every call records its latency, and its failure
// when the error is not an expected sentinel.
func Instrument(s Store) Store {
	return &instrumented{next: s}
}

type instrumented struct {
	next Store
}

func observe(collection, op string, start time.Time, err error) {
	metrics.RecordStoreLatency(collection, op, float64(time.Since(start).Microseconds())/1000.0)
	if err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrConflict) && !errors.Is(err, ErrDuplicate) {
		metrics.RecordStoreError(collection, op)
	}
}

func (s *instrumented) CreateUser(ctx context.Context, u model.User) (err error) {
	defer func(start time.Time) { observe("users", "create", start, err) }(time.Now())
	return s.next.CreateUser(ctx, u)
}

func (s *instrumented) UserByID(ctx context.Context, id string) (u model.User, err error) {
	defer func(start time.Time) { observe("users", "get", start, err) }(time.Now())
	return s.next.UserByID(ctx, id)
}

func (s *instrumented) UserByName(ctx context.Context, username string) (u model.User, err error) {
	defer func(start time.Time) { observe("users", "get_by_name", start, err) }(time.Now())
	return s.next.UserByName(ctx, username)
}

func (s *instrumented) UpdateUser(ctx context.Context, u model.User) (out model.User, err error) {
	defer func(start time.Time) { observe("users", "update", start, err) }(time.Now())
	return s.next.UpdateUser(ctx, u)
}

func (s *instrumented) CreateLevel(ctx context.Context, l model.Level) (err error) {
	defer func(start time.Time) { observe("levels", "create", start, err) }(time.Now())
	return s.next.CreateLevel(ctx, l)
}

func (s *instrumented) Level(ctx context.Context, id string) (l model.Level, err error) {
	defer func(start time.Time) { observe("levels", "get", start, err) }(time.Now())
	return s.next.Level(ctx, id)
}

func (s *instrumented) Levels(ctx context.Context, f LevelFilter) (ls []model.Level, err error) {
	defer func(start time.Time) { observe("levels", "list", start, err) }(time.Now())
	return s.next.Levels(ctx, f)
}

func (s *instrumented) UpdateLevel(ctx context.Context, l model.Level) (out model.Level, err error) {
	defer func(start time.Time) { observe("levels", "update", start, err) }(time.Now())
	return s.next.UpdateLevel(ctx, l)
}

func (s *instrumented) DeleteLevel(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { observe("levels", "delete", start, err) }(time.Now())
	return s.next.DeleteLevel(ctx, id)
}

func (s *instrumented) Leaderboard(ctx context.Context, levelID string) (lb model.Leaderboard, err error) {
	defer func(start time.Time) { observe("leaderboards", "get", start, err) }(time.Now())
	return s.next.Leaderboard(ctx, levelID)
}

func (s *instrumented) CreateLeaderboard(ctx context.Context, lb model.Leaderboard) (err error) {
	defer func(start time.Time) { observe("leaderboards", "create", start, err) }(time.Now())
	return s.next.CreateLeaderboard(ctx, lb)
}

func (s *instrumented) UpdateLeaderboard(ctx context.Context, lb model.Leaderboard) (out model.Leaderboard, err error) {
	defer func(start time.Time) { observe("leaderboards", "update", start, err) }(time.Now())
	return s.next.UpdateLeaderboard(ctx, lb)
}

func (s *instrumented) DeleteLeaderboard(ctx context.Context, levelID string) (err error) {
	defer func(start time.Time) { observe("leaderboards", "delete", start, err) }(time.Now())
	return s.next.DeleteLeaderboard(ctx, levelID)
}

func (s *instrumented) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

func (s *instrumented) Close(ctx context.Context) error {
	return s.next.Close(ctx)
}
