// Package repository defines the persistence contracts and errors.
//
// Every stored record carries a version. Update calls are compare-and-swap:
// they succeed only when the stored version equals the version on the
// argument, and the stored version becomes version+1. A lost race returns
// ErrConflict and the caller reloads and retries.
package repository

import (
	"context"

	"github.com/okian/platformer/internal/domain/model"
)

// UserStore persists user records.
type UserStore interface {
	// CreateUser inserts u. Returns ErrDuplicate if the username is taken.
	CreateUser(ctx context.Context, u model.User) error
	// UserByID returns ErrNotFound for an unknown id.
	UserByID(ctx context.Context, id string) (model.User, error)
	// UserByName returns ErrNotFound for an unknown username.
	UserByName(ctx context.Context, username string) (model.User, error)
	// UpdateUser replaces u if its version still matches and returns the
	// stored record.
	UpdateUser(ctx context.Context, u model.User) (model.User, error)
}

// LevelFilter narrows a level listing.
type LevelFilter struct {
	Creator string // empty = any
	Limit   int
}

// LevelStore persists levels.
type LevelStore interface {
	CreateLevel(ctx context.Context, l model.Level) error
	Level(ctx context.Context, id string) (model.Level, error)
	// Levels lists newest first.
	Levels(ctx context.Context, f LevelFilter) ([]model.Level, error)
	UpdateLevel(ctx context.Context, l model.Level) (model.Level, error)
	DeleteLevel(ctx context.Context, id string) error
}

// LeaderboardStore persists one leaderboard per level, keyed by level id.
type LeaderboardStore interface {
	Leaderboard(ctx context.Context, levelID string) (model.Leaderboard, error)
	// CreateLeaderboard returns ErrConflict when another writer created the
	// leaderboard first.
	CreateLeaderboard(ctx context.Context, lb model.Leaderboard) error
	UpdateLeaderboard(ctx context.Context, lb model.Leaderboard) (model.Leaderboard, error)
	DeleteLeaderboard(ctx context.Context, levelID string) error
}

// Store bundles every collection of one backend.
type Store interface {
	UserStore
	LevelStore
	LeaderboardStore

	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error
	// Close releases the backend connection.
	Close(ctx context.Context) error
}
