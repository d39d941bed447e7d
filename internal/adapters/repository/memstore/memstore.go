// Package memstore is an in-process repository.Store for tests, local runs
// and the load tool.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/platformer/internal/adapters/repository"
	"github.com/okian/platformer/internal/domain/model"
)

// Store keeps every record in maps guarded by one RWMutex. Records are
// cloned on the way in and out so callers never share slices with the store.
type Store struct {
	mu           sync.RWMutex
	users        map[string]model.User
	usernames    map[string]string // username -> id
	levels       map[string]model.Level
	leaderboards map[string]model.Leaderboard
}

var _ repository.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		users:        make(map[string]model.User),
		usernames:    make(map[string]string),
		levels:       make(map[string]model.Level),
		leaderboards: make(map[string]model.Leaderboard),
	}
}

func (s *Store) CreateUser(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usernames[u.Username]; taken {
		return repository.ErrDuplicate
	}
	if _, taken := s.users[u.ID]; taken {
		return repository.ErrDuplicate
	}
	s.users[u.ID] = u.Clone()
	s.usernames[u.Username] = u.ID
	return nil
}

func (s *Store) UserByID(_ context.Context, id string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u.Clone(), nil
}

func (s *Store) UserByName(_ context.Context, username string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usernames[username]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return s.users[id].Clone(), nil
}

func (s *Store) UpdateUser(_ context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.users[u.ID]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	if cur.Version != u.Version {
		return model.User{}, repository.ErrConflict
	}
	if cur.Username != u.Username {
		if _, taken := s.usernames[u.Username]; taken {
			return model.User{}, repository.ErrDuplicate
		}
		delete(s.usernames, cur.Username)
		s.usernames[u.Username] = u.ID
	}
	next := u.Clone()
	next.Version++
	s.users[u.ID] = next
	return next.Clone(), nil
}

func (s *Store) CreateLevel(_ context.Context, l model.Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.levels[l.ID]; exists {
		return repository.ErrDuplicate
	}
	s.levels[l.ID] = l
	return nil
}

func (s *Store) Level(_ context.Context, id string) (model.Level, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.levels[id]
	if !ok {
		return model.Level{}, repository.ErrNotFound
	}
	return l, nil
}

func (s *Store) Levels(_ context.Context, f repository.LevelFilter) ([]model.Level, error) {
	s.mu.RLock()
	out := make([]model.Level, 0, len(s.levels))
	for _, l := range s.levels {
		if f.Creator != "" && l.Creator != f.Creator {
			continue
		}
		out = append(out, l)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Store) UpdateLevel(_ context.Context, l model.Level) (model.Level, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.levels[l.ID]
	if !ok {
		return model.Level{}, repository.ErrNotFound
	}
	if cur.Version != l.Version {
		return model.Level{}, repository.ErrConflict
	}
	l.Version++
	s.levels[l.ID] = l
	return l, nil
}

func (s *Store) DeleteLevel(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.levels[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.levels, id)
	return nil
}

func (s *Store) Leaderboard(_ context.Context, levelID string) (model.Leaderboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lb, ok := s.leaderboards[levelID]
	if !ok {
		return model.Leaderboard{}, repository.ErrNotFound
	}
	return lb.Clone(), nil
}

func (s *Store) CreateLeaderboard(_ context.Context, lb model.Leaderboard) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.leaderboards[lb.ID]; exists {
		return repository.ErrConflict
	}
	s.leaderboards[lb.ID] = lb.Clone()
	return nil
}

func (s *Store) UpdateLeaderboard(_ context.Context, lb model.Leaderboard) (model.Leaderboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.leaderboards[lb.ID]
	if !ok {
		return model.Leaderboard{}, repository.ErrNotFound
	}
	if cur.Version != lb.Version {
		return model.Leaderboard{}, repository.ErrConflict
	}
	next := lb.Clone()
	next.Version++
	s.leaderboards[lb.ID] = next
	return next.Clone(), nil
}

func (s *Store) DeleteLeaderboard(_ context.Context, levelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.leaderboards, levelID)
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close(context.Context) error { return nil }
