// Package service implements accounts, levels and the score engine on top
// of the repository contracts.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/platformer/internal/adapters/repository"
	"github.com/okian/platformer/internal/adapters/repository/memstore"
	"github.com/okian/platformer/internal/auth"
	"github.com/okian/platformer/internal/domain/model"
	"github.com/okian/platformer/internal/domain/ranking"
	"github.com/okian/platformer/internal/domain/revocation"
	"github.com/okian/platformer/pkg/logger"
	"github.com/okian/platformer/pkg/metrics"
)

const (
	defaultMergeRetries = 5
	defaultListLimit    = 50
	defaultMaxListLimit = 200
	defaultTokenTTL     = 30 * 24 * time.Hour
)

// Service implements the API dependencies.
type Service struct {
	store   repository.Store
	hasher  *auth.Hasher
	issuer  *auth.Issuer
	revoked revocation.List

	capacity     int
	mergeRetries int
	maxListLimit int

	now    func() time.Time
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the backing store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithHasher sets the password hasher.
func WithHasher(h *auth.Hasher) Option {
	return func(s *Service) {
		if h != nil {
			s.hasher = h
		}
	}
}

// WithIssuer sets the token issuer.
func WithIssuer(i *auth.Issuer) Option {
	return func(s *Service) {
		if i != nil {
			s.issuer = i
		}
	}
}

// WithRevocationList sets where logged-out tokens are recorded.
func WithRevocationList(l revocation.List) Option {
	return func(s *Service) {
		if l != nil {
			s.revoked = l
		}
	}
}

// WithLeaderboardCapacity bounds each ranking list.
func WithLeaderboardCapacity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithMergeRetries bounds compare-and-swap attempts per record.
func WithMergeRetries(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.mergeRetries = n
		}
	}
}

// WithMaxListLimit caps level listings.
func WithMaxListLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxListLimit = n
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Without options it runs on an in-memory store
// with a random signing secret.
func New(opts ...Option) *Service {
	s := &Service{
		capacity:     ranking.DefaultCapacity,
		mergeRetries: defaultMergeRetries,
		maxListLimit: defaultMaxListLimit,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = memstore.New()
	}
	if s.hasher == nil {
		s.hasher = auth.NewHasher(0)
	}
	if s.issuer == nil {
		s.issuer = auth.NewIssuer(uuid.NewString(), defaultTokenTTL)
	}
	if s.revoked == nil {
		s.revoked = revocation.NewInMemoryList()
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

// Ping reports whether the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Stats returns service statistics for monitoring.
func (s *Service) Stats() map[string]any {
	revoked := s.revoked.Size()
	metrics.UpdateRevokedTokens(int(revoked))
	return map[string]any{
		"revokedTokens":       revoked,
		"leaderboardCapacity": s.capacity,
		"mergeRetries":        s.mergeRetries,
	}
}

// retry runs fn until it stops returning repository.ErrConflict, at most
// mergeRetries times. Exhaustion returns ErrConflict.
func (s *Service) retry(ctx context.Context, record string, fn func() error) error {
	for attempt := 1; attempt <= s.mergeRetries; attempt++ {
		err := fn()
		if !errors.Is(err, repository.ErrConflict) {
			return err
		}
		metrics.RecordMergeConflict(record)
		s.logger.Debug(ctx, "write conflict, retrying",
			logger.String("record", record),
			logger.Int("attempt", attempt),
		)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	s.logger.Warn(ctx, "write conflict retries exhausted",
		logger.String("record", record),
		logger.Int("retries", s.mergeRetries),
	)
	return fmt.Errorf("%w: %s", ErrConflict, record)
}

// updateUser reloads the user and applies mutate until the swap succeeds.
func (s *Service) updateUser(ctx context.Context, id string, mutate func(u *model.User) error) (model.User, error) {
	var out model.User
	err := s.retry(ctx, "user", func() error {
		u, err := s.store.UserByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}
		if err := mutate(&u); err != nil {
			return err
		}
		out, err = s.store.UpdateUser(ctx, u)
		return err
	})
	return out, err
}
