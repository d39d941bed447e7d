package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/platformer/internal/adapters/repository"
	"github.com/okian/platformer/internal/auth"
	"github.com/okian/platformer/internal/domain/model"
	"github.com/okian/platformer/internal/domain/progress"
	"github.com/okian/platformer/pkg/logger"
	"github.com/okian/platformer/pkg/metrics"
)

// Session is a user plus the token issued to them.
type Session struct {
	User  model.User
	Token auth.Token
}

// Register creates an account and signs a token for it.
func (s *Service) Register(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Session{}, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}
	hash, err := s.hasher.Hash(password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return Session{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err != nil {
		return Session{}, err
	}
	u := model.User{
		ID:            uuid.NewString(),
		Username:      username,
		PasswordHash:  hash,
		CreatedLevels: []string{},
		SavedLevels:   []string{},
		Progress:      progress.Book{},
		CreatedAt:     s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return Session{}, ErrUserExists
		}
		return Session{}, err
	}
	tok, err := s.issuer.Issue(u.ID, u.Username)
	if err != nil {
		return Session{}, err
	}
	metrics.RecordRegistration()
	s.logger.Info(ctx, "user registered", logger.String("user_id", u.ID), logger.String("username", u.Username))
	return Session{User: u, Token: tok}, nil
}

// Login checks the password and signs a fresh token.
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Session{}, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}
	u, err := s.store.UserByName(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		metrics.RecordLogin("unknown_user")
		return Session{}, ErrUserNotFound
	}
	if err != nil {
		return Session{}, err
	}
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrWrongPassword) {
			metrics.RecordLogin("wrong_password")
			return Session{}, ErrWrongPassword
		}
		return Session{}, err
	}
	tok, err := s.issuer.Issue(u.ID, u.Username)
	if err != nil {
		return Session{}, err
	}
	metrics.RecordLogin("ok")
	return Session{User: u, Token: tok}, nil
}

// Authenticate verifies a raw token and rejects revoked ones.
func (s *Service) Authenticate(ctx context.Context, raw string) (*auth.Claims, error) {
	claims, err := s.issuer.Verify(raw)
	if err != nil {
		return nil, err
	}
	if s.revoked.Revoked(ctx, claims.TokenID()) {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, claims *auth.Claims) {
	s.revoked.Revoke(ctx, claims.TokenID(), claims.Expiry())
	metrics.UpdateRevokedTokens(int(s.revoked.Size()))
	s.logger.Info(ctx, "user logged out", logger.String("user_id", claims.UserID))
}

// User returns the account behind id.
func (s *Service) User(ctx context.Context, id string) (model.User, error) {
	u, err := s.store.UserByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// TokenTTL is how long issued tokens stay valid.
func (s *Service) TokenTTL() time.Duration { return s.issuer.TTL() }
