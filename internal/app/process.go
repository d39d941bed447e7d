package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/platformer/internal/adapters/repository"
	"github.com/okian/platformer/internal/adapters/repository/memstore"
	"github.com/okian/platformer/internal/adapters/repository/mongostore"
	"github.com/okian/platformer/internal/auth"
	"github.com/okian/platformer/internal/config"
	"github.com/okian/platformer/internal/domain/revocation"
	"github.com/okian/platformer/pkg/logger"
)

// ProcessContext holds what lives for the whole process: configuration, the
// store connection, token signing and the CORS allowlist. It is built once
// at startup.
type ProcessContext struct {
	Config         *config.Config
	Logger         logger.Logger
	Store          repository.Store
	Hasher         *auth.Hasher
	Issuer         *auth.Issuer
	Revoked        revocation.List
	AllowedOrigins []string
}

// NewProcessContext opens the configured store and builds the auth pieces.
func NewProcessContext(ctx context.Context, cfg *config.Config, log logger.Logger) (*ProcessContext, error) {
	var store repository.Store
	switch cfg.Store {
	case config.StoreMemory:
		store = memstore.New()
	case config.StoreMongo:
		timeout := time.Duration(cfg.MongoTimeoutMS) * time.Millisecond
		connectCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		ms, err := mongostore.Connect(connectCtx, cfg.MongoURI, cfg.MongoDatabase, mongostore.WithTimeout(timeout))
		if err != nil {
			return nil, err
		}
		store = ms
	default:
		return nil, fmt.Errorf("%w: unknown store %q", config.ErrInvalidConfig, cfg.Store)
	}
	log.Info(ctx, "store ready", logger.String("store", cfg.Store))

	return &ProcessContext{
		Config:         cfg,
		Logger:         log,
		Store:          repository.Instrument(store),
		Hasher:         auth.NewHasher(cfg.BcryptCost),
		Issuer:         auth.NewIssuer(cfg.TokenSecret, time.Duration(cfg.TokenExpireDays)*24*time.Hour),
		Revoked:        revocation.NewInMemoryList(revocation.WithMaxSize(cfg.RevocationSize)),
		AllowedOrigins: cfg.AllowedOrigins,
	}, nil
}

// Service builds the service on the process resources.
func (p *ProcessContext) Service() *Service {
	return New(
		WithStore(p.Store),
		WithHasher(p.Hasher),
		WithIssuer(p.Issuer),
		WithRevocationList(p.Revoked),
		WithLeaderboardCapacity(p.Config.LeaderboardCapacity),
		WithMergeRetries(p.Config.MergeRetries),
		WithMaxListLimit(p.Config.MaxListLimit),
		WithLogger(p.Logger.Named("service")),
	)
}

// Close disconnects the store.
func (p *ProcessContext) Close(ctx context.Context) error {
	return p.Store.Close(ctx)
}
