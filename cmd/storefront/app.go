package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/clothify/storefront/internal/core/service"
	mongostore "github.com/clothify/storefront/internal/infrastructure/db/mongo"
	"github.com/clothify/storefront/internal/infrastructure/security"
	"github.com/clothify/storefront/internal/pkg/config"
	"github.com/clothify/storefront/pkg/logger"
)

// store groups the Mongo handles and repositories shared by every command.
type store struct {
	client   *mongo.Client
	users    *mongostore.AuthRepository
	products *mongostore.ProductRepository
	events   *mongostore.AuthEventRepository
}

func loadConfig(ctx context.Context) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "storefront",
	})
	return cfg, log, nil
}

func openStore(ctx context.Context, cfg *config.Config) (*store, error) {
	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return nil, err
	}

	s := &store{
		client:   client,
		users:    mongostore.NewAuthRepository(db),
		products: mongostore.NewProductRepository(db),
		events:   mongostore.NewAuthEventRepository(db),
	}
	if err := mongostore.EnsureIndexes(ctx, s.users, s.products, s.events); err != nil {
		_ = mongostore.Disconnect(ctx, client)
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}
	return s, nil
}

func (s *store) close(ctx context.Context) error {
	return mongostore.Disconnect(ctx, s.client)
}

// newGate builds the auth gate with its mandatory collaborators; callers add
// revocation and auditing through opts.
func newGate(cfg *config.Config, users *mongostore.AuthRepository, opts ...service.AuthOption) (*service.AuthService, error) {
	tokens, err := security.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL,
		security.WithIssuer(cfg.Auth.TokenIssuer))
	if err != nil {
		return nil, err
	}
	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	return service.NewAuthService(users, hasher, tokens, opts...), nil
}
