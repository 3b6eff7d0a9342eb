package main

import (
	"context"
	"fmt"

	"storefront-service/internal/repository"
	"storefront-service/internal/repository/memory"
	storemongo "storefront-service/internal/repository/mongo"
	"storefront-service/internal/repository/postgres"
	"storefront-service/pkg/config"
	"storefront-service/pkg/database"

	"go.uber.org/zap"
)

// backend is an open persistence layer
type backend struct {
	repos   repository.Repositories
	migrate func(ctx context.Context) error
	close   func(ctx context.Context) error
}

// openBackend connects to the store selected by DB_DRIVER
func openBackend(ctx context.Context, cfg *config.Config, log *zap.Logger) (*backend, error) {
	switch cfg.DB.Driver {
	case config.DriverPostgres:
		db, err := database.InitDB(&cfg.DB)
		if err != nil {
			return nil, err
		}
		log.Info("Database connection established", zap.String("driver", cfg.DB.Driver))
		return &backend{
			repos: postgres.New(db).Repositories(),
			migrate: func(context.Context) error {
				return database.MigrateModels(db, postgres.Models()...)
			},
			close: func(context.Context) error { return database.Close(db) },
		}, nil

	case config.DriverMongo:
		client, err := database.InitMongo(ctx, &cfg.Mongo)
		if err != nil {
			return nil, err
		}
		log.Info("Database connection established", zap.String("driver", cfg.DB.Driver))
		repo := storemongo.New(client.Database(cfg.Mongo.Database))
		return &backend{
			repos:   repo.Repositories(),
			migrate: repo.EnsureIndexes,
			close:   client.Disconnect,
		}, nil

	case config.DriverMemory:
		log.Warn("Using in-memory storage; data is lost on exit")
		return &backend{
			repos:   memory.New().Repositories(),
			migrate: func(context.Context) error { return nil },
			close:   func(context.Context) error { return nil },
		}, nil
	}

	return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DB.Driver)
}
