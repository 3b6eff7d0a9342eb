package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"storefront-service/internal/handler"
	"storefront-service/internal/service"
	"storefront-service/pkg/config"
	"storefront-service/pkg/jwtutil"
	"storefront-service/pkg/logger"
	"storefront-service/pkg/password"
	"storefront-service/prometheus"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCommand() *cobra.Command {
	var (
		skipMigrate bool
		bcryptCost  int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), skipMigrate, bcryptCost)
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not migrate the schema on start")
	cmd.Flags().IntVar(&bcryptCost, "bcrypt-cost", 0, "bcrypt cost for new passwords (0 uses the library default)")
	return cmd
}

func serve(ctx context.Context, skipMigrate bool, bcryptCost int) error {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := logger.InitLogger(cfg); err != nil {
		return err
	}
	log := logger.GetLogger()
	defer func() { _ = log.Sync() }()
	log.Info("Starting storefront service...", zap.String("version", version))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.close(context.Background()); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	if !skipMigrate {
		if err := db.migrate(ctx); err != nil {
			return err
		}
		log.Info("Schema migrated")
	}

	prometheus.SetServiceInfo(cfg.Metrics.Prefix, version, cfg.DB.Driver)

	tokens := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      cfg.JWT.SigningKey,
		ExpirationHours: cfg.JWT.ExpirationHours,
	})
	accounts := service.NewAccountService(db.repos.Users, password.NewBcryptHasher(bcryptCost), tokens)
	e := handler.NewRouter(handler.Services{
		Resolver: service.NewResolver(db.repos.Stores),
		Gate:     service.NewGate(tokens, db.repos.Users, cfg.Security.StoreKey),
		Stores:   service.NewStoreService(db.repos.Stores, accounts, tokens),
		Accounts: accounts,
		Catalog:  service.NewCatalog(db.repos.Categories),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		errCh <- e.Start(":" + cfg.Server.Port)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
