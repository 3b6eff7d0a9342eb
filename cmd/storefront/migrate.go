package main

import (
	"storefront-service/pkg/config"
	"storefront-service/pkg/logger"

	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables or indexes for the configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := logger.InitLogger(cfg); err != nil {
				return err
			}
			log := logger.GetLogger()

			db, err := openBackend(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = db.close(cmd.Context()) }()

			if err := db.migrate(cmd.Context()); err != nil {
				return err
			}
			log.Info("Schema migrated")
			return nil
		},
	}
}
