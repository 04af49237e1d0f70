package main

import (
	"github.com/spf13/cobra"

	"nutritrack/config"
	"nutritrack/pkg/logger"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			l := logger.NewForMode(cfg.Server.GinMode)
			defer l.Sync()

			database, err := connectDB(cfg.DB, l)
			if err != nil {
				return err
			}
			defer database.Close()

			applied, err := database.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				l.Info("Database is up to date")
				return nil
			}
			l.Infow("Migrations applied", "versions", applied)
			return nil
		},
	}
}
