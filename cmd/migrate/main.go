package main

import (
	"errors"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"

	"carteira/internal/config"
	"carteira/internal/database"
	"carteira/internal/logger"
)

func main() {
	defer logger.Sync()

	if err := newRootCmd().Execute(); err != nil {
		logger.Get().Fatalf("Migration error: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	var mig *migrate.Migrate

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply or roll back the PostgreSQL schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger.Init(cfg.Env, cfg.LogLevel)

			mig, err = database.NewMigrator(cfg.MigrationsPath, cfg.PostgresURL())
			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if mig != nil {
				database.CloseMigrator(mig)
			}
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
					return err
				}
				logger.Get().Info("Migrations applied successfully")
				return nil
			},
		},
		&cobra.Command{
			Use:   "down [N]",
			Short: "Roll back the last N migrations (default 1)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil || n < 1 {
						return errors.New("invalid step count: " + args[0])
					}
					steps = n
				}
				if err := mig.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
					return err
				}
				logger.Get().Infof("Rolled back %d migration(s)", steps)
				return nil
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				version, dirty, err := mig.Version()
				if err != nil {
					return err
				}
				logger.Get().Infof("Version: %d, Dirty: %v", version, dirty)
				return nil
			},
		},
	)

	return root
}
