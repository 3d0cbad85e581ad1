package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/DanielPopoola/tourvista-payments/internal/adapters/postgres"
	"github.com/DanielPopoola/tourvista-payments/internal/config"
	"github.com/spf13/cobra"
)

var (
	downSteps int
	logger    *slog.Logger
	migrator  *postgres.Migrator
)

func main() {
	rootCmd := &cobra.Command{
		Use:               "migrate",
		Short:             "Manage the tourvista payments schema",
		PersistentPreRunE: openMigrator,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return migrator.Close()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrator.Down(downSteps)
		},
	}
	downCmd.Flags().IntVar(&downSteps, "steps", 0, "number of migrations to roll back (0 = all)")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrator.Up()
			},
		},
		downCmd,
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				v, dirty, err := migrator.Version()
				if err != nil {
					return err
				}
				logger.Info("schema version", "version", v, "dirty", dirty)
				return nil
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func openMigrator(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger = cfg.Logger.NewLogger()

	migrator, err = postgres.NewMigrator(cfg.Database.URL(), logger)
	if err != nil {
		return fmt.Errorf("open migrator: %w", err)
	}
	return nil
}
