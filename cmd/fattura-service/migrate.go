package main

import (
	"fmt"

	"github.com/hypernova-labs/fattura-service/internal/config"
	"github.com/hypernova-labs/fattura-service/internal/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded database schema",
	Long: `Apply every embedded SQL migration that has not been recorded in
schema_migrations yet. Safe to run repeatedly.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	logger := setupLogger(cfg)

	db, err := database.Connect(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(cmd.Context(), logger); err != nil {
		return err
	}

	logger.Info("Database schema is up to date")
	return nil
}
