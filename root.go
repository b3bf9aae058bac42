package main

import (
	"context"
	"database/sql"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/isdelr/cabinet-be/internal/config"
	"github.com/isdelr/cabinet-be/internal/database"
	"github.com/isdelr/cabinet-be/internal/logger"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the cabinet CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cabinet",
		Short: "Cabinet - a recipe and cocktail catalogue",
		Long: `Cabinet serves a JSON API for recipes, favorites, authors and books
together with the single-page front end.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewPopulateCmd())

	return cmd
}

// loadConfig reads the layered configuration and initializes the global logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("config_file", configFile).Wrap(err)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}

// openDatabase opens the configured database and applies pending migrations.
func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("path", cfg.DatabasePath).Wrap(err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}
	return db, nil
}
