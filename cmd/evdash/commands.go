package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"evdash/internal/app"
	"evdash/internal/config"
	"evdash/pkg/logger"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "evdash",
		Short: "Electric car dataset API",
		Long: `evdash serves the electric car dataset over HTTP.

On startup the record store is seeded from SEED_SOURCE when it is empty,
then the API (list, get, delete, search, filter) is exposed on HTTP_PORT.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	root.AddCommand(
		&cobra.Command{
			Use:          "serve",
			Short:        "Seed the store if needed and start the HTTP API",
			SilenceUsage: true,
			RunE:         runServe,
		},
		&cobra.Command{
			Use:          "seed",
			Short:        "Load the dataset into an empty store and exit",
			SilenceUsage: true,
			RunE:         runSeed,
		},
		&cobra.Command{
			Use:          "schema",
			Short:        "Print the effective field schema as YAML",
			SilenceUsage: true,
			RunE:         runSchema,
		},
	)

	return root
}

// setup загружает конфигурацию и создает логгер
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Path:    cfg.LogPath,
		DataDir: cfg.AppDataDir,
	})
	return cfg, log, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to create application", zap.Error(err))
		return err
	}

	if err := a.Run(ctx); err != nil {
		log.Error("Application stopped with error", zap.Error(err))
		return err
	}

	log.Info("Application stopped successfully")
	return nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	factory := app.NewComponentFactory(cfg, log)

	if err := factory.CreateAppDataDirectory(); err != nil {
		return err
	}

	s, err := factory.CreateSchema()
	if err != nil {
		return err
	}

	store, err := factory.CreateStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	bootstrapper, err := factory.CreateBootstrapper(store, s)
	if err != nil {
		return err
	}

	inserted, err := bootstrapper.Run(ctx)
	if err != nil {
		log.Error("Seeding failed", zap.Error(err))
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "inserted %d records\n", inserted)
	return nil
}

func runSchema(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// stdout занят YAML, логи не нужны
	s, err := app.NewComponentFactory(cfg, zap.NewNop()).CreateSchema()
	if err != nil {
		return err
	}

	data, err := s.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}
