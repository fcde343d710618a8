package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/cartkeep/internal/config"
	"github.com/dmitrymomot/cartkeep/middlewares"
	"github.com/dmitrymomot/cartkeep/pkg/logger"
	"github.com/dmitrymomot/cartkeep/pkg/session"
)

// env holds what every subcommand needs, filled by PersistentPreRunE.
type env struct {
	cfg     *config.Config
	log     *slog.Logger
	cfgFile string
}

func newRootCmd() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:           "cartkeep",
		Short:         "Server-side cart session persistence",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return e.load()
		},
	}
	root.PersistentFlags().StringVar(&e.cfgFile, "config", "", "config file (yaml, toml or json)")

	root.AddCommand(
		newServeCmd(e),
		newMigrateCmd(e),
		newSweepCmd(e),
	)
	return root
}

// load reads the configuration and builds the process logger.
func (e *env) load() error {
	cfg, err := config.Load(e.cfgFile)
	if err != nil {
		return err
	}
	e.cfg = cfg
	e.log = logger.NewWithSentry(
		logger.Config{Format: cfg.Log.Format, Level: logger.ParseLevel(cfg.Log.Level)},
		logger.SentryConfig{DSN: cfg.Sentry.DSN, Environment: cfg.Sentry.Environment},
		middlewares.RequestIDExtractor(),
		session.LogExtractor(),
	)
	return nil
}
