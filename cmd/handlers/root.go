package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/config"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/logger"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/store"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
)

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "scholarly",
		Short: "Curate weekly academic digests",
		Long: `Scholarly curates a weekly digest of recent research for each academic field.

For every field it ingests candidates from the configured catalogs and feeds,
scores and ranks them, selects a short reading list that fits the time budget,
writes the surrounding prose and validates the result.

Fields: ai-computing, life-sciences, climate-environment, social-sciences,
physics-engineering.

Examples:
  # Compose this week's digest for every field
  scholarly digest run

  # Preview one field without writing anything
  scholarly digest run --field life-sciences --dry-run

  # Browse a stored digest in the terminal
  scholarly browse life-sciences-2026-w21`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .scholarly.yaml in . or $HOME)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: json, text, console (default from config)")

	rootCmd.AddCommand(NewDigestCmd())
	rootCmd.AddCommand(NewValidateCmd())
	rootCmd.AddCommand(NewIngestCmd())
	rootCmd.AddCommand(NewFieldsCmd())
	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewBrowseCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}
}

// loadApp loads configuration and builds the logger. Flags override the
// logging section of the file.
func loadApp() (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	log, err := logger.New(logger.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return nil, nil, err
	}
	if cfg.App.ConfigFile != "" {
		log.Debug("Using config file", "path", cfg.App.ConfigFile)
	}
	return cfg, log, nil
}

func openStore(cfg *config.Config) (*store.Store, error) {
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open digest store: %w", err)
	}
	return st, nil
}
