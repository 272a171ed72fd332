// Package cli implements the veracity command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/factchecker/veracity/internal/config"
	"github.com/factchecker/veracity/internal/database"
	"github.com/factchecker/veracity/internal/knowledge"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags.
var Version = "dev"

const defaultConfigFile = "veracity.yaml"

type rootOptions struct {
	configFile string
	logLevel   string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "veracity",
		Short: "Veracity - claim veracity assessment",
		Long: `Veracity detects checkworthy claims in text, gathers evidence from a
curated knowledge base, and fuses semantic and credibility signals into a
verdict with an uncertainty band and a plain-language explanation.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default: ./veracity.yaml if present)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	cmd.AddCommand(
		newServeCmd(opts),
		newAnalyzeCmd(opts),
		newKBCmd(opts),
		newConfigCmd(),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "veracity %s\n", Version)
		},
	}
}

// loadConfig reads the configured file, or ./veracity.yaml when present, or
// falls back to defaults. Logging is configured as a side effect.
func (o *rootOptions) loadConfig(stderr io.Writer) (*config.Config, error) {
	path := o.configFile
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}

	cfg := config.DefaultConfig()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if err := setupLogging(cfg.Logging, stderr); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging configures the global zerolog logger.
func setupLogging(cfg config.LoggingConfig, out io.Writer) error {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	}
	return nil
}

// openStore opens the configured store, or returns nil when the database is disabled.
func openStore(cfg *config.Config) (database.Store, error) {
	if cfg.Database.Driver == "none" {
		return nil, nil
	}
	store, err := database.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// buildKnowledgeBase loads the knowledge base named by knowledge_base.source.
func buildKnowledgeBase(ctx context.Context, cfg *config.Config, store database.Store) (*knowledge.Base, error) {
	switch cfg.KnowledgeBase.Source {
	case "file":
		return knowledge.LoadFile(cfg.KnowledgeBase.Path)
	case "sqlite":
		if store == nil {
			return nil, errors.New("knowledge_base.source sqlite requires a database")
		}
		kb, err := store.LoadKnowledgeBase(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load knowledge base: %w", err)
		}
		if kb.Len() == 0 {
			log.Warn().Msg("Knowledge base catalog is empty; run 'veracity kb import' or 'veracity kb harvest'")
		}
		return kb, nil
	default:
		return knowledge.Seed(), nil
	}
}
