package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/factchecker/veracity/internal/config"
	"github.com/factchecker/veracity/internal/database"
	"github.com/factchecker/veracity/internal/knowledge"
	"github.com/factchecker/veracity/internal/models"
	"github.com/factchecker/veracity/internal/search"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newKBCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kb",
		Short: "Manage the knowledge base catalog",
	}
	cmd.AddCommand(
		newKBListCmd(opts),
		newKBImportCmd(opts),
		newKBExportCmd(opts),
		newKBHarvestCmd(opts),
		newKBDeleteCmd(opts),
	)
	return cmd
}

// requireStore opens the configured store and fails when the database is disabled.
func requireStore(cfg *config.Config) (database.Store, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New("this command requires database.driver sqlite")
	}
	return store, nil
}

func newKBListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List knowledge base topics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			var summaries []models.TopicSummary
			if cfg.KnowledgeBase.Source == "sqlite" {
				store, err := requireStore(cfg)
				if err != nil {
					return err
				}
				defer store.Close()
				if summaries, err = store.ListTopics(cmd.Context()); err != nil {
					return fmt.Errorf("failed to list topics: %w", err)
				}
			} else {
				kb, err := buildKnowledgeBase(cmd.Context(), cfg, nil)
				if err != nil {
					return err
				}
				summaries = kb.Summaries()
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TOPIC\tSOURCES\tAVG CREDIBILITY")
			for _, s := range summaries {
				fmt.Fprintf(tw, "%s\t%d\t%.2f\n", s.Topic, s.SourceCount, s.AverageCredibility)
			}
			return tw.Flush()
		},
	}
}

func newKBImportCmd(opts *rootOptions) *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "import [file.yaml]",
		Short: "Import topics from a YAML file into the database",
		Long: `Import validates a knowledge base YAML file and stores every topic in the
database catalog, replacing topics that already exist. Use --seed to import
the built-in topics instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if seed == (len(args) == 1) {
				return errors.New("pass either a file or --seed")
			}

			cfg, err := opts.loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			kb := knowledge.Seed()
			if !seed {
				if kb, err = knowledge.LoadFile(args[0]); err != nil {
					return err
				}
			}

			store, err := requireStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			for _, topic := range kb.All() {
				if err := store.SaveTopic(cmd.Context(), topic); err != nil {
					return err
				}
				log.Debug().Str("topic", topic.Name).Int("sources", len(topic.Sources)).Msg("Imported topic")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d topics\n", kb.Len())
			return nil
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "import the built-in topics")
	return cmd
}

func newKBExportCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the configured knowledge base as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			var store database.Store
			if cfg.KnowledgeBase.Source == "sqlite" {
				if store, err = requireStore(cfg); err != nil {
					return err
				}
				defer store.Close()
			}

			kb, err := buildKnowledgeBase(cmd.Context(), cfg, store)
			if err != nil {
				return err
			}
			data, err := knowledge.Marshal(kb.All())
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d topics to %s\n", kb.Len(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func newKBHarvestCmd(opts *rootOptions) *cobra.Command {
	var topic string

	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Fetch sources for a topic from Wikipedia and PubMed",
		Long: `Harvest queries the enabled external sources for a topic and stores the
merged results in the database catalog. Sources that fail are reported as
warnings; the topic is saved as long as one source returned results.`,
		Example: `  veracity kb harvest --topic "minimum wage"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			harvester := search.NewHarvesterFromConfig(cfg.Harvest)
			if !harvester.HasClients() {
				return errors.New("no harvest sources are enabled")
			}

			store, err := requireStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			harvested, warnings, err := harvester.HarvestInto(cmd.Context(), store, topic)
			for _, w := range warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %s\n", w.Source, w.Message)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Saved topic %q with %d sources\n", harvested.Name, len(harvested.Sources))
			for _, s := range harvested.Sources {
				fmt.Fprintf(out, "  - %s (%.2f)\n", s.Title, s.Credibility)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&topic, "topic", "t", "", "topic keyword to harvest")
	cmd.MarkFlagRequired("topic")
	return cmd
}

func newKBDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <topic>",
		Short: "Delete a topic from the database catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			store, err := requireStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.DeleteTopic(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted topic %q\n", args[0])
			return nil
		},
	}
}
