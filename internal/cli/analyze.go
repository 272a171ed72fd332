package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/factchecker/veracity/internal/config"
	"github.com/factchecker/veracity/internal/database"
	"github.com/factchecker/veracity/internal/models"
	"github.com/factchecker/veracity/internal/verify"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var (
		format string
		quiet  bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [text]",
		Short: "Analyze text and print the veracity report",
		Long: `Analyze runs the full pipeline on the given text. With no arguments the
text is read from standard input. Stage progress is written to stderr.`,
		Example: `  veracity analyze "Global temperatures have risen 1.1 degrees since 1900."
  cat article.txt | veracity analyze --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("invalid format %q: must be json or text", format)
			}

			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read input: %w", err)
				}
				text = string(data)
			}

			cfg, err := opts.loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			engine, closeStore, err := newEngine(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			var progress verify.ProgressFunc
			if !quiet {
				stderr := cmd.ErrOrStderr()
				progress = func(stage verify.Stage, percent int) {
					fmt.Fprintf(stderr, "[%3d%%] %s\n", percent, stage)
				}
			}

			report, err := engine.Analyze(cmd.Context(), text, progress)
			if err != nil {
				return err
			}

			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format (json, text)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress stage progress")
	return cmd
}

// newEngine builds an engine over the configured knowledge base. The store is
// only opened when the knowledge base lives in it.
func newEngine(ctx context.Context, cfg *config.Config) (*verify.Engine, func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var store database.Store
	closeStore := func() {}
	if cfg.KnowledgeBase.Source == "sqlite" {
		s, err := openStore(cfg)
		if err != nil {
			return nil, nil, err
		}
		if s != nil {
			store = s
			closeStore = func() { s.Close() }
		}
	}

	kb, err := buildKnowledgeBase(ctx, cfg, store)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return verify.NewEngine(cfg, kb, verify.NewSampler(cfg.Pipeline)), closeStore, nil
}

// classificationLabel turns likely_true into "Likely True".
func classificationLabel(c models.Classification) string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(c), "_", " "))
}

func printReport(w io.Writer, report *models.AnalysisReport) {
	v := report.Verdict

	fmt.Fprintf(w, "Verdict: %s\n", classificationLabel(v.Classification))
	fmt.Fprintf(w, "Score: %.3f (interval %.3f - %.3f)\n", v.Score, v.ConfidenceInterval.Low, v.ConfidenceInterval.High)
	fmt.Fprintf(w, "Uncertainty: %.3f\n", v.UncertaintyScore)
	fmt.Fprintf(w, "Evidence: %d sources\n", v.EvidenceCount)
	if v.ConflictingEvidence {
		fmt.Fprintln(w, "Conflicting evidence detected")
	}
	if v.RequiresHumanReview {
		fmt.Fprintln(w, "Human review recommended")
	}

	fmt.Fprintf(w, "\n%s\n", report.Explanation.Summary)

	if len(report.Claims) > 0 {
		fmt.Fprintln(w, "\nClaims:")
		for _, c := range report.Claims {
			fmt.Fprintf(w, "  - [%s, %.2f] %s\n", c.Category, c.Confidence, c.Text)
		}
	}

	printList(w, "Reasoning", report.Explanation.ReasoningSteps)
	printList(w, "Limitations", report.Explanation.Limitations)
	printList(w, "Next steps", report.Explanation.NextSteps)
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}
