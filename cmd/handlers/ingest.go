package handlers

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/fields"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/pipeline"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/relevance"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/sources"
)

type ingestSummary struct {
	Field        core.FieldID   `json:"field"`
	Sources      []string       `json:"sources"`
	Raw          int            `json:"raw"`
	Duplicates   int            `json:"duplicates"`
	SourceErrors []string       `json:"source_errors"`
	Articles     []core.Article `json:"articles"`
}

// NewIngestCmd creates the ingest command
func NewIngestCmd() *cobra.Command {
	var (
		field  string
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Fetch and score candidates for a field without composing",
		Long: `Fetch candidates from every configured catalog and feed, merge duplicates
and score relevance against the field profile. Nothing is stored.

Examples:
  scholarly ingest --field climate-environment
  scholarly ingest --field ai-computing --limit 40 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadApp()
			if err != nil {
				return err
			}
			f, err := core.ParseField(field)
			if err != nil {
				return err
			}

			registry := fields.Default()
			adapters, err := pipeline.Adapters(cfg.Sources, registry, time.Now)
			if err != nil {
				return err
			}
			ingestor := sources.NewIngestor(adapters, sources.OptionsFromConfig(cfg.Sources), log.With("component", "sources"))

			result, err := ingestor.Ingest(cmd.Context(), f)
			if err != nil {
				return err
			}
			scored, err := relevance.NewKeywordScorer(registry, log).ScoreArticles(f, result.Articles)
			if err != nil {
				return err
			}
			sort.SliceStable(scored, func(i, j int) bool { return scored[i].RelevanceScore > scored[j].RelevanceScore })

			summary := ingestSummary{
				Field:        f,
				Sources:      ingestor.Sources(),
				Raw:          result.Raw,
				Duplicates:   result.Duplicates,
				SourceErrors: []string{},
				Articles:     scored[:max(0, min(limit, len(scored)))],
			}
			for _, e := range result.SourceErrors {
				summary.SourceErrors = append(summary.SourceErrors, e.Error())
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, summary)
			}

			printHeader(out, fmt.Sprintf("Candidates for %s", fieldName(f)))
			fmt.Fprintf(out, "%d records from %d sources, %d duplicates merged, %d unique\n",
				result.Raw, len(summary.Sources), result.Duplicates, len(result.Articles))
			for _, e := range summary.SourceErrors {
				fmt.Fprintf(out, "  %s %s\n", warnStyle.Render("!"), e)
			}
			fmt.Fprintln(out, lightRule)
			fmt.Fprintf(out, "%5s  %-10s  %-28s  %s\n", "Score", "Source", "Venue", "Title")
			for _, a := range summary.Articles {
				fmt.Fprintf(out, "%5.1f  %-10s  %-28s  %s\n", a.RelevanceScore, a.Source, truncate(a.Venue, 28), truncate(a.Title, 60))
			}
			fmt.Fprintln(out, heavyRule)
			return nil
		},
	}

	cmd.Flags().StringVarP(&field, "field", "f", "", "Academic field to ingest (required)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Number of top-scored candidates to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print candidates as JSON")
	_ = cmd.MarkFlagRequired("field")

	return cmd
}
