package handlers

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/fields"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/pipeline"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/render"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/store"
)

// NewDigestCmd creates the digest command group
func NewDigestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Compose, list, show and delete weekly digests",
	}
	cmd.AddCommand(newDigestRunCmd())
	cmd.AddCommand(newDigestShowCmd())
	cmd.AddCommand(newDigestListCmd())
	cmd.AddCommand(newDigestDeleteCmd())
	return cmd
}

func newDigestRunCmd() *cobra.Command {
	var (
		field   string
		force   bool
		dryRun  bool
		asJSON  bool
		noStore bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the weekly digest job",
		Long: `Run the weekly digest job for one field or all of them.

Each field is ingested, scored, ranked, composed and validated. Unless
--dry-run is given, the digest is rendered to markdown in the output
directory and saved to the digest store. A field that already has a digest
for the current ISO week is skipped unless --force is given.

Examples:
  # Every field
  scholarly digest run

  # One field, replacing this week's digest
  scholarly digest run --field ai-computing --force

  # Preview without side effects
  scholarly digest run --field social-sciences --dry-run --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadApp()
			if err != nil {
				return err
			}

			opts := pipeline.JobOptions{Force: force, DryRun: dryRun}
			if field != "" {
				f, err := core.ParseField(field)
				if err != nil {
					return err
				}
				opts.Field = f
			}

			b := pipeline.NewBuilder(cfg).WithLogger(log)
			if !noStore {
				st, err := openStore(cfg)
				if err != nil {
					return err
				}
				defer func() { _ = st.Close() }()
				b = b.WithStore(st)
			}

			runner, err := b.Build(cmd.Context())
			if err != nil {
				return err
			}

			report, err := runner.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if err := printJSON(out, report); err != nil {
					return err
				}
			} else {
				printJobReport(out, report)
			}
			if !report.Success {
				return errors.New("digest job finished with failed fields")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&field, "field", "f", "", "Only run this field (default: all fields)")
	cmd.Flags().BoolVar(&force, "force", false, "Regenerate even if this week's digest exists")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compose and validate without rendering or saving")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the job report as JSON")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "Do not open the digest store (no idempotency check, nothing saved)")

	return cmd
}

func printJobReport(w io.Writer, report *pipeline.JobReport) {
	title := "Digest job " + report.RunID
	if report.DryRun {
		title += " (dry run)"
	}
	printHeader(w, title)
	fmt.Fprintf(w, "%-20s  %-9s  %8s  %7s  %5s  %s\n", "Field", "Status", "Articles", "Minutes", "Score", "Digest")
	fmt.Fprintln(w, lightRule)

	for _, fr := range report.Fields {
		status := string(fr.Status)
		switch fr.Status {
		case pipeline.StatusComposed:
			status = okStyle.Render(fmt.Sprintf("%-9s", status))
		case pipeline.StatusSkipped:
			status = dimStyle.Render(fmt.Sprintf("%-9s", status))
		case pipeline.StatusFailed:
			status = errorStyle.Render(fmt.Sprintf("%-9s", status))
		}
		score := "-"
		if fr.Validation != nil {
			score = fmt.Sprintf("%.0f", fr.Validation.Score)
		}
		fmt.Fprintf(w, "%-20s  %s  %8d  %7d  %5s  %s\n", fr.Field, status, fr.Articles, fr.ReadingTime, score, fr.DigestID)
		if fr.Error != "" {
			fmt.Fprintf(w, "  %s %s\n", errorStyle.Render("✗"), fr.Error)
		}
		if fr.MarkdownPath != "" {
			fmt.Fprintf(w, "  %s\n", dimStyle.Render(fr.MarkdownPath))
		}
	}
	fmt.Fprintln(w, heavyRule)

	if len(report.Warnings) > 0 {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("%d warnings", len(report.Warnings))))
		for _, warning := range report.Warnings {
			fmt.Fprintf(w, "  • %s\n", warning)
		}
	}
}

func newDigestShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <digest-id>",
		Short: "Display a stored digest",
		Long: `Show a digest from the digest store.

Examples:
  # Show as markdown
  scholarly digest show life-sciences-2026-w21

  # Show the full stored record as JSON
  scholarly digest show life-sciences-2026-w21 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadApp()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			rec, err := st.GetDigest(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("digest %q not found; use 'scholarly digest list' to see stored digests", args[0])
				}
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				return printJSON(out, rec)
			case "markdown", "md":
				_, err := fmt.Fprint(out, render.Markdown(rec.Digest, fieldName(rec.Digest.Field)))
				return err
			default:
				return fmt.Errorf("unknown format %q (use markdown or json)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "markdown", "Output format (markdown, json)")
	return cmd
}

func newDigestListCmd() *cobra.Command {
	var (
		field string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored digests, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadApp()
			if err != nil {
				return err
			}

			var f core.FieldID
			if field != "" {
				if f, err = core.ParseField(field); err != nil {
					return err
				}
			}

			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			digests, err := st.ListDigests(cmd.Context(), f, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(digests) == 0 {
				fmt.Fprintln(out, "No digests found. Run 'scholarly digest run' to compose one.")
				return nil
			}

			printHeader(out, "Stored digests")
			fmt.Fprintf(out, "%-32s  %-20s  %8s  %7s  %s\n", "ID", "Field", "Articles", "Minutes", "Composed")
			fmt.Fprintln(out, lightRule)
			for _, d := range digests {
				fmt.Fprintf(out, "%-32s  %-20s  %8d  %7d  %s\n",
					d.ID, d.Field, d.Articles, d.ReadingTime, d.ComposedAt.Local().Format("Jan 02, 2006 15:04"))
			}
			fmt.Fprintln(out, heavyRule)
			fmt.Fprintln(out, dimStyle.Render("Use 'scholarly digest show <id>' to view a digest"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&field, "field", "f", "", "Only list digests for this field")
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of digests to list")
	return cmd
}

func newDigestDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <digest-id>",
		Short: "Remove a stored digest so its week can be composed again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadApp()
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			exists, err := st.DigestExists(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("digest %q not found; use 'scholarly digest list' to see stored digests", args[0])
			}
			if err := st.DeleteDigest(cmd.Context(), args[0]); err != nil {
				return err
			}
			log.Info("Deleted digest", "digest_id", args[0], "driver", st.Driver())
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", okStyle.Render("Deleted"), args[0])
			return nil
		},
	}
}

func fieldName(id core.FieldID) string {
	if f, err := fields.Default().Get(id); err == nil {
		return f.Name
	}
	return string(id)
}
