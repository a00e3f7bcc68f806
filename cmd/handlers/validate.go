package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/validation"
)

var errValidationFailed = errors.New("validation failed")

// NewValidateCmd creates the validate command group
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate articles or subscriber profiles from JSON files",
	}
	cmd.AddCommand(newValidateArticlesCmd())
	cmd.AddCommand(newValidateUserCmd())
	return cmd
}

func newValidateArticlesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "articles <file.json>",
		Short: "Validate one article object or an array of articles",
		Long: `Validate articles against the configured content thresholds.

The file holds either a single article object or an array of them. The
command exits non-zero when any article is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadApp()
			if err != nil {
				return err
			}
			articles, err := readArticles(args[0])
			if err != nil {
				return err
			}

			engine := validation.NewEngine(validation.RulesFromConfig(cfg.Content))
			batch := engine.BatchValidateArticles(articles)

			out := cmd.OutOrStdout()
			if asJSON {
				if err := printJSON(out, batch); err != nil {
					return err
				}
			} else {
				printHeader(out, fmt.Sprintf("Validated %d articles", batch.Summary.Total))
				for i, a := range articles {
					key := a.ID
					if key == "" {
						key = fmt.Sprintf("#%d", i)
					}
					printValidation(out, fmt.Sprintf("%s %s", key, truncate(a.Title, 50)), batch.Results[key])
				}
				fmt.Fprintln(out, heavyRule)
				fmt.Fprintf(out, "%d valid, %d invalid, average score %.1f\n",
					batch.Summary.Valid, batch.Summary.Invalid, batch.Summary.AvgScore)
			}

			if batch.Summary.Invalid > 0 {
				return errValidationFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	return cmd
}

func newValidateUserCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "user <file.json>",
		Short: "Validate a subscriber profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadApp()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			var user core.User
			if err := json.Unmarshal(data, &user); err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}

			r := validation.NewEngine(validation.RulesFromConfig(cfg.Content)).ValidateUser(user)

			out := cmd.OutOrStdout()
			if asJSON {
				if err := printJSON(out, r); err != nil {
					return err
				}
			} else {
				name := user.Email
				if name == "" {
					name = "user"
				}
				printValidation(out, name, r)
			}

			if !r.Valid {
				return errValidationFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func readArticles(path string) ([]core.Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}

	if data[0] == '[' {
		var articles []core.Article
		if err := json.Unmarshal(data, &articles); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return articles, nil
	}

	var a core.Article
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return []core.Article{a}, nil
}
