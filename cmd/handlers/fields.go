package handlers

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/fields"
)

// NewFieldsCmd creates the fields command
func NewFieldsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "fields",
		Short: "List the academic fields and their profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all := fields.Default().All()
			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, all)
			}

			printHeader(out, "Academic fields")
			for _, f := range all {
				fmt.Fprintf(out, "%s  %s\n", headerStyle.Render(string(f.ID)), f.Name)
				fmt.Fprintf(out, "  subfields: %s\n", strings.Join(f.Subfields, ", "))
				fmt.Fprintf(out, "  keywords:  %s\n", strings.Join(f.Keywords, ", "))
				fmt.Fprintf(out, "  %s\n", dimStyle.Render(fmt.Sprintf("%d known venues, voice %s", len(f.Venues), f.Voice)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the registry as JSON")
	return cmd
}
