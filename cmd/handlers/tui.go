package handlers

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/store"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/tui"
)

// NewBrowseCmd creates the browse command
func NewBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <digest-id>",
		Short: "Browse a stored digest in the terminal",
		Args:  cobra.ExactArgs(1),
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
			return tui.Run(rec.Digest, fieldName(rec.Digest.Field))
		},
	}
}
