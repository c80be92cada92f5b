// Package insights implements `nebula insights`, maintenance for the
// persistent insight store.
package insights

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/flarebyte/nebula/cmd/nebula/cliutil"
	"github.com/flarebyte/nebula/internal/insightstore"
)

// NewCmd builds the insights command group.
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "insights",
		Short:         "Maintain the persistent insight store",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newPruneCmd())
	return cmd
}

func newPruneCmd() *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:           "prune",
		Short:         "Delete stored insights not refreshed within --older-than",
		Args:          cliutil.ExactArgs(0),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return cliutil.Usagef("invalid --older-than: %s (must be > 0)", olderThan)
			}
			a, err := cliutil.LoadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			path := a.Config.Enrichment.Store
			if path == "" {
				return cliutil.Usagef("enrichment.store is not configured")
			}
			store, err := insightstore.Open(path)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			a.Logger.WithField("store", path).Infof("pruned %d insights", n)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d\n", n)
			return err
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Age threshold")
	return cmd
}
