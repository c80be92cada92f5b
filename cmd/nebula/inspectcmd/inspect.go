// Package inspectcmd implements `nebula inspect`.
package inspectcmd

import (
	"github.com/spf13/cobra"

	"github.com/flarebyte/nebula/cmd/nebula/cliutil"
	"github.com/flarebyte/nebula/internal/inspect"
)

type report struct {
	*inspect.Listing
	Storage *inspect.Usage `json:"storage,omitempty"`
}

// NewCmd builds the inspect command.
func NewCmd() *cobra.Command {
	var (
		storage  bool
		keywords bool
		output   string
	)
	cmd := &cobra.Command{
		Use:           "inspect <path>",
		Short:         "List the immediate children of a directory",
		Args:          cliutil.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cliutil.CheckFormat(output); err != nil {
				return err
			}
			a, err := cliutil.LoadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			in, err := a.Inspector(keywords)
			if err != nil {
				return err
			}
			listing, err := in.Directory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rep := report{Listing: listing}
			if storage {
				if rep.Storage, err = inspect.Storage(listing.Directory); err != nil {
					return err
				}
			}
			return cliutil.Write(cmd.OutOrStdout(), output, rep)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&storage, "storage", false, "Include usage of the volume holding the directory")
	f.BoolVar(&keywords, "keywords", false, "Extract keywords for files")
	f.StringVarP(&output, "output", "o", cliutil.FormatJSON, "Output format: json|yaml")
	return cmd
}
