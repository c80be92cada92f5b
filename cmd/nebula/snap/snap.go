// Package snap implements `nebula snapshot`.
package snap

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/flarebyte/nebula/cmd/nebula/cliutil"
	"github.com/flarebyte/nebula/internal/metafile"
	"github.com/flarebyte/nebula/internal/snapshot"
)

type options struct {
	pageSize int
	output   string
	dryRun   bool
	manifest string
}

// NewCmd builds the snapshot command.
func NewCmd() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:           "snapshot <path>",
		Short:         "Walk a directory and write paged snapshot files",
		Args:          cliutil.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], o)
		},
	}
	f := cmd.Flags()
	f.IntVar(&o.pageSize, "page-size", 0, "Entries per page (0 = automatic)")
	f.StringVarP(&o.output, "output", "o", cliutil.FormatJSON, "Result format: json|yaml")
	f.BoolVar(&o.dryRun, "dry-run", false, "Keep pages in memory and print them instead of the result")
	f.StringVar(&o.manifest, "manifest", "", "Also write the result as YAML to this file")
	return cmd
}

func run(cmd *cobra.Command, path string, o options) error {
	if o.pageSize < 0 {
		return cliutil.Usagef("invalid --page-size: %d (must be >= 0)", o.pageSize)
	}
	if err := cliutil.CheckFormat(o.output); err != nil {
		return err
	}
	a, err := cliutil.LoadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	eng, mem, err := a.Engine(o.dryRun)
	if err != nil {
		return err
	}
	res, err := eng.Snapshot(cmd.Context(), snapshot.Request{Path: path, PageSize: o.pageSize})
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		a.Logger.Warn(w)
	}
	if o.manifest != "" {
		if err := metafile.Write(o.manifest, res); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
	}
	if mem != nil {
		a.Logger.WithFields(logrus.Fields{"pages": res.PageCount(), "entries": res.TotalEntries}).Info("dry run, pages not persisted")
		_, err := mem.WriteTo(cmd.OutOrStdout())
		return err
	}
	return cliutil.Write(cmd.OutOrStdout(), o.output, res)
}
