package root

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/flarebyte/nebula/cmd/nebula/cliutil"
	"github.com/flarebyte/nebula/cmd/nebula/insights"
	"github.com/flarebyte/nebula/cmd/nebula/inspectcmd"
	"github.com/flarebyte/nebula/cmd/nebula/snap"
	"github.com/flarebyte/nebula/cmd/nebula/version"
)

// NewRootCmd creates the root command for nebula.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nebula",
		Short: "Snapshot directory trees into paged JSON and forward them to a catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return cliutil.Usagef("%v", err)
	})

	pf := cmd.PersistentFlags()
	pf.StringP(cliutil.FlagConfig, "c", "", "Path to config file (.cue)")
	pf.String(cliutil.FlagEnvFile, "", "Path to a .env file (default ./.env)")
	pf.String(cliutil.FlagLogLevel, "", "Log level: debug|info|warn|error")
	pf.Bool(cliutil.FlagLogJSON, false, "Log as JSON")

	cmd.AddCommand(version.VersionCmd)
	cmd.AddCommand(snap.NewCmd())
	cmd.AddCommand(inspectcmd.NewCmd())
	cmd.AddCommand(insights.NewCmd())

	return cmd
}

// Execute runs the root command with provided args.
func Execute(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}
