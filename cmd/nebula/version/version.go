package version

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/flarebyte/nebula/cmd/nebula/cliutil"
	"github.com/flarebyte/nebula/internal/buildinfo"
)

var (
	flagShort bool
	flagJSON  bool
)

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the CLI version",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if flagShort || !flagJSON {
			_, err := fmt.Fprintf(out, "nebula %s\n", buildinfo.Summary())
			return err
		}

		// JSON goes to stdout, a human line to stderr.
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "nebula version: %s\n", buildinfo.Summary())
		return cliutil.EncodeJSON(out, map[string]any{
			"version":   buildinfo.Version,
			"commit":    buildinfo.Revision(),
			"date":      buildinfo.Date,
			"built_by":  buildinfo.BuiltBy,
			"go":        runtime.Version(),
			"go_os":     runtime.GOOS,
			"go_arch":   runtime.GOARCH,
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	},
}

func init() {
	VersionCmd.Flags().BoolVar(&flagShort, "short", false, "Print only the version string")
	VersionCmd.Flags().BoolVar(&flagJSON, "json", false, "Print detailed JSON version info")
}
