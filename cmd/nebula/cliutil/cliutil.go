// Package cliutil holds helpers shared by the nebula subcommands.
package cliutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flarebyte/nebula/internal/app"
	"github.com/flarebyte/nebula/internal/metafile"
)

const (
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitError carries the process exit code for an error.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }
func (e *ExitError) ExitCode() int { return e.Code }

// Usagef builds an error that exits with ExitUsage.
func Usagef(format string, args ...any) error {
	return &ExitError{Code: ExitUsage, Err: fmt.Errorf(format, args...)}
}

// IsUsage reports whether err should exit with ExitUsage.
func IsUsage(err error) bool {
	var ee *ExitError
	return errors.As(err, &ee) && ee.Code == ExitUsage
}

// Persistent flag names defined on the root command.
const (
	FlagConfig   = "config"
	FlagEnvFile  = "env-file"
	FlagLogLevel = "log-level"
	FlagLogJSON  = "log-json"
)

// LoadApp builds the application from the root persistent flags.
func LoadApp(cmd *cobra.Command) (*app.App, error) {
	flags := cmd.Flags()
	cfgPath, _ := flags.GetString(FlagConfig)
	envFile, _ := flags.GetString(FlagEnvFile)
	level, _ := flags.GetString(FlagLogLevel)
	asJSON, _ := flags.GetBool(FlagLogJSON)
	if cfgPath != "" && !strings.HasSuffix(cfgPath, ".cue") {
		return nil, Usagef("config file must have a .cue extension: %s", cfgPath)
	}
	return app.Load(app.Options{
		ConfigPath: cfgPath,
		EnvFile:    envFile,
		LogLevel:   level,
		LogJSON:    asJSON,
		LogOutput:  cmd.ErrOrStderr(),
	})
}

// Output formats accepted by --output.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// CheckFormat validates an --output value.
func CheckFormat(format string) error {
	switch format {
	case FormatJSON, FormatYAML:
		return nil
	default:
		return Usagef("invalid --output: %q (expected json or yaml)", format)
	}
}

// Write renders v to w as indented JSON or canonical YAML.
func Write(w io.Writer, format string, v any) error {
	if format == FormatYAML {
		b, err := metafile.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	}
	return EncodeJSON(w, v)
}

// EncodeJSON writes v as two-space indented JSON followed by a newline.
func EncodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
