// Package cli implements the hlsllint command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"hlsllint/internal/config"
	"hlsllint/internal/logging"
	"hlsllint/internal/lsp"
	"hlsllint/internal/toolexec"
)

// Exit codes returned by Execute.
const (
	ExitOK      = 0
	ExitIssues  = 1
	ExitFailure = 2
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath  string
	logLevel    string
	logFormat   string
	executable  string
	includeDirs []string
	defaultArgs []string

	// runner replaces the compiler runner in tests.
	runner toolexec.Runner
}

// exitError carries a process exit code through cobra. A nil err means the
// command already reported what went wrong.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit status %d", e.code)
}

func (e *exitError) Unwrap() error { return e.err }

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	root := NewRootCmd()
	root.SetArgs(args)
	return exitCode(root.ExecuteContext(ctx), root.ErrOrStderr())
}

// NewRootCmd builds the hlsllint command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&globalOptions{})
}

func newRootCmd(o *globalOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "hlsllint",
		Short:         "Lint HLSL shaders with the DirectX shader compiler",
		Long:          "hlsllint runs dxc over shader sources and reports its diagnostics on the command line, over HTTP or to editors through LSP.",
		Version:       lsp.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "config file (.yaml, .yml, .json or .toml); defaults to $"+config.EnvConfigPath)
	pf.StringVar(&o.logLevel, "log-level", "", "log level (debug|info|warn|error|off)")
	pf.StringVar(&o.logFormat, "log-format", "", "log format (json|console)")
	pf.StringVarP(&o.executable, "executable", "e", "", "path of the dxc executable")
	pf.StringArrayVarP(&o.includeDirs, "include-dir", "I", nil, "additional include directory (repeatable)")
	pf.StringArrayVar(&o.defaultArgs, "arg", nil, "extra argument passed to the compiler first (repeatable)")

	root.AddCommand(newServeCmd(o))
	root.AddCommand(newLSPCmd(o))
	root.AddCommand(newCheckCmd(o))
	return root
}

// load resolves the configuration: file, then flags, then defaults.
func (o *globalOptions) load(cmd *cobra.Command, overrides config.Config) (config.Config, error) {
	cfg, err := config.LoadOptional(o.configPath)
	if err != nil {
		return config.Config{}, &exitError{code: ExitFailure, err: fmt.Errorf("load config: %w", err)}
	}
	flags := config.Config{
		LogLevel:       o.logLevel,
		LogFormat:      o.logFormat,
		ExecutablePath: o.executable,
	}
	if cmd.Flags().Changed("include-dir") {
		flags.IncludeDirs = o.includeDirs
	}
	if cmd.Flags().Changed("arg") {
		flags.DefaultArgs = o.defaultArgs
	}
	return cfg.Merge(flags).Merge(overrides).WithDefaults(), nil
}

func (o *globalOptions) logger(cfg config.Config, w io.Writer) zerolog.Logger {
	return logging.New(cfg.LogLevel, cfg.LogFormat, w)
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return ExitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintln(stderr, "hlsllint:", ee.err)
		}
		return ee.code
	}
	fmt.Fprintln(stderr, "hlsllint:", err)
	return ExitFailure
}
