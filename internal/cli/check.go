package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"hlsllint/internal/config"
	"hlsllint/internal/linter"
	"hlsllint/internal/report"
	"hlsllint/internal/workspace"
	"hlsllint/pkg/types"
)

type checkOptions struct {
	jobs    int
	color   string
	summary bool
}

func newCheckCmd(o *globalOptions) *cobra.Command {
	co := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check [flags] <file|dir>...",
		Short: "Lint shader files once and print their diagnostics",
		Long: "Lint each file once with the configured compiler. Directories are searched for " +
			strings.Join(workspace.ShaderExts, ", ") + ". The exit status is 1 when an error was reported and 2 when linting could not run.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.check(cmd, co, args)
		},
	}
	cmd.Flags().IntVarP(&co.jobs, "jobs", "j", 0, "max parallel compiler runs (0=number of CPUs)")
	cmd.Flags().StringVar(&co.color, "color", "auto", "colorize output (auto|always|never)")
	cmd.Flags().BoolVar(&co.summary, "summary", false, "print totals to stderr")
	return cmd
}

func (o *globalOptions) check(cmd *cobra.Command, co *checkOptions, args []string) error {
	cfg, err := o.load(cmd, config.Config{})
	if err != nil {
		return err
	}
	useColor, err := colorEnabled(co.color)
	if err != nil {
		return &exitError{code: ExitFailure, err: err}
	}
	log := o.logger(cfg, cmd.ErrOrStderr())

	files, err := workspace.Discover(args)
	if err != nil {
		return &exitError{code: ExitFailure, err: err}
	}
	if len(files) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "no shader files found")
		return nil
	}

	settings := linter.SettingsFromConfig(cfg)
	settings.Trigger = linter.TriggerManual
	l := linter.New(cmd.Context(), settings, linter.Options{
		Runner: o.runner,
		Events: linter.LogPublisher{Log: log},
		Log:    log,
	})
	defer l.Shutdown()

	jobs := co.jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	results := make([][]types.Diagnostic, len(files))
	g, gctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(min(jobs, len(files)))
	for i, f := range files {
		g.Go(func() error {
			text, err := os.ReadFile(f.Path)
			if err != nil {
				return err
			}
			doc := types.Document{URI: f.URI, Path: f.Path, LanguageID: "hlsl", Text: string(text)}
			if err := l.Open(doc); err != nil {
				return err
			}
			defer func() { _ = l.Close(f.URI) }()
			diags, err := l.Lint(gctx, f.URI)
			if err != nil {
				if linter.IsToolUnavailable(err) {
					return err
				}
				return fmt.Errorf("%s: %w", displayPath(f.Path), err)
			}
			results[i] = diags
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return &exitError{code: ExitFailure, err: err}
	}

	p := report.New(cmd.OutOrStdout(), report.Options{Color: useColor})
	for i, f := range files {
		if err := p.File(displayPath(f.Path), results[i]); err != nil {
			return err
		}
	}
	if co.summary {
		if err := p.WriteSummary(cmd.ErrOrStderr()); err != nil {
			return err
		}
	}
	if p.Summary().Failed() {
		return &exitError{code: ExitIssues}
	}
	return nil
}

func colorEnabled(mode string) (bool, error) {
	switch strings.ToLower(mode) {
	case "", "auto":
		return !color.NoColor, nil
	case "always", "on":
		return true, nil
	case "never", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid --color %q (want auto|always|never)", mode)
}

// displayPath shortens path relative to the working directory when it lies below it.
func displayPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
