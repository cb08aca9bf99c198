package cli

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"hlsllint/internal/config"
	"hlsllint/internal/linter"
	"hlsllint/internal/lsp"
)

func newLSPCmd(o *globalOptions) *cobra.Command {
	var trigger string
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Run the language server over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.load(cmd, config.Config{Trigger: trigger})
			if err != nil {
				return err
			}
			// stdout carries the protocol; logs go to stderr only.
			log := o.logger(cfg, cmd.ErrOrStderr())
			srv := lsp.NewServer(cmd.Context(), linter.SettingsFromConfig(cfg), lsp.Options{
				Runner: o.runner,
				Events: linter.LogPublisher{Log: log},
				Log:    log,
			})
			err = srv.Serve(cmd.Context(), stdio{r: cmd.InOrStdin(), w: cmd.OutOrStdout()})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&trigger, "trigger", "", "when to lint until the editor sends settings (onType|onSave|manual|never)")
	return cmd
}

// stdio joins the process streams into the connection of an LSP session.
type stdio struct {
	r io.Reader
	w io.Writer
}

func (s stdio) Read(p []byte) (int, error)  { return s.r.Read(p) }
func (s stdio) Write(p []byte) (int, error) { return s.w.Write(p) }

func (s stdio) Close() error {
	if c, ok := s.r.(io.Closer); ok {
		_ = c.Close()
	}
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
