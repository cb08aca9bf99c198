package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"hlsllint/internal/config"
	"hlsllint/internal/httpapi"
	"hlsllint/internal/linter"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(o *globalOptions) *cobra.Command {
	var addr, trigger string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the linter over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.load(cmd, config.Config{Addr: addr, Trigger: trigger})
			if err != nil {
				return err
			}
			return o.serve(cmd.Context(), cfg, nil)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (default "+config.DefaultAddr+")")
	cmd.Flags().StringVar(&trigger, "trigger", "", "when to lint (onType|onSave|manual|never)")
	return cmd
}

// serve runs the HTTP API until ctx is canceled or a termination signal
// arrives. When ready is non-nil it receives the bound address.
func (o *globalOptions) serve(ctx context.Context, cfg config.Config, ready chan<- string) error {
	log := o.logger(cfg, os.Stderr)
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings := linter.SettingsFromConfig(cfg)
	l := linter.New(ctx, settings, linter.Options{
		Runner: o.runner,
		Events: linter.LogPublisher{Log: log},
		Log:    log,
	})
	defer l.Shutdown()

	httpapi.SetLogger(log)
	httpapi.SetBaseContext(ctx)
	// A lint request may wait for the run in progress before its own.
	httpapi.SetLintTimeout(2 * settings.Timeout)
	httpapi.SetCORSOptions(cfg.CORS.Enabled, cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders)

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return &exitError{code: ExitFailure, err: err}
	}
	srv := &http.Server{
		Handler:           httpapi.NewMux(l),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Str("exe", settings.Executable).Str("trigger", settings.Trigger.String()).Msg("hlsllint listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	if ready != nil {
		ready <- ln.Addr().String()
	}

	select {
	case err := <-errCh:
		if err != nil {
			return &exitError{code: ExitFailure, err: err}
		}
		return nil
	case <-ctx.Done():
	}
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
	log.Info().Msg("hlsllint stopped")
	return nil
}
