// Package toolexec runs the external shader compiler and streams its
// diagnostics output.
package toolexec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// waitDelay bounds how long Wait keeps copying output after the process is
// killed, in case a grandchild still holds the pipe.
const waitDelay = 2 * time.Second

// Invocation describes one compiler run.
type Invocation struct {
	Executable string
	Args       []string
	// Dir is the working directory; empty inherits the current one.
	Dir string
}

func (inv Invocation) String() string {
	return strings.TrimSpace(inv.Executable + " " + strings.Join(inv.Args, " "))
}

// Runner executes an invocation and copies the tool's diagnostic stream to
// stderr as it arrives. A nil error means the tool ran to completion, whatever
// its exit status.
type Runner interface {
	Run(ctx context.Context, inv Invocation, stderr io.Writer) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, inv Invocation, stderr io.Writer) error

func (f RunnerFunc) Run(ctx context.Context, inv Invocation, stderr io.Writer) error {
	return f(ctx, inv, stderr)
}

// ExecRunner runs invocations as local processes.
type ExecRunner struct {
	Log zerolog.Logger
}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner(log zerolog.Logger) *ExecRunner {
	return &ExecRunner{Log: log.With().Str("component", "toolexec").Logger()}
}

func (r *ExecRunner) Run(ctx context.Context, inv Invocation, stderr io.Writer) error {
	if strings.TrimSpace(inv.Executable) == "" {
		return ErrToolNotFound("", exec.ErrNotFound)
	}
	cmd := exec.CommandContext(ctx, inv.Executable, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay
	// stdout carries nothing the linter reads; leaving it nil discards it.

	start := time.Now()
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return ErrToolNotFound(inv.Executable, err)
		}
		return ErrSpawn(inv.Executable, err)
	}
	r.Log.Debug().Str("cmd", inv.String()).Int("pid", cmd.Process.Pid).Msg("compiler started")

	err := cmd.Wait()
	ev := r.Log.Debug().Str("exe", inv.Executable).Dur("elapsed", time.Since(start))
	if ctx.Err() != nil {
		ev.Msg("compiler interrupted")
		return fmt.Errorf("run %s: %w", inv.Executable, ctx.Err())
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		ev.Err(err).Msg("compiler wait failed")
		return ErrSpawn(inv.Executable, err)
	}
	ev.Int("exit_code", cmd.ProcessState.ExitCode()).Msg("compiler finished")
	return nil
}

// WriteTemp writes text to a new temporary file whose name ends in ext. The
// returned cleanup removes the file and is safe to call more than once.
func WriteTemp(text, ext string) (string, func(), error) {
	f, err := os.CreateTemp("", "hlsllint-*"+ext)
	if err != nil {
		return "", func() {}, fmt.Errorf("create temp input: %w", err)
	}
	path := f.Name()
	cleanup := func() { _ = os.Remove(path) }
	if _, err := io.WriteString(f, text); err != nil {
		_ = f.Close()
		cleanup()
		return "", func() {}, fmt.Errorf("write temp input: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("close temp input: %w", err)
	}
	return path, cleanup, nil
}
