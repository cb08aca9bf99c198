package linter

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"hlsllint/internal/toolexec"
	"hlsllint/pkg/types"
)

const (
	testDebounce = 30 * time.Millisecond
	waitFor      = 2 * time.Second
	tick         = 5 * time.Millisecond
)

type call struct {
	inv  toolexec.Invocation
	text string
}

// fakeRunner records invocations and lets a test script the compiler output.
type fakeRunner struct {
	mu     sync.Mutex
	calls  []call
	output func(input, text string) string
	err    error
	gate   chan struct{}
}

func (f *fakeRunner) Run(ctx context.Context, inv toolexec.Invocation, stderr io.Writer) error {
	input := inv.Args[len(inv.Args)-1]
	b, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.calls = append(f.calls, call{inv: inv, text: string(b)})
	output, ferr, gate := f.output, f.err, f.gate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if ferr != nil {
		return ferr
	}
	if output != nil {
		_, _ = io.WriteString(stderr, output(input, string(b)))
	}
	return nil
}

func (f *fakeRunner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeRunner) last() call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func (f *fakeRunner) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

// errorAt reports one error per listed 1-based line of the analyzed text.
func errorAt(lines ...int) func(string, string) string {
	return func(input, _ string) string {
		var out string
		for _, n := range lines {
			out += fmt.Sprintf("%s:%d:1: error: problem on %d\n", input, n, n)
		}
		return out
	}
}

func testSettings(tr Trigger) Settings {
	return Settings{
		Executable: "dxc",
		Trigger:    tr,
		Debounce:   testDebounce,
		Languages:  []string{"hlsl"},
		Timeout:    time.Second,
	}
}

func newTestLinter(t *testing.T, tr Trigger, r *fakeRunner) (*Linter, *MemoryPublisher, *MemorySink) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	pub := NewMemoryPublisher()
	sink := NewMemorySink()
	l := New(ctx, testSettings(tr), Options{Runner: r, Sink: sink, Events: pub, Log: zerolog.Nop()})
	t.Cleanup(func() {
		l.Shutdown()
		cancel()
	})
	return l, pub, sink
}

func openDoc(uri, text string) types.Document {
	return types.Document{URI: uri, LanguageID: "hlsl", Version: 1, Text: text}
}

func (f *fakeRunner) setOutput(fn func(input, text string) string) {
	f.mu.Lock()
	f.output = fn
	f.mu.Unlock()
}
