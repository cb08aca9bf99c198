package scheduler

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrCanceled settles futures whose countdown or queued rerun was withdrawn.
	ErrCanceled = errors.New("scheduler: run canceled")
	// ErrClosed is returned for requests made after the registry shut down.
	ErrClosed = errors.New("scheduler: registry closed")
)

// Future resolves once the run it is attached to has completed. Several
// Trigger or Queue calls may share one Future when they coalesce into a single
// run.
type Future struct {
	done chan struct{}
	once sync.Once
	err  error
}

func newFuture() *Future { return &Future{done: make(chan struct{})} }

func settledFuture(err error) *Future {
	f := newFuture()
	f.settle(err)
	return f
}

func (f *Future) settle(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Done is closed when the future settles.
func (f *Future) Done() <-chan struct{} { return f.done }

// Err returns the run's error once Done is closed, and nil before that.
func (f *Future) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

// Wait blocks until the future settles or ctx is done.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
