package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Work is one deferred lint run. The returned error only reports how the run
// ended; the throttler treats success and failure alike.
type Work func(ctx context.Context) error

// Throttler runs at most one Work at a time. Work queued while a run is active
// replaces any previously queued work, so a burst of requests collapses into a
// single rerun of the most recent one.
type Throttler struct {
	ctx    context.Context
	onIdle func()
	runs   atomic.Uint64

	mu      sync.Mutex
	running bool
	queued  Work
	waiters []*Future
}

// NewThrottler returns a Throttler whose runs receive ctx.
func NewThrottler(ctx context.Context) *Throttler {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Throttler{ctx: ctx}
}

// Queue starts work now if nothing is running, otherwise makes it the rerun.
func (t *Throttler) Queue(work Work) *Future {
	f := newFuture()
	t.enqueue(work, f)
	return f
}

func (t *Throttler) enqueue(work Work, f *Future) {
	t.mu.Lock()
	if t.running {
		t.queued = work
		t.waiters = append(t.waiters, f)
		t.mu.Unlock()
		return
	}
	t.running = true
	t.mu.Unlock()
	go t.loop(work, []*Future{f})
}

// loop owns the active run for this key until nothing is queued.
func (t *Throttler) loop(work Work, waiters []*Future) {
	for {
		err := t.run(work)
		for _, f := range waiters {
			f.settle(err)
		}
		t.mu.Lock()
		if t.queued == nil {
			t.running = false
			onIdle := t.onIdle
			t.mu.Unlock()
			if onIdle != nil {
				onIdle()
			}
			return
		}
		work, waiters = t.queued, t.waiters
		t.queued, t.waiters = nil, nil
		t.mu.Unlock()
	}
}

func (t *Throttler) run(work Work) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scheduler: run panicked: %v", r)
		}
	}()
	t.runs.Add(1)
	return work(t.ctx)
}

// DropQueued withdraws the queued rerun, if any, settling its futures with
// ErrCanceled. The active run is not affected.
func (t *Throttler) DropQueued() bool {
	t.mu.Lock()
	waiters := t.waiters
	had := t.queued != nil
	t.queued, t.waiters = nil, nil
	t.mu.Unlock()
	for _, f := range waiters {
		f.settle(ErrCanceled)
	}
	return had
}

// Running reports whether a run is active.
func (t *Throttler) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Queued reports whether a rerun is waiting for the active run.
func (t *Throttler) Queued() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.queued != nil
}

// Runs is the number of runs started so far.
func (t *Throttler) Runs() uint64 { return t.runs.Load() }
