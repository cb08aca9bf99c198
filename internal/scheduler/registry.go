package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"
)

type entry struct {
	s       *Scheduler
	evicted bool
}

// Registry owns one Scheduler per document key. Schedulers are created on
// first use and removed by Evict, which callers invoke when the document
// closes. An evicted key whose run is still in flight keeps its scheduler
// until the run finishes, so a reopened document never runs concurrently with
// its previous run.
type Registry struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	entries map[string]*entry
	closed  bool
}

// NewRegistry returns a Registry whose runs receive a context derived from
// parent. The context is canceled by Close.
func NewRegistry(parent context.Context) *Registry {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Registry{ctx: ctx, cancel: cancel, entries: make(map[string]*entry)}
}

// Get returns the Scheduler for key, creating it if needed.
func (r *Registry) Get(key string) *Scheduler {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getLocked(key)
}

func (r *Registry) getLocked(key string) *Scheduler {
	if e, ok := r.entries[key]; ok {
		e.evicted = false
		return e.s
	}
	s := New(r.ctx)
	s.throttler.onIdle = func() { r.reap(key, s) }
	r.entries[key] = &entry{s: s}
	return s
}

// Schedule triggers work on the Scheduler for key.
func (r *Registry) Schedule(key string, work Work, delay time.Duration) *Future {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return settledFuture(ErrClosed)
	}
	return r.getLocked(key).Trigger(work, delay)
}

// Cancel aborts the pending countdown for key, if any.
func (r *Registry) Cancel(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[key]; ok {
		e.s.Cancel()
	}
}

// Evict cancels the countdown and queued rerun for key and removes its
// scheduler, immediately when idle or once the active run completes.
// It reports whether key was known.
func (r *Registry) Evict(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		return false
	}
	e.s.Cancel()
	e.s.throttler.DropQueued()
	if e.s.Idle() {
		delete(r.entries, key)
	} else {
		e.evicted = true
	}
	return true
}

func (r *Registry) reap(key string, s *Scheduler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok || e.s != s || !e.evicted || !s.Idle() {
		return
	}
	delete(r.entries, key)
}

// Has reports whether key currently owns a scheduler.
func (r *Registry) Has(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[key]
	return ok
}

// Len returns the number of live schedulers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Keys returns the live keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// States returns the state of every live scheduler.
func (r *Registry) States() map[string]State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]State, len(r.entries))
	for k, e := range r.entries {
		out[k] = e.s.State()
	}
	return out
}

// Close cancels every countdown and queued rerun, cancels the context handed
// to active runs and rejects further Schedule calls.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	entries := r.entries
	r.entries = make(map[string]*entry)
	r.mu.Unlock()
	for _, e := range entries {
		e.s.Cancel()
		e.s.throttler.DropQueued()
	}
	r.cancel()
}
