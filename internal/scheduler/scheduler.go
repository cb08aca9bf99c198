package scheduler

import (
	"context"
	"sync"
	"time"
)

// State is the observable scheduling state of one key.
type State int

const (
	StateIdle State = iota
	StatePending
	StateRunning
	StateRunningQueued
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateRunningQueued:
		return "running+queued"
	}
	return "unknown"
}

// Scheduler debounces requests for one key and hands the surviving work to a
// Throttler when the quiet period elapses.
type Scheduler struct {
	throttler *Throttler

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	work    Work
	pending *Future
}

// New returns a Scheduler whose runs receive ctx.
func New(ctx context.Context) *Scheduler {
	return &Scheduler{throttler: NewThrottler(ctx)}
}

// Trigger records work as the work to perform and restarts the countdown.
// Calls made before the countdown elapses return the same Future, which
// settles when the single resulting run completes.
func (s *Scheduler) Trigger(work Work, delay time.Duration) *Future {
	if delay < 0 {
		delay = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.work = work
	s.stopTimerLocked()
	if s.pending == nil {
		s.pending = newFuture()
	}
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(delay, func() { s.fire(gen) })
	return s.pending
}

// fire runs when a countdown elapses. A timer stopped too late to prevent its
// callback carries a stale generation and does nothing.
func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.pending == nil {
		return
	}
	work, f := s.work, s.pending
	s.work, s.pending, s.timer = nil, nil, nil
	// Enqueue under s.mu so two countdowns elapsing back to back cannot reach
	// the throttler out of order.
	s.throttler.enqueue(work, f)
}

// Cancel aborts a pending countdown. Its work never runs and its Future
// settles with ErrCanceled. An active run is not affected.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	s.stopTimerLocked()
	s.gen++
	f := s.pending
	s.work, s.pending = nil, nil
	s.mu.Unlock()
	if f != nil {
		f.settle(ErrCanceled)
	}
}

// IsPending reports whether a countdown is outstanding.
func (s *Scheduler) IsPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// State reports the scheduling state. A run in flight takes precedence over a
// countdown opened during it.
func (s *Scheduler) State() State {
	pending := s.IsPending()
	s.throttler.mu.Lock()
	running, queued := s.throttler.running, s.throttler.queued != nil
	s.throttler.mu.Unlock()
	switch {
	case running && queued:
		return StateRunningQueued
	case running:
		return StateRunning
	case pending:
		return StatePending
	}
	return StateIdle
}

// Idle reports whether nothing is pending, running or queued.
func (s *Scheduler) Idle() bool { return s.State() == StateIdle }

// Runs is the number of runs this scheduler has started.
func (s *Scheduler) Runs() uint64 { return s.throttler.Runs() }

func (s *Scheduler) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
