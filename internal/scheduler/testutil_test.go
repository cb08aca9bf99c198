package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// recorder collects the names of runs in completion order and tracks how many
// runs overlap.
type recorder struct {
	mu      sync.Mutex
	ran     []string
	active  atomic.Int32
	maxSeen atomic.Int32
}

func (r *recorder) work(name string) Work {
	return r.gated(name, nil)
}

// gated returns work that blocks on gate (when non-nil) before finishing.
func (r *recorder) gated(name string, gate <-chan struct{}) Work {
	return func(ctx context.Context) error {
		n := r.active.Add(1)
		for {
			m := r.maxSeen.Load()
			if n <= m || r.maxSeen.CompareAndSwap(m, n) {
				break
			}
		}
		defer r.active.Add(-1)
		if gate != nil {
			select {
			case <-gate:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		r.mu.Lock()
		r.ran = append(r.ran, name)
		r.mu.Unlock()
		return nil
	}
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ran...)
}

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}
