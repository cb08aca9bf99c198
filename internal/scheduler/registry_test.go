package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRegistry_OneSchedulerPerKey(t *testing.T) {
	r := NewRegistry(context.Background())
	defer r.Close()

	a := r.Get("file:///a.hlsl")
	require.Same(t, a, r.Get("file:///a.hlsl"))
	require.NotSame(t, a, r.Get("file:///b.hlsl"))
	require.Equal(t, []string{"file:///a.hlsl", "file:///b.hlsl"}, r.Keys())
	require.Equal(t, 2, r.Len())
}

func TestRegistry_KeysAreIndependent(t *testing.T) {
	r := NewRegistry(context.Background())
	defer r.Close()
	recA, recB := &recorder{}, &recorder{}
	gate := make(chan struct{})

	fa := r.Schedule("a", recA.gated("a", gate), 0)
	fb := r.Schedule("b", recB.work("b"), 0)

	require.NoError(t, fb.Wait(testCtx(t)), "b must not wait for a")
	close(gate)
	require.NoError(t, fa.Wait(testCtx(t)))
}

func TestRegistry_EvictIdleRemovesImmediately(t *testing.T) {
	r := NewRegistry(context.Background())
	defer r.Close()
	rec := &recorder{}

	f := r.Schedule("doc", rec.work("x"), 50*time.Millisecond)
	require.True(t, r.Evict("doc"))
	require.False(t, r.Has("doc"))
	require.False(t, r.Evict("doc"))
	require.ErrorIs(t, f.Wait(testCtx(t)), ErrCanceled)
	time.Sleep(80 * time.Millisecond)
	require.Empty(t, rec.names())
}

func TestRegistry_EvictWhileRunningReapsAfterRun(t *testing.T) {
	r := NewRegistry(context.Background())
	defer r.Close()
	rec := &recorder{}
	gate := make(chan struct{})

	active := r.Schedule("doc", rec.gated("active", gate), 0)
	s := r.Get("doc")
	require.Eventually(t, func() bool { return s.State() == StateRunning }, testTimeout, testTick)
	queued := r.Schedule("doc", rec.work("queued"), 0)
	require.Eventually(t, func() bool { return s.State() == StateRunningQueued }, testTimeout, testTick)

	require.True(t, r.Evict("doc"))
	require.True(t, r.Has("doc"), "kept until the active run ends")
	require.ErrorIs(t, queued.Wait(testCtx(t)), ErrCanceled)

	close(gate)
	require.NoError(t, active.Wait(testCtx(t)))
	require.Eventually(t, func() bool { return !r.Has("doc") }, testTimeout, testTick)
	require.Equal(t, []string{"active"}, rec.names())
}

func TestRegistry_ReopenDuringEvictionReusesScheduler(t *testing.T) {
	r := NewRegistry(context.Background())
	defer r.Close()
	rec := &recorder{}
	gate := make(chan struct{})

	r.Schedule("doc", rec.gated("old", gate), 0)
	old := r.Get("doc")
	require.Eventually(t, func() bool { return old.State() == StateRunning }, testTimeout, testTick)
	r.Evict("doc")

	reopened := r.Schedule("doc", rec.work("new"), 0)
	require.Same(t, old, r.Get("doc"))
	close(gate)
	require.NoError(t, reopened.Wait(testCtx(t)))
	require.Equal(t, []string{"old", "new"}, rec.names())
	require.EqualValues(t, 1, rec.maxSeen.Load())
	time.Sleep(20 * time.Millisecond)
	require.True(t, r.Has("doc"), "reopened key must not be reaped")
}

func TestRegistry_CloseCancelsRunsAndRejectsNewWork(t *testing.T) {
	r := NewRegistry(context.Background())
	rec := &recorder{}
	gate := make(chan struct{})
	defer close(gate)

	active := r.Schedule("doc", rec.gated("active", gate), 0)
	require.Eventually(t, func() bool { return r.Get("doc").State() == StateRunning }, testTimeout, testTick)
	pending := r.Schedule("other", rec.work("pending"), time.Minute)

	r.Close()
	require.ErrorIs(t, active.Wait(testCtx(t)), context.Canceled)
	require.ErrorIs(t, pending.Wait(testCtx(t)), ErrCanceled)
	require.ErrorIs(t, r.Schedule("doc", rec.work("late"), 0).Err(), ErrClosed)
	require.Equal(t, 0, r.Len())
}

func TestRegistry_States(t *testing.T) {
	r := NewRegistry(context.Background())
	defer r.Close()
	r.Schedule("doc", (&recorder{}).work("x"), time.Minute)
	require.Equal(t, map[string]State{"doc": StatePending}, r.States())
	r.Cancel("doc")
	require.Equal(t, map[string]State{"doc": StateIdle}, r.States())
}
