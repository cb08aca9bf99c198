// Package scheduler decides when lint runs happen for a document and which
// requested run wins when several arrive close together. It is structured into
// small files by concern:
//
//   - future.go: Future, the settle-once handle returned to callers, and ErrCanceled.
//   - throttler.go: per-key mutual exclusion. At most one run is active; requests
//     that arrive during a run collapse into a single rerun of the latest work.
//   - scheduler.go: Scheduler, a debounce countdown in front of a Throttler.
//   - registry.go: Registry, the explicit document-key to Scheduler map with
//     eviction when a document closes.
//
// State machine of one key:
//
//	idle -> pending -> running -> (running+queued -> running)* -> idle
//
// A countdown may be pending while a run is active; when it elapses its work
// becomes the queued rerun, overwriting any rerun queued earlier.
//
// Every Future handed out is eventually settled: with the result of the run it
// was coalesced into, or with ErrCanceled when its countdown or queued rerun
// was withdrawn.
package scheduler
