// Package linter orchestrates compiler runs for open shader documents.
// It is structured into small files by concern:
//
//   - linter.go: Linter type, document operations and the run itself.
//   - trigger.go: trigger modes and which document events they react to.
//   - settings.go: Settings derived from config and the debounce policy.
//   - args.go: compiler command line construction.
//   - sink.go: diagnostic sinks (MemorySink).
//   - events.go: lifecycle events (EventPublisher, MemoryPublisher).
//   - errors.go: error types and helpers (IsDocumentNotFound, IsToolUnavailable).
//   - metrics.go: Prometheus collectors.
//
// Every document owns a scheduler from internal/scheduler. A run reads the
// latest snapshot of the document, expands INPUTS directives, writes the
// result to a temporary file and streams the compiler's stderr into a fresh
// parser. When the compiler cannot be found, scheduling stops for all
// documents until Reconfigure is called.
package linter
