package linter

import (
	"sync"

	"github.com/rs/zerolog"
)

// Event represents a linter lifecycle event.
// Minimal and stable: name + document URI and optional fields.
type Event struct {
	Name   string
	URI    string
	Fields map[string]any
}

// Event names.
const (
	EventRunDone      = "run_done"
	EventToolMissing  = "tool_missing"
	EventSpawnFailed  = "spawn_failed"
	EventRunFailed    = "run_failed"
	EventCleared      = "cleared"
	EventClosed       = "closed"
	EventReconfigured = "reconfigured"
)

// EventPublisher receives events from the linter. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// LogPublisher writes every event to Log at debug level.
type LogPublisher struct {
	Log zerolog.Logger
}

func (p LogPublisher) Publish(e Event) {
	ev := p.Log.Debug().Str("event", e.Name)
	if e.URI != "" {
		ev = ev.Str("uri", e.URI)
	}
	ev.Fields(e.Fields).Msg("linter event")
}

// MemoryPublisher stores events in memory.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher { return &MemoryPublisher{} }

func (p *MemoryPublisher) Publish(e Event) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

// Events returns a copy of everything published so far.
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// Named returns the published events called name.
func (p *MemoryPublisher) Named(name string) []Event {
	var out []Event
	for _, e := range p.Events() {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}
