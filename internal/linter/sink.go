package linter

import (
	"slices"
	"sync"

	"hlsllint/pkg/types"
)

// Sink receives the outcome of each completed run. Publish replaces the whole
// diagnostic set of uri; Clear removes it.
type Sink interface {
	Publish(uri string, diags []types.Diagnostic)
	Clear(uri string)
}

// MemorySink keeps the latest diagnostics per document. Safe for concurrent use.
type MemorySink struct {
	mu    sync.RWMutex
	diags map[string][]types.Diagnostic
}

func NewMemorySink() *MemorySink {
	return &MemorySink{diags: make(map[string][]types.Diagnostic)}
}

func (s *MemorySink) Publish(uri string, diags []types.Diagnostic) {
	s.mu.Lock()
	s.diags[uri] = slices.Clone(diags)
	s.mu.Unlock()
}

func (s *MemorySink) Clear(uri string) {
	s.mu.Lock()
	delete(s.diags, uri)
	s.mu.Unlock()
}

// Get returns the published diagnostics of uri and whether any exist.
func (s *MemorySink) Get(uri string) ([]types.Diagnostic, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.diags[uri]
	return slices.Clone(d), ok
}

// Len returns the number of documents with published diagnostics.
func (s *MemorySink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.diags)
}
