package document

import (
	"sort"
	"sync"
)

// Store maps document URIs to their latest snapshot. Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{docs: make(map[string]*Document)}
}

// Put stores d under its URI, replacing any previous snapshot.
func (s *Store) Put(d *Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[d.URI] = d
}

// Get returns the latest snapshot for uri.
func (s *Store) Get(uri string) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[uri]
	return d, ok
}

// Update replaces the text of an open document. It reports false when uri is
// not open.
func (s *Store) Update(uri, text string, version int) (*Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[uri]
	if !ok {
		return nil, false
	}
	if version == 0 {
		version = d.Version + 1
	}
	next := d.WithText(text, version)
	s.docs[uri] = next
	return next, true
}

// Delete removes uri and reports whether it was present.
func (s *Store) Delete(uri string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.docs[uri]
	delete(s.docs, uri)
	return ok
}

// Len returns the number of open documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// All returns every snapshot ordered by URI.
func (s *Store) All() []*Document {
	s.mu.RLock()
	out := make([]*Document, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })
	return out
}
