package document

import (
	"errors"
	"sync"

	"github.com/chazu/aerogeom/pkg/status"
)

// Handle identifies a parsed document held by a Store. Valid handles are
// positive.
type Handle int

// Store keeps parsed documents addressable by handle. It is safe for
// concurrent use.
type Store struct {
	mu   sync.RWMutex
	docs map[Handle]*Document
	next Handle
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		docs: make(map[Handle]*Document),
		next: 1,
	}
}

// Add validates doc and stores it under a fresh handle. Documents with
// blocking validation errors are rejected with InvalidDocument.
func (s *Store) Add(doc *Document) (Handle, error) {
	if doc == nil {
		return 0, status.New(status.InvalidDocument, "document.Add", "nil document")
	}
	res := ValidateAll(doc)
	if !res.OK() {
		errs := make([]error, len(res.Errors))
		for i, e := range res.Errors {
			errs[i] = e
		}
		return 0, status.Wrap(status.InvalidDocument, "document.Add", errors.Join(errs...))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.next
	s.next++
	s.docs[h] = doc
	return h, nil
}

// Get returns the document for h.
func (s *Store) Get(h Handle) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[h]
	if !ok {
		return nil, status.New(status.InvalidDocument, "document.Get", "document handle %d not recognized", h)
	}
	return d, nil
}

// Remove forgets h. It reports whether h was present.
func (s *Store) Remove(h Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.docs[h]
	delete(s.docs, h)
	return ok
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
