package store

import (
	"fmt"
	"log"
	"sync"

	"carecall/internal/models"
)

// Store holds the live state document behind a single read/write lock.
// Every mutation rewrites the whole document through the backend before
// the lock is released, so readers always see persisted state.
type Store struct {
	mu      sync.RWMutex
	doc     *models.Document
	backend Backend
}

// New loads the document from the backend. A corrupt store is logged and
// replaced in memory by an empty document; whatever the backend holds stays
// untouched until the next successful mutation persists over it.
func New(backend Backend) *Store {
	doc, err := backend.Load()
	if err != nil {
		log.Printf("State store unreadable, starting empty: %v", err)
	}
	doc.EnsureDefaults()
	return &Store{doc: doc, backend: backend}
}

// View runs fn with shared read access to the document. fn must not mutate
// the document or retain references past its return.
func (s *Store) View(fn func(doc *models.Document) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.doc)
}

// Update runs fn with exclusive access and persists the whole document on
// success. When fn returns an error nothing is persisted, so fn must do all
// its validation before its first mutation.
func (s *Store) Update(fn func(doc *models.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.doc); err != nil {
		return err
	}
	if err := s.backend.Save(s.doc); err != nil {
		return fmt.Errorf("failed to persist state: %w", err)
	}
	return nil
}
