package controller

import (
	"sync"

	"github.com/studiowebux/kwintel/internal/types"
)

// ResultStore holds the most recent successful result
type ResultStore struct {
	mu     sync.RWMutex
	result *types.ExtractionResult
}

// NewResultStore creates an empty store
func NewResultStore() *ResultStore {
	return &ResultStore{}
}

// Set replaces the stored result with a copy of r
func (s *ResultStore) Set(r *types.ExtractionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = r.Clone()
}

// Get returns a copy of the stored result, or nil
func (s *ResultStore) Get() *types.ExtractionResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result.Clone()
}

// Clear discards the stored result
func (s *ResultStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = nil
}

// Present reports whether a result is stored
func (s *ResultStore) Present() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result != nil
}
