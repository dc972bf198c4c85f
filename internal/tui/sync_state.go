package tui

import (
	"context"
	"sync"

	"github.com/studiowebux/kwintel/internal/types"
)

// RequestState holds the cancel functions of submissions whose network call
// has not returned yet, keyed by submission id. A superseded submission stays
// here until its call returns.
type RequestState struct {
	mu      sync.Mutex
	cancels map[uint64]context.CancelFunc
}

// SetCancel stores the cancel function of submission id
func (r *RequestState) SetCancel(id uint64, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancels == nil {
		r.cancels = make(map[uint64]context.CancelFunc)
	}
	r.cancels[id] = cancel
}

// Release frees the context of submission id once its call has returned
func (r *RequestState) Release(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cancel, ok := r.cancels[id]; ok {
		cancel()
		delete(r.cancels, id)
	}
}

// CancelAll aborts every pending call. Only used on shutdown.
func (r *RequestState) CancelAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, cancel := range r.cancels {
		cancel()
		delete(r.cancels, id)
	}
}

// Active reports whether any call is pending
func (r *RequestState) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cancels) > 0
}

// DatasetState holds the dataset browser entries and selection
type DatasetState struct {
	mu sync.RWMutex

	entries      []types.DatasetEntry
	index        int
	searchActive bool
	searchQuery  string
}

// NewDatasetState creates an empty dataset state
func NewDatasetState() *DatasetState {
	return &DatasetState{entries: []types.DatasetEntry{}}
}

// GetEntries returns a copy of the entries slice
func (s *DatasetState) GetEntries() []types.DatasetEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]types.DatasetEntry, len(s.entries))
	copy(result, s.entries)
	return result
}

// SetEntries replaces the entries and keeps the index in range
func (s *DatasetState) SetEntries(entries []types.DatasetEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
	if s.index >= len(entries) {
		s.index = max(0, len(entries)-1)
	}
}

// GetIndex returns the current index
func (s *DatasetState) GetIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// SetIndex sets the current index, clamped to the entries
func (s *DatasetState) SetIndex(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		s.index = 0
		return
	}
	s.index = min(max(0, index), len(s.entries)-1)
}

// Navigate moves the selection by delta, wrapping around
func (s *DatasetState) Navigate(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 {
		return
	}

	s.index += delta

	if s.index < 0 {
		s.index = len(s.entries) - 1
	} else if s.index >= len(s.entries) {
		s.index = 0
	}
}

// GetCurrentEntry returns the selected entry, or nil when there is none
func (s *DatasetState) GetCurrentEntry() *types.DatasetEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 || s.index < 0 || s.index >= len(s.entries) {
		return nil
	}
	entry := s.entries[s.index]
	return &entry
}

// GetSearchActive returns the search active state
func (s *DatasetState) GetSearchActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchActive
}

// ActivateSearch activates the search input
func (s *DatasetState) ActivateSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchActive = true
}

// DeactivateSearch closes the search input and keeps the query
func (s *DatasetState) DeactivateSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchActive = false
}

// GetSearchQuery returns the search query
func (s *DatasetState) GetSearchQuery() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchQuery
}

// SetSearchQuery sets the search query
func (s *DatasetState) SetSearchQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchQuery = query
}

// ClearSearch clears the search query and deactivates search
func (s *DatasetState) ClearSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchQuery = ""
	s.searchActive = false
}
