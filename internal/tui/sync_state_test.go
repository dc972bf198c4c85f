package tui

import (
	"context"
	"sync"
	"testing"

	"github.com/studiowebux/kwintel/internal/types"
)

func TestRequestState_ReleaseCallsOnce(t *testing.T) {
	state := &RequestState{}
	calls := 0
	state.SetCancel(1, func() { calls++ })

	if !state.Active() {
		t.Fatal("expected active request")
	}

	state.Release(1)
	state.Release(1)

	if calls != 1 {
		t.Errorf("cancel called %d times, want 1", calls)
	}
	if state.Active() {
		t.Error("expected inactive after release")
	}
}

func TestRequestState_ReleaseLeavesOtherSubmissions(t *testing.T) {
	state := &RequestState{}
	stale, cancelStale := context.WithCancel(context.Background())
	defer cancelStale()
	current, cancelCurrent := context.WithCancel(context.Background())
	defer cancelCurrent()

	state.SetCancel(1, cancelStale)
	state.SetCancel(2, cancelCurrent)

	state.Release(2)
	if current.Err() == nil {
		t.Error("expected released context to be done")
	}
	if stale.Err() != nil {
		t.Error("expected superseded call to keep running")
	}
	if !state.Active() {
		t.Error("expected superseded call to stay pending")
	}

	state.CancelAll()
	if stale.Err() == nil {
		t.Error("expected CancelAll to abort every pending call")
	}
	if state.Active() {
		t.Error("expected inactive after CancelAll")
	}
}

func TestRequestState_ConcurrentAccess(t *testing.T) {
	state := &RequestState{}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = state.Active()
		}()
		go func(iteration int) {
			defer wg.Done()
			id := uint64(iteration / 2)
			if iteration%2 == 0 {
				state.Release(id)
			} else {
				_, cancel := context.WithCancel(context.Background())
				defer cancel()
				state.SetCancel(id, cancel)
			}
		}(i)
	}
	wg.Wait()
	state.CancelAll()
}

func TestDatasetState_Navigation(t *testing.T) {
	state := NewDatasetState()

	if state.GetCurrentEntry() != nil {
		t.Error("expected nil entry for empty state")
	}
	state.Navigate(1)
	if state.GetIndex() != 0 {
		t.Errorf("navigate on empty state moved index to %d", state.GetIndex())
	}

	state.SetEntries([]types.DatasetEntry{{ID: "a"}, {ID: "b"}, {ID: "c"}})

	tests := []struct {
		name  string
		delta int
		want  string
	}{
		{"down", 1, "b"},
		{"down again", 1, "c"},
		{"wraps to top", 1, "a"},
		{"wraps to bottom", -1, "c"},
	}
	for _, tt := range tests {
		state.Navigate(tt.delta)
		if got := state.GetCurrentEntry().ID; got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestDatasetState_SetEntriesClampsIndex(t *testing.T) {
	state := NewDatasetState()
	state.SetEntries([]types.DatasetEntry{{ID: "a"}, {ID: "b"}, {ID: "c"}})
	state.SetIndex(2)

	state.SetEntries([]types.DatasetEntry{{ID: "a"}})
	if state.GetIndex() != 0 {
		t.Errorf("index = %d, want 0", state.GetIndex())
	}

	state.SetIndex(10)
	if state.GetIndex() != 0 {
		t.Errorf("SetIndex past end = %d, want 0", state.GetIndex())
	}
}

func TestDatasetState_EntriesAreCopied(t *testing.T) {
	state := NewDatasetState()
	state.SetEntries([]types.DatasetEntry{{ID: "a"}})

	entries := state.GetEntries()
	entries[0].ID = "mutated"

	if state.GetCurrentEntry().ID != "a" {
		t.Error("GetEntries should return a copy")
	}
}

func TestDatasetState_Search(t *testing.T) {
	state := NewDatasetState()

	state.ActivateSearch()
	state.SetSearchQuery("fraud")
	if !state.GetSearchActive() || state.GetSearchQuery() != "fraud" {
		t.Fatal("search should be active with query")
	}

	state.DeactivateSearch()
	if state.GetSearchActive() || state.GetSearchQuery() != "fraud" {
		t.Error("DeactivateSearch should keep the query")
	}

	state.ClearSearch()
	if state.GetSearchQuery() != "" {
		t.Error("ClearSearch should drop the query")
	}
}
