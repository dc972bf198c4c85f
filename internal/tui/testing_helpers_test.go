package tui

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/kwintel/internal/clock"
	"github.com/studiowebux/kwintel/internal/config"
	"github.com/studiowebux/kwintel/internal/dataset"
	"github.com/studiowebux/kwintel/internal/request"
	"github.com/studiowebux/kwintel/internal/session"
	"github.com/studiowebux/kwintel/internal/types"
)

// fakeService is a scripted extraction service
type fakeService struct {
	mu       sync.Mutex
	calls    int
	requests []*request.Outbound
	ctxErrs  []error
	result   *types.ExtractionResult
	err      error
}

func (f *fakeService) Extract(ctx context.Context, out *request.Outbound) (*types.ExtractionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.requests = append(f.requests, out)
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	return f.result, f.err
}

// ContextErrs returns ctx.Err() as seen by each call
func (f *fakeService) ContextErrs() []error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]error(nil), f.ctxErrs...)
}

func (f *fakeService) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeClipboard struct {
	mu   sync.Mutex
	text string
	err  error
}

func (f *fakeClipboard) WriteAll(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.text = text
	return nil
}

func (f *fakeClipboard) Text() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text
}

// testHarness bundles a model with its fakes
type testHarness struct {
	*Model
	service *fakeService
	clip    *fakeClipboard
	clk     *clock.Fake
	sess    *session.Manager
	db      *dataset.Store
	conf    *config.Config
}

func sampleResult() *types.ExtractionResult {
	return &types.ExtractionResult{
		RuleKeywords: []string{"machine learning", "search"},
		MLKeywords:   []string{"relevance", "ranking", "customers"},
		Phrases:      []string{"machine learning models rank search results"},
		Summary:      "Machine learning improves search relevance.",
		Topic:        []string{"Technology", "Business"},
	}
}

const sampleText = "Machine learning improves search relevance. Machine learning models rank search results for every customer."

// CreateTestModel creates a Model backed by fakes and temp storage.
// A user is logged in unless loggedIn is false.
func CreateTestModel(t *testing.T, loggedIn bool) *testHarness {
	t.Helper()

	dir := t.TempDir()
	clk := clock.NewFake(time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC))

	sessions := session.NewManager(filepath.Join(dir, "session.json"), clk)
	if loggedIn {
		if _, err := sessions.Login("ada", "secret"); err != nil {
			t.Fatalf("Failed to log in: %v", err)
		}
	}

	store, err := dataset.Open(filepath.Join(dir, "dataset.db"), clk)
	if err != nil {
		t.Fatalf("Failed to open dataset: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := config.Default()
	cfg.ExportDir = dir

	svc := &fakeService{result: sampleResult()}
	clip := &fakeClipboard{}

	m, err := New(context.Background(), Options{
		Config:    cfg,
		Service:   svc,
		Sessions:  sessions,
		Dataset:   store,
		Clipboard: clip,
		Clock:     clk,
	})
	if err != nil {
		t.Fatalf("Failed to create test model: %v", err)
	}

	return &testHarness{
		Model:   m,
		service: svc,
		clip:    clip,
		clk:     clk,
		sess:    sessions,
		db:      store,
		conf:    cfg,
	}
}

// runCmd executes cmd and every command it batches, collecting the
// messages that arrive before timeout
func runCmd(cmd tea.Cmd, timeout time.Duration) []tea.Msg {
	if cmd == nil {
		return nil
	}

	results := make(chan tea.Msg, 64)
	pending := 0
	spawn := func(c tea.Cmd) {
		if c == nil {
			return
		}
		pending++
		go func() { results <- c() }()
	}
	spawn(cmd)

	deadline := time.After(timeout)
	var msgs []tea.Msg
	for pending > 0 {
		select {
		case msg := <-results:
			pending--
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, c := range batch {
					spawn(c)
				}
				continue
			}
			if msg != nil {
				msgs = append(msgs, msg)
			}
		case <-deadline:
			return msgs
		}
	}
	return msgs
}

// drain runs cmd and feeds the model's own messages back into Update,
// ignoring cursor blinks and spinner ticks
func (h *testHarness) drain(cmd tea.Cmd) {
	for _, msg := range runCmd(cmd, time.Second) {
		switch msg.(type) {
		case submissionDoneMsg, datasetLoadedMsg, datasetSavedMsg, healthMsg, clipboardDoneMsg:
			_, next := h.Update(msg)
			h.drain(next)
		}
	}
}

// press sends one key through Update and drains the resulting commands
func (h *testHarness) press(key string) {
	_, cmd := h.Update(keyMsg(key))
	h.drain(cmd)
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "f1":
		return tea.KeyMsg{Type: tea.KeyF1}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+l":
		return tea.KeyMsg{Type: tea.KeyCtrlL}
	case "ctrl+o":
		return tea.KeyMsg{Type: tea.KeyCtrlO}
	case "ctrl+d":
		return tea.KeyMsg{Type: tea.KeyCtrlD}
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	case "ctrl+x":
		return tea.KeyMsg{Type: tea.KeyCtrlX}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

// AssertModelField is a generic helper for checking model field values
func AssertModelField[T comparable](t *testing.T, fieldName string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", fieldName, got, want)
	}
}
