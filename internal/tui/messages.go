package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/kwintel/internal/controller"
	"github.com/studiowebux/kwintel/internal/document"
	"github.com/studiowebux/kwintel/internal/types"
)

const healthTimeout = 5 * time.Second

// submissionDoneMsg carries the outcome of a network call back into the event loop
type submissionDoneMsg struct {
	outcome controller.Outcome
	input   types.SubmissionInput
	text    string // submitted text, or the text extracted from the document
}

// healthMsg is the result of the start-up probe
type healthMsg struct {
	banner string
	err    error
}

type datasetLoadedMsg struct {
	entries []types.DatasetEntry
	err     error
}

type datasetSavedMsg struct {
	entry types.DatasetEntry
	auto  bool
	err   error
}

// notificationMsg asks for a re-render after the notification center changed
type notificationMsg struct{}

type clipboardDoneMsg struct{}

// executeCmd runs the network call off the event loop
func executeCmd(ctx context.Context, ctrl *controller.Controller, sub *controller.Submission) tea.Cmd {
	return func() tea.Msg {
		out := ctrl.Execute(ctx, sub)
		return submissionDoneMsg{
			outcome: out,
			input:   sub.Input,
			text:    submittedText(sub.Input),
		}
	}
}

// submittedText returns the text keyword marks apply to.
// For files it is the locally extracted PDF text, empty when that fails.
func submittedText(in types.SubmissionInput) string {
	if in.Kind == types.InputText {
		return in.Body
	}
	text, err := document.Text(in.Blob)
	if err != nil {
		return ""
	}
	return text
}

func (m *Model) pingCmd() tea.Cmd {
	if m.pinger == nil {
		return nil
	}
	pinger := m.pinger
	parent := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, healthTimeout)
		defer cancel()
		banner, err := pinger.Ping(ctx)
		return healthMsg{banner: banner, err: err}
	}
}

func (m *Model) loadDatasetCmd(query string) tea.Cmd {
	if m.store == nil {
		return nil
	}
	store := m.store
	ctx := m.ctx
	return func() tea.Msg {
		entries, err := store.Search(ctx, query)
		return datasetLoadedMsg{entries: entries, err: err}
	}
}

func (m *Model) saveDatasetCmd(source, text string, result *types.ExtractionResult, auto bool) tea.Cmd {
	if m.store == nil {
		return nil
	}
	store := m.store
	ctx := m.ctx
	return func() tea.Msg {
		entry, err := store.Save(ctx, source, text, result)
		return datasetSavedMsg{entry: entry, auto: auto, err: err}
	}
}

func (m *Model) copyCmd(text, label string) tea.Cmd {
	helper := m.clipboard
	ctx := m.ctx
	return func() tea.Msg {
		helper.Copy(ctx, text, label)
		return clipboardDoneMsg{}
	}
}
