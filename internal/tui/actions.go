package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/kwintel/internal/dataset"
	"github.com/studiowebux/kwintel/internal/document"
	"github.com/studiowebux/kwintel/internal/executor"
	"github.com/studiowebux/kwintel/internal/export"
	"github.com/studiowebux/kwintel/internal/session"
	"github.com/studiowebux/kwintel/internal/types"
	"github.com/studiowebux/kwintel/internal/validator"
)

// DatasetExportFilename is the file written when exporting the dataset browser
const DatasetExportFilename = "dataset.csv"

// setMode switches mode and moves keyboard focus to the new view
func (m *Model) setMode(mode Mode) tea.Cmd {
	m.mode = mode
	switch mode {
	case ModeLogin:
		return m.focusLogin(0)
	case ModeInput:
		return m.focusInput(m.inputFocus)
	}
	return nil
}

func (m *Model) quit() tea.Cmd {
	m.requestState.CancelAll()
	return tea.Quit
}

func (m *Model) toggleHelp() {
	if m.mode == ModeHelp {
		m.mode = m.helpReturn
		return
	}
	m.helpReturn = m.mode
	m.helpView.SetContent(m.renderHelpContent(m.mode))
	m.helpView.GotoTop()
	m.mode = ModeHelp
}

// Login

func (m *Model) focusLogin(i int) tea.Cmd {
	n := len(m.loginInputs)
	m.loginFocus = ((i % n) + n) % n
	for j := range m.loginInputs {
		m.loginInputs[j].Blur()
	}
	return m.loginInputs[m.loginFocus].Focus()
}

func (m *Model) login() tea.Cmd {
	username := m.loginInputs[0].Value()
	password := m.loginInputs[1].Value()

	// Enter on the username moves on while the password is still empty
	if m.loginFocus == 0 && strings.TrimSpace(password) == "" && strings.TrimSpace(username) != "" {
		return m.focusLogin(1)
	}

	s, err := m.sessions.Login(username, password)
	if err != nil {
		if errors.Is(err, session.ErrMissingCredentials) {
			m.center.Error("Please enter a username and password")
		} else {
			m.logger.Error("login failed", "err", err)
			m.center.Error("Login failed")
		}
		return nil
	}

	m.logger.Info("logged in", "user", s.Username)
	m.loginInputs[1].SetValue("")
	m.center.Success(fmt.Sprintf("Welcome, %s!", s.Username))
	return m.setMode(ModeInput)
}

func (m *Model) logout() tea.Cmd {
	if err := m.sessions.Logout(); err != nil {
		m.logger.Error("logout failed", "err", err)
		m.center.Error("Logout failed")
		return nil
	}
	m.controller.Clear()
	m.resetInput()
	m.loginInputs[0].SetValue("")
	m.loginInputs[1].SetValue("")
	m.center.Success("Logged out")
	return m.setMode(ModeLogin)
}

// Input

func (m *Model) focusInput(i int) tea.Cmd {
	if m.inputFocus == focusBody && i != focusBody && m.inputKind == types.InputFile {
		m.attach()
	}
	m.inputFocus = ((i % focusCount) + focusCount) % focusCount

	m.editor.Blur()
	m.pathInput.Blur()
	if m.inputFocus != focusBody {
		return nil
	}
	if m.inputKind == types.InputText {
		return m.editor.Focus()
	}
	return m.pathInput.Focus()
}

func (m *Model) toggleInputKind() tea.Cmd {
	if m.inputKind == types.InputText {
		m.inputKind = types.InputFile
	} else {
		m.inputKind = types.InputText
	}
	m.inputFocus = focusBody
	return m.focusInput(focusBody)
}

// adjustParam changes the focused parameter within its bounds
func (m *Model) adjustParam(delta int) {
	switch m.inputFocus {
	case focusTopN:
		m.params.TopN = clamp(m.params.TopN+delta, types.MinTopN, types.MaxTopN)
	case focusNgramMin:
		m.params.NgramMin = clamp(m.params.NgramMin+delta, types.MinNgram, types.MaxNgram)
	case focusNgramMax:
		m.params.NgramMax = clamp(m.params.NgramMax+delta, types.MinNgram, types.MaxNgram)
	}
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// attach reads the file named in the path field and inspects it.
// Read errors become notifications; the attachment stays empty.
func (m *Model) attach() *attachment {
	path := strings.TrimSpace(m.pathInput.Value())
	if path == "" {
		m.attached = nil
		return nil
	}
	if m.attached != nil && m.attached.path == path {
		return m.attached
	}

	f, err := os.Open(path)
	if err != nil {
		m.logger.Warn("failed to open attachment", "path", path, "err", err)
		m.center.Error(fmt.Sprintf("Cannot open %s", path))
		m.attached = nil
		return nil
	}
	defer f.Close()

	blob, err := document.ReadAll(f, document.MaxFileSize)
	if err != nil {
		m.logger.Warn("failed to read attachment", "path", path, "err", err)
		m.center.Error(fmt.Sprintf("Cannot read %s", path))
		m.attached = nil
		return nil
	}

	info, err := document.Inspect(path, blob)
	m.attached = &attachment{path: path, blob: blob, info: info, err: err}
	m.logger.Debug("attachment loaded", "name", info.Name, "size", info.Size, "pages", info.Pages)
	return m.attached
}

// submissionInput builds the tagged input for the active input kind
func (m *Model) submissionInput() (types.SubmissionInput, bool) {
	if m.inputKind == types.InputText {
		return types.NewTextInput(m.editor.Value(), m.params), true
	}

	if strings.TrimSpace(m.pathInput.Value()) == "" {
		return types.SubmissionInput{Kind: types.InputFile, Params: m.params}, true
	}
	a := m.attach()
	if a == nil {
		return types.SubmissionInput{}, false
	}
	return types.NewFileInput(a.blob, a.path, m.params), true
}

// submit validates and dispatches the current input.
// Nothing happens while a submission is in flight.
func (m *Model) submit() tea.Cmd {
	if m.controller.State() == types.StateSubmitting {
		return nil
	}

	in, ok := m.submissionInput()
	if !ok {
		return nil
	}

	sub, err := m.controller.Begin(in)
	if err != nil {
		m.logger.Debug("submission rejected", "reason", validator.Reason(err))
		return nil
	}

	m.logger.Info("submitting", "id", sub.ID, "kind", in.Kind.String(), "source", in.Source(), "path", sub.Request.Path)

	ctx, cancel := context.WithCancel(m.ctx)
	m.requestState.SetCancel(sub.ID, cancel)
	m.refreshResults()

	return tea.Batch(m.spinner.Tick, executeCmd(ctx, m.controller, sub))
}

func (m *Model) handleSubmissionDone(msg submissionDoneMsg) tea.Cmd {
	m.requestState.Release(msg.outcome.ID)
	if !m.controller.Complete(msg.outcome) {
		m.logger.Debug("stale outcome dropped", "id", msg.outcome.ID)
		return nil
	}

	if err := msg.outcome.Err; err != nil {
		m.logger.Error("extraction failed",
			"id", msg.outcome.ID,
			"err", err,
			"reason", executor.Describe(err),
		)
		m.refreshResults()
		return nil
	}

	result := m.controller.Result()
	m.logger.Info("extraction completed",
		"id", msg.outcome.ID,
		"duration", executor.FormatDuration(msg.outcome.Duration),
		"topic", result.PredictedTopic(),
	)

	m.submittedText = msg.text
	m.showMarks = false
	m.refreshResults()
	m.resultsView.GotoTop()
	m.mode = ModeResults

	if m.cfg.HistoryEnabled {
		return m.saveDatasetCmd(msg.input.Source(), msg.text, result, true)
	}
	return nil
}

// clear resets input, result and state in one step.
// A call still in flight keeps running; its outcome is dropped as stale.
func (m *Model) clear() tea.Cmd {
	m.controller.Clear()
	m.resetInput()
	m.refreshResults()
	return m.setMode(ModeInput)
}

func (m *Model) resetInput() {
	m.editor.Reset()
	m.pathInput.SetValue("")
	m.attached = nil
	m.submittedText = ""
	m.showMarks = false
	m.params = m.cfg.Defaults.WithDefaults()
}

// Results

func (m *Model) showResults() {
	if m.controller.Result() == nil {
		return
	}
	m.refreshResults()
	m.mode = ModeResults
}

func (m *Model) exportResult(format string) {
	result := m.controller.Result()
	if result == nil {
		return
	}

	artifact, err := export.Build(format, result)
	if err != nil {
		m.logger.Error("export failed", "format", format, "err", err)
		m.center.Error("Export failed")
		return
	}
	m.deliver(artifact)
}

func (m *Model) deliver(artifact export.Artifact) {
	dir, err := m.cfg.ResolveExportDir()
	if err == nil {
		var path string
		if path, err = export.Deliver(dir, artifact); err == nil {
			m.logger.Info("exported", "path", path, "bytes", len(artifact.Data))
			m.center.Success(fmt.Sprintf("Saved %s", path))
			return
		}
	}
	m.logger.Error("export delivery failed", "file", artifact.Filename, "err", err)
	m.center.Error(fmt.Sprintf("Failed to save %s", artifact.Filename))
}

func (m *Model) copySummary() tea.Cmd {
	result := m.controller.Result()
	if result == nil {
		return nil
	}
	return m.copyCmd(result.Summary, "Summary")
}

func (m *Model) copyKeywords() tea.Cmd {
	result := m.controller.Result()
	if result == nil {
		return nil
	}
	return m.copyCmd(strings.Join(result.MLKeywords, ", "), "Keywords")
}

func (m *Model) saveResult() tea.Cmd {
	result := m.controller.Result()
	if result == nil {
		return nil
	}
	if m.store == nil {
		m.center.Error("Dataset is not available")
		return nil
	}
	in, _ := m.controller.Input()
	return m.saveDatasetCmd(in.Source(), m.submittedText, result, false)
}

func (m *Model) handleDatasetSaved(msg datasetSavedMsg) {
	if msg.err != nil {
		m.logger.Error("failed to save dataset entry", "err", msg.err)
		if !msg.auto {
			m.center.Error("Failed to save to dataset")
		}
		return
	}
	m.logger.Info("dataset entry saved", "id", msg.entry.ID, "auto", msg.auto)
	if !msg.auto {
		m.center.Success("Saved to dataset")
	}
}

func (m *Model) handleHealth(msg healthMsg) {
	if msg.err != nil {
		m.serviceBanner = ""
		m.serviceErr = executor.Describe(msg.err)
		m.logger.Warn("service health check failed", "err", msg.err, "reason", m.serviceErr)
		m.center.Error(executor.GenericFailureMessage)
		return
	}
	m.serviceBanner = msg.banner
	m.serviceErr = ""
	m.logger.Info("service reachable", "banner", msg.banner)
}

// Dataset

func (m *Model) openDataset() tea.Cmd {
	if m.store == nil {
		m.center.Error("Dataset is not available")
		return nil
	}
	if m.mode != ModeDataset {
		m.returnMode = m.mode
	}
	m.mode = ModeDataset
	return m.loadDatasetCmd(m.datasetState.GetSearchQuery())
}

func (m *Model) handleDatasetLoaded(msg datasetLoadedMsg) {
	if msg.err != nil {
		m.logger.Error("failed to load dataset", "err", msg.err)
		m.center.Error("Failed to load dataset")
		return
	}
	m.datasetState.SetEntries(msg.entries)
	m.refreshDatasetDetail()
}

func (m *Model) deleteEntry() tea.Cmd {
	entry := m.datasetState.GetCurrentEntry()
	if entry == nil {
		return nil
	}
	if err := m.store.Delete(m.ctx, entry.ID); err != nil {
		m.logger.Error("failed to delete dataset entry", "id", entry.ID, "err", err)
		m.center.Error("Failed to delete entry")
		return nil
	}
	m.center.Success("Entry deleted")
	return m.loadDatasetCmd(m.datasetState.GetSearchQuery())
}

func (m *Model) clearDataset() tea.Cmd {
	n, err := m.store.Clear(m.ctx)
	if err != nil {
		m.logger.Error("failed to clear dataset", "err", err)
		m.center.Error("Failed to clear dataset")
		return nil
	}
	m.logger.Info("dataset cleared", "entries", n)
	m.center.Success(fmt.Sprintf("Deleted %d entries", n))
	m.datasetState.ClearSearch()
	m.searchInput.SetValue("")
	return m.loadDatasetCmd("")
}

func (m *Model) exportDataset() {
	entries := m.datasetState.GetEntries()
	if len(entries) == 0 {
		return
	}
	data, err := dataset.ToCSV(entries)
	if err != nil {
		m.logger.Error("failed to export dataset", "err", err)
		m.center.Error(fmt.Sprintf("Failed to save %s", DatasetExportFilename))
		return
	}
	m.deliver(export.Artifact{
		Filename: DatasetExportFilename,
		MIME:     export.CSVMIME,
		Data:     data,
	})
}
