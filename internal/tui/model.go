package tui

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/kwintel/internal/clipboard"
	"github.com/studiowebux/kwintel/internal/config"
	"github.com/studiowebux/kwintel/internal/controller"
	"github.com/studiowebux/kwintel/internal/dataset"
	"github.com/studiowebux/kwintel/internal/document"
	"github.com/studiowebux/kwintel/internal/keybinds"
	"github.com/studiowebux/kwintel/internal/notify"
	"github.com/studiowebux/kwintel/internal/session"
	"github.com/studiowebux/kwintel/internal/types"
)

// Mode represents the current TUI mode
type Mode int

const (
	ModeLogin Mode = iota
	ModeInput
	ModeResults
	ModeDataset
	ModeConfirmClear
	ModeHelp
)

func (m Mode) String() string {
	switch m {
	case ModeLogin:
		return "login"
	case ModeInput:
		return "input"
	case ModeResults:
		return "results"
	case ModeDataset:
		return "dataset"
	case ModeConfirmClear:
		return "confirm"
	case ModeHelp:
		return "help"
	default:
		return "unknown"
	}
}

// context returns the keybinding context of a mode
func (m Mode) context() keybinds.Context {
	switch m {
	case ModeLogin:
		return keybinds.ContextLogin
	case ModeInput:
		return keybinds.ContextInput
	case ModeResults:
		return keybinds.ContextResults
	case ModeDataset:
		return keybinds.ContextDataset
	case ModeConfirmClear:
		return keybinds.ContextConfirm
	default:
		return keybinds.ContextGlobal
	}
}

// Input field focus order
const (
	focusBody = iota
	focusTopN
	focusNgramMin
	focusNgramMax
	focusCount
)

// attachment is a file read from the path field
type attachment struct {
	path string
	blob []byte
	info document.Info
	err  error // set when the document could not be inspected
}

// Model represents the TUI state
type Model struct {
	// Core state
	ctx          context.Context
	cfg          *config.Config
	logger       *slog.Logger
	sessions     *session.Manager
	store        *dataset.Store
	pinger       Pinger
	keybinds     *keybinds.Registry
	controller   *controller.Controller
	center       *notify.Center
	clipboard    *clipboard.Helper
	requestState *RequestState
	datasetState *DatasetState
	mode         Mode
	returnMode   Mode // mode restored when the dataset closes
	helpReturn   Mode

	// send delivers messages from outside the event loop; nil in tests
	send func(tea.Msg)

	// Login
	loginInputs []textinput.Model
	loginFocus  int

	// Input
	inputKind  types.InputKind
	editor     textarea.Model
	pathInput  textinput.Model
	params     types.Params
	inputFocus int
	attached   *attachment
	spinner    spinner.Model

	// Results
	resultsView   viewport.Model
	submittedText string // text the keyword marks are applied to
	showMarks     bool

	// Dataset
	datasetView viewport.Model
	searchInput textinput.Model

	// Help
	helpView viewport.Model

	// UI state
	width         int
	height        int
	serviceBanner string
	serviceErr    string
}

// Init starts the cursor blink and the service health probe
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.pingCmd())
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil

	case spinner.TickMsg:
		if m.controller.State() != types.StateSubmitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case submissionDoneMsg:
		return m, m.handleSubmissionDone(msg)

	case healthMsg:
		m.handleHealth(msg)
		return m, nil

	case datasetLoadedMsg:
		m.handleDatasetLoaded(msg)
		return m, nil

	case datasetSavedMsg:
		m.handleDatasetSaved(msg)
		return m, nil

	case notificationMsg, clipboardDoneMsg:
		// Re-render; the notification itself lives in the center
		return m, nil
	}

	return m, m.updateFocused(msg)
}

// View renders the current mode
func (m *Model) View() string {
	return m.render()
}

// updateFocused forwards non-key messages (cursor blink, paste) to the focused widget
func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.mode {
	case ModeLogin:
		m.loginInputs[m.loginFocus], cmd = m.loginInputs[m.loginFocus].Update(msg)
	case ModeInput:
		if m.inputFocus != focusBody {
			return nil
		}
		if m.inputKind == types.InputText {
			m.editor, cmd = m.editor.Update(msg)
		} else {
			m.pathInput, cmd = m.pathInput.Update(msg)
		}
	case ModeDataset:
		if m.datasetState.GetSearchActive() {
			m.searchInput, cmd = m.searchInput.Update(msg)
		}
	}
	return cmd
}

// Cleanup cancels any submission still in flight
func (m *Model) Cleanup() {
	m.requestState.CancelAll()
}
