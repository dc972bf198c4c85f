package tui

import (
	"context"
	"errors"
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/kwintel/internal/clipboard"
	"github.com/studiowebux/kwintel/internal/clock"
	"github.com/studiowebux/kwintel/internal/config"
	"github.com/studiowebux/kwintel/internal/controller"
	"github.com/studiowebux/kwintel/internal/dataset"
	"github.com/studiowebux/kwintel/internal/executor"
	"github.com/studiowebux/kwintel/internal/keybinds"
	"github.com/studiowebux/kwintel/internal/logging"
	"github.com/studiowebux/kwintel/internal/notify"
	"github.com/studiowebux/kwintel/internal/session"
	"github.com/studiowebux/kwintel/internal/types"
)

// Pinger probes the service health endpoint
type Pinger interface {
	Ping(ctx context.Context) (string, error)
}

// Options wires the TUI to its collaborators
type Options struct {
	Config    *config.Config
	Service   executor.Extractor
	Pinger    Pinger         // optional start-up health probe
	Sessions  *session.Manager
	Dataset   *dataset.Store // optional
	Clipboard clipboard.Writer
	Keybinds  *keybinds.Registry
	Logger    *slog.Logger
	Clock     clock.Clock
}

// New creates a new TUI model
func New(ctx context.Context, opts Options) (*Model, error) {
	if opts.Service == nil {
		return nil, errors.New("tui: extraction service is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("tui: session manager is required")
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Keybinds == nil {
		opts.Keybinds = keybinds.NewDefaultRegistry()
	}
	if opts.Clock == nil {
		opts.Clock = clock.SystemClock{}
	}

	m := &Model{
		ctx:          ctx,
		cfg:          opts.Config,
		logger:       opts.Logger,
		sessions:     opts.Sessions,
		store:        opts.Dataset,
		pinger:       opts.Pinger,
		keybinds:     opts.Keybinds,
		requestState: &RequestState{},
		datasetState: NewDatasetState(),
		params:       opts.Config.Defaults.WithDefaults(),
		inputKind:    types.InputText,
		resultsView:  viewport.New(80, 20),
		datasetView:  viewport.New(80, 20),
		helpView:     viewport.New(80, 20),
	}

	m.center = notify.NewCenter(
		notify.WithClock(opts.Clock),
		notify.WithTimeout(opts.Config.NotificationTimeout()),
	)
	m.center.Subscribe(func(n types.Notification, active bool) {
		// Listeners may run inside Update, where a blocking Send would deadlock
		if send := m.send; send != nil {
			go send(notificationMsg{})
		}
	})
	m.controller = controller.New(opts.Service, m.center)
	m.clipboard = clipboard.NewHelper(opts.Clipboard, m.center)

	m.initLogin()
	m.initInput()

	m.searchInput = textinput.New()
	m.searchInput.Prompt = "/"
	m.searchInput.Placeholder = "search source, topic, keywords"

	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styleAccent))

	if m.sessions.LoggedIn() {
		m.setMode(ModeInput)
	} else {
		m.setMode(ModeLogin)
	}

	return m, nil
}

func (m *Model) initLogin() {
	user := textinput.New()
	user.Prompt = "Username: "
	user.Placeholder = "any name"
	user.CharLimit = 64

	pass := textinput.New()
	pass.Prompt = "Password: "
	pass.Placeholder = "any password"
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'
	pass.CharLimit = 128

	m.loginInputs = []textinput.Model{user, pass}
}

func (m *Model) initInput() {
	m.editor = textarea.New()
	m.editor.Placeholder = "Paste or type the text to analyse..."
	m.editor.ShowLineNumbers = false
	m.editor.CharLimit = 0
	m.editor.MaxHeight = 0
	m.editor.SetWidth(76)
	m.editor.SetHeight(10)

	m.pathInput = textinput.New()
	m.pathInput.Prompt = "File: "
	m.pathInput.Placeholder = "path/to/document.pdf"
}

// Run starts the TUI and blocks until it exits
func Run(ctx context.Context, opts Options) error {
	m, err := New(ctx, opts)
	if err != nil {
		return err
	}
	defer m.Cleanup()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	m.send = p.Send

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
