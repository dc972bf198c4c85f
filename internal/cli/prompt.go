package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/studiowebux/kwintel/internal/types"
)

// ErrCancelled is returned when the user leaves a prompt without answering
var ErrCancelled = errors.New("cancelled by user")

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2).Bold(true)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1).MarginLeft(2)
)

type entryItem struct {
	entry types.DatasetEntry
}

func (i entryItem) FilterValue() string {
	return i.entry.Source + " " + i.entry.Topic + " " + strings.Join(i.entry.Keywords, " ")
}

func (i entryItem) Title() string {
	topic := i.entry.Topic
	if topic == "" {
		topic = "no topic"
	}
	return fmt.Sprintf("%s  %s  [%s]  %s",
		shortID(i.entry.ID),
		i.entry.CreatedAt.Local().Format(time.DateTime),
		topic,
		truncate(i.entry.Source, 32),
	)
}

func (i entryItem) Description() string { return "" }

type selectorModel struct {
	list     list.Model
	choice   string
	quitting bool
}

func (m selectorModel) Init() tea.Cmd {
	return nil
}

func (m selectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		// Let the list handle keys while the filter input is open
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			m.choice = ""
			return m, tea.Quit

		case "enter":
			if i, ok := m.list.SelectedItem().(entryItem); ok {
				m.choice = i.entry.ID
			}
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m selectorModel) View() string {
	if m.quitting {
		return ""
	}

	help := helpStyle.Render("↑/↓: navigate • /: filter • enter: select • q/esc: cancel")
	return fmt.Sprintf("%s\n\n%s", m.list.View(), help)
}

// PickEntry shows an interactive list of dataset entries and returns the chosen id
func PickEntry(entries []types.DatasetEntry) (string, error) {
	items := make([]list.Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, entryItem{entry: e})
	}

	const defaultWidth = 100
	const listHeight = 16

	l := list.New(items, itemDelegate{}, defaultWidth, listHeight)
	l.Title = "Select a saved analysis"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	finalModel, err := tea.NewProgram(selectorModel{list: l}).Run()
	if err != nil {
		return "", fmt.Errorf("error running selector: %w", err)
	}

	result := finalModel.(selectorModel)
	if result.choice == "" {
		return "", ErrCancelled
	}
	return result.choice, nil
}

// itemDelegate is a custom list item delegate
type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(entryItem)
	if !ok {
		return
	}

	str := fmt.Sprintf("%d. %s", index+1, i.Title())

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(str))
}

// credentialsModel asks for a username and a masked password
type credentialsModel struct {
	inputs    []textinput.Model
	focus     int
	done      bool
	cancelled bool
}

func newCredentialsModel(username string) credentialsModel {
	user := textinput.New()
	user.Placeholder = "username"
	user.Prompt = "Username: "
	user.SetValue(username)
	user.CharLimit = 64

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.Prompt = "Password: "
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'
	pass.CharLimit = 128

	m := credentialsModel{inputs: []textinput.Model{user, pass}}
	if strings.TrimSpace(username) != "" {
		m.focus = 1
	}
	m.inputs[m.focus].Focus()
	return m
}

func (m credentialsModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m credentialsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit

		case "tab", "shift+tab", "up", "down":
			m.inputs[m.focus].Blur()
			m.focus = (m.focus + 1) % len(m.inputs)
			return m, m.inputs[m.focus].Focus()

		case "enter":
			if m.focus < len(m.inputs)-1 {
				m.inputs[m.focus].Blur()
				m.focus++
				return m, m.inputs[m.focus].Focus()
			}
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m credentialsModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Log in to Keyword Intelligence"))
	sb.WriteString("\n\n")
	for _, in := range m.inputs {
		sb.WriteString("  ")
		sb.WriteString(in.View())
		sb.WriteString("\n")
	}
	sb.WriteString(helpStyle.Render("tab: next field • enter: submit • esc: cancel"))
	return sb.String()
}

// PromptCredentials asks for the username (prefilled) and password in the terminal
func PromptCredentials(username string) (string, string, error) {
	finalModel, err := tea.NewProgram(newCredentialsModel(username)).Run()
	if err != nil {
		return "", "", fmt.Errorf("error running prompt: %w", err)
	}

	result := finalModel.(credentialsModel)
	if result.cancelled {
		return "", "", ErrCancelled
	}
	return result.inputs[0].Value(), result.inputs[1].Value(), nil
}
