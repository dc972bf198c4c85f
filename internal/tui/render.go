package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/studiowebux/kwintel/internal/executor"
	"github.com/studiowebux/kwintel/internal/export"
	"github.com/studiowebux/kwintel/internal/highlight"
	"github.com/studiowebux/kwintel/internal/keybinds"
	"github.com/studiowebux/kwintel/internal/types"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"}
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"}
	colorBlue   = lipgloss.AdaptiveColor{Light: "#00008b", Dark: "#5f87ff"}
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"}
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleHeading = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)

	styleAccent = lipgloss.NewStyle().
			Foreground(colorCyan)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)

	styleMark = lipgloss.NewStyle().
			Bold(true).
			Background(lipgloss.AdaptiveColor{Light: "#fff3b0", Dark: "#5f5f00"})

	styleBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)
)

// actionLabels describe actions in the help screen
var actionLabels = map[keybinds.Action]string{
	keybinds.ActionQuit:           "Quit",
	keybinds.ActionQuitForce:      "Quit immediately",
	keybinds.ActionHelp:           "Toggle help",
	keybinds.ActionDismiss:        "Dismiss notification",
	keybinds.ActionLogout:         "Log out",
	keybinds.ActionFocusNext:      "Next field",
	keybinds.ActionFocusPrev:      "Previous field",
	keybinds.ActionSubmit:         "Submit",
	keybinds.ActionClear:          "Clear input and result",
	keybinds.ActionToggleMode:     "Switch text / file input",
	keybinds.ActionIncrease:       "Increase parameter",
	keybinds.ActionDecrease:       "Decrease parameter",
	keybinds.ActionShowResults:    "Show results",
	keybinds.ActionShowInput:      "Back to input",
	keybinds.ActionExportCSV:      "Export CSV",
	keybinds.ActionExportXLSX:     "Export Excel workbook",
	keybinds.ActionCopySummary:    "Copy summary",
	keybinds.ActionCopyKeywords:   "Copy keywords",
	keybinds.ActionSaveDataset:    "Save to dataset",
	keybinds.ActionToggleMarks:    "Toggle keyword highlights",
	keybinds.ActionOpenDataset:    "Open dataset",
	keybinds.ActionSearch:         "Search",
	keybinds.ActionDeleteEntry:    "Delete entry",
	keybinds.ActionClearDataset:   "Delete all entries",
	keybinds.ActionNavigateUp:     "Up",
	keybinds.ActionNavigateDown:   "Down",
	keybinds.ActionPageUp:         "Page up",
	keybinds.ActionPageDown:       "Page down",
	keybinds.ActionGoToTop:        "Go to top",
	keybinds.ActionGoToTopPrepare: "",
	keybinds.ActionGoToBottom:     "Go to bottom",
	keybinds.ActionCloseModal:     "Close",
	keybinds.ActionConfirm:        "Confirm",
	keybinds.ActionCancel:         "Cancel",
}

// render builds the full screen: header, mode body, footer
func (m *Model) render() string {
	if m.mode == ModeHelp {
		return m.renderHelp()
	}

	var body string
	switch m.mode {
	case ModeLogin:
		body = m.renderLogin()
	case ModeInput:
		body = m.renderInput()
	case ModeResults:
		body = m.renderResults()
	case ModeDataset:
		body = m.renderDataset()
	case ModeConfirmClear:
		body = m.renderConfirm()
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderStatusBar())
}

func (m *Model) renderHeader() string {
	left := styleTitle.Render("kwintel") + styleSubtle.Render(" · keyword extraction")

	var right []string
	if s, err := m.sessions.Current(); err == nil {
		right = append(right, styleSubtle.Render("user ")+s.Username)
	}
	switch {
	case m.serviceErr != "":
		right = append(right, styleError.Render("● service: "+m.serviceErr))
	case m.serviceBanner != "":
		right = append(right, styleSuccess.Render("● service online"))
	default:
		right = append(right, styleSubtle.Render("○ service unknown"))
	}

	return spread(left, strings.Join(right, "  "), m.layoutWidth()) + "\n"
}

// renderStatusBar shows the active notification, or key hints when there is none
func (m *Model) renderStatusBar() string {
	left := styleSubtle.Render(m.mode.String())

	var right string
	if n, ok := m.center.Current(); ok {
		if n.Kind == types.NotifyError {
			right = styleError.Render("✗ " + n.Message)
		} else {
			right = styleSuccess.Render("✓ " + n.Message)
		}
	} else {
		right = styleSubtle.Render(m.hints())
	}

	return spread(left, right, m.layoutWidth())
}

func (m *Model) hints() string {
	ctx := m.mode.context()
	hint := func(action keybinds.Action, label string) string {
		return m.keybinds.KeyString(ctx, action) + ": " + label
	}
	global := m.keybinds.KeyString(keybinds.ContextGlobal, keybinds.ActionHelp) + ": help"

	switch m.mode {
	case ModeLogin:
		return strings.Join([]string{hint(keybinds.ActionSubmit, "log in"), hint(keybinds.ActionFocusNext, "next field"), global}, " | ")
	case ModeInput:
		return strings.Join([]string{hint(keybinds.ActionSubmit, "analyze"), hint(keybinds.ActionToggleMode, "text/file"), hint(keybinds.ActionOpenDataset, "dataset"), global}, " | ")
	case ModeResults:
		return strings.Join([]string{hint(keybinds.ActionExportCSV, "csv"), hint(keybinds.ActionCopySummary, "copy summary"), hint(keybinds.ActionToggleMarks, "highlight"), hint(keybinds.ActionShowInput, "back"), global}, " | ")
	case ModeDataset:
		return strings.Join([]string{hint(keybinds.ActionSearch, "search"), hint(keybinds.ActionDeleteEntry, "delete"), hint(keybinds.ActionExportCSV, "export"), hint(keybinds.ActionCloseModal, "close")}, " | ")
	}
	return global
}

func (m *Model) renderLogin() string {
	var sb strings.Builder
	sb.WriteString(styleHeading.Render("Sign in"))
	sb.WriteString("\n")
	sb.WriteString(styleSubtle.Render("Demo login: any non-empty username and password are accepted."))
	sb.WriteString("\n\n")
	for _, in := range m.loginInputs {
		sb.WriteString(in.View())
		sb.WriteString("\n")
	}

	box := styleBox.BorderForeground(colorBlue).Render(sb.String())
	return lipgloss.Place(m.layoutWidth(), m.bodyHeight(), lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) renderInput() string {
	var sb strings.Builder

	sb.WriteString(m.renderKindTabs())
	sb.WriteString("\n\n")

	if m.inputKind == types.InputText {
		sb.WriteString(m.editor.View())
		sb.WriteString("\n")
		n := len([]rune(m.editor.Value()))
		sb.WriteString(styleSubtle.Render(fmt.Sprintf("%d characters", n)))
	} else {
		sb.WriteString(m.pathInput.View())
		sb.WriteString("\n\n")
		sb.WriteString(m.renderAttachment())
	}
	sb.WriteString("\n\n")

	sb.WriteString(m.renderParams())
	sb.WriteString("\n\n")

	if m.controller.State() == types.StateSubmitting {
		sb.WriteString(m.spinner.View() + " " + styleAccent.Render("Analyzing..."))
	} else if m.controller.Result() != nil {
		sb.WriteString(styleSubtle.Render("Last result available: " +
			m.keybinds.KeyString(keybinds.ContextInput, keybinds.ActionShowResults) + " to view"))
	}

	return lipgloss.NewStyle().Height(m.bodyHeight()).Render(sb.String())
}

func (m *Model) renderKindTabs() string {
	tab := func(label string, active bool) string {
		if active {
			return styleSelected.Bold(true).Padding(0, 1).Render(label)
		}
		return styleSubtle.Padding(0, 1).Render(label)
	}
	return tab("Text", m.inputKind == types.InputText) + " " + tab("PDF file", m.inputKind == types.InputFile)
}

func (m *Model) renderAttachment() string {
	a := m.attached
	if a == nil {
		return styleSubtle.Render("No file attached. Leave the field to load it.")
	}
	size := executor.FormatSize(a.info.Size)
	if a.err != nil {
		return styleWarning.Render(fmt.Sprintf("%s (%s): %v", a.info.Name, size, a.err))
	}
	return styleSuccess.Render(fmt.Sprintf("%s (%s, %d pages)", a.info.Name, size, a.info.Pages))
}

func (m *Model) renderParams() string {
	field := func(focus int, label string, value int) string {
		text := fmt.Sprintf("%s ‹ %d ›", label, value)
		if m.inputFocus == focus {
			return styleSelected.Padding(0, 1).Render(text)
		}
		return lipgloss.NewStyle().Padding(0, 1).Render(text)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		field(focusTopN, "Keywords", m.params.TopN),
		"  ",
		field(focusNgramMin, "N-gram min", m.params.NgramMin),
		"  ",
		field(focusNgramMax, "N-gram max", m.params.NgramMax),
	)
}

func (m *Model) renderResults() string {
	return m.resultsView.View()
}

// refreshResults rebuilds the results viewport from the stored result
func (m *Model) refreshResults() {
	m.resultsView.SetContent(m.resultsContent())
}

func (m *Model) resultsContent() string {
	r := m.controller.Result()
	if r == nil {
		return styleSubtle.Render("No results yet.")
	}

	var sb strings.Builder
	section := func(title string) {
		sb.WriteString(styleHeading.Render(title))
		sb.WriteString("\n")
	}

	section("Predicted Topic")
	if topic := r.PredictedTopic(); topic != "" {
		sb.WriteString(styleAccent.Bold(true).Render(topic))
		if len(r.Topic) > 1 {
			sb.WriteString(styleSubtle.Render("  ranking: " + strings.Join(r.Topic, " > ")))
		}
	} else {
		sb.WriteString(styleSubtle.Render("(none)"))
	}
	sb.WriteString("\n\n")

	section("Summary")
	if strings.TrimSpace(r.Summary) != "" {
		sb.WriteString(lipgloss.NewStyle().Width(m.contentWidth()).Render(r.Summary))
	} else {
		sb.WriteString(styleSubtle.Render("(none)"))
	}
	sb.WriteString("\n\n")

	section("Keywords")
	sb.WriteString(keywordTable(r))
	sb.WriteString("\n\n")

	section("Phrases")
	if len(r.Phrases) == 0 {
		sb.WriteString(styleSubtle.Render("(none)"))
		sb.WriteString("\n")
	}
	for _, p := range r.Phrases {
		sb.WriteString("  • " + p + "\n")
	}

	if m.showMarks {
		sb.WriteString("\n")
		sb.WriteString(m.renderMarkedText(r))
	}
	return sb.String()
}

func keywordTable(r *types.ExtractionResult) string {
	rows := export.Rows(r)
	if len(rows) == 0 {
		return styleSubtle.Render("(none)")
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleSubtle).
		Headers(export.Header...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeading.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		String()
}

// renderMarkedText shows the submitted text with every keyword highlighted
func (m *Model) renderMarkedText(r *types.ExtractionResult) string {
	var sb strings.Builder
	sb.WriteString(styleHeading.Render("Highlighted Text"))
	sb.WriteString("\n")

	if strings.TrimSpace(m.submittedText) == "" {
		sb.WriteString(styleSubtle.Render("(text not available)"))
		return sb.String()
	}

	keywords := append(append([]string{}, r.RuleKeywords...), r.MLKeywords...)
	counts := highlight.Counts(m.submittedText, keywords)
	if len(counts) > 0 {
		sb.WriteString(styleSubtle.Render(formatCounts(counts)))
		sb.WriteString("\n\n")
	}

	marked := highlight.Render(m.submittedText, keywords, styleMark)
	sb.WriteString(lipgloss.NewStyle().Width(m.contentWidth()).Render(marked))
	return sb.String()
}

func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s ×%d", k, counts[k])
	}
	return strings.Join(parts, "  ")
}

func (m *Model) renderDataset() string {
	listWidth := m.datasetListWidth()
	height := m.bodyHeight()

	var header string
	switch {
	case m.datasetState.GetSearchActive():
		header = m.searchInput.View()
	case m.datasetState.GetSearchQuery() != "":
		header = styleWarning.Render("Search: " + m.datasetState.GetSearchQuery())
	default:
		header = styleHeading.Render("Dataset")
	}
	entries := m.datasetState.GetEntries()
	header += styleSubtle.Render(fmt.Sprintf("  %d entries", len(entries)))

	list := lipgloss.NewStyle().
		Width(listWidth).
		Height(height - 2).
		Render(m.renderEntryList(entries, listWidth, height-2))

	detail := styleBox.
		Width(m.layoutWidth() - listWidth - 4).
		Height(height - 4).
		Render(m.datasetView.View())

	return header + "\n\n" + lipgloss.JoinHorizontal(lipgloss.Top, list, " ", detail)
}

func (m *Model) renderEntryList(entries []types.DatasetEntry, width, height int) string {
	if len(entries) == 0 {
		return styleSubtle.Render("No saved analyses.")
	}

	idx := m.datasetState.GetIndex()
	start := 0
	if height > 0 && idx >= height {
		start = idx - height + 1
	}
	end := min(len(entries), start+max(height, 1))

	var lines []string
	for i := start; i < end; i++ {
		e := entries[i]
		line := fmt.Sprintf("%s  %s  %s",
			e.CreatedAt.Local().Format("01-02 15:04"),
			truncate(orDash(e.Topic), 12),
			e.Source,
		)
		line = truncate(line, width-2)
		if i == idx {
			lines = append(lines, styleSelected.Width(width).Render("▸ "+line))
		} else {
			lines = append(lines, "  "+line)
		}
	}
	return strings.Join(lines, "\n")
}

// refreshDatasetDetail shows the selected entry in the detail pane
func (m *Model) refreshDatasetDetail() {
	e := m.datasetState.GetCurrentEntry()
	if e == nil {
		m.datasetView.SetContent(styleSubtle.Render("Nothing selected."))
		return
	}

	var sb strings.Builder
	field := func(name, value string) {
		sb.WriteString(styleHeading.Render(fmt.Sprintf("%-9s", name)))
		sb.WriteString(" ")
		sb.WriteString(value)
		sb.WriteString("\n")
	}
	field("ID", e.ID)
	field("Saved", e.CreatedAt.Local().Format(time.DateTime))
	field("Source", e.Source)
	field("Topic", orDash(e.Topic))
	field("Keywords", orDash(strings.Join(e.Keywords, ", ")))

	width := m.datasetView.Width
	if strings.TrimSpace(e.Summary) != "" {
		sb.WriteString("\n")
		sb.WriteString(styleHeading.Render("Summary"))
		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().Width(width).Render(e.Summary))
		sb.WriteString("\n")
	}
	if strings.TrimSpace(e.Text) != "" {
		sb.WriteString("\n")
		sb.WriteString(styleHeading.Render("Text"))
		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().Width(width).Render(highlight.Render(e.Text, e.Keywords, styleMark)))
	}

	m.datasetView.SetContent(sb.String())
	m.datasetView.GotoTop()
}

func (m *Model) renderConfirm() string {
	n := len(m.datasetState.GetEntries())
	content := styleWarning.Bold(true).Render("Delete all saved analyses?") + "\n\n" +
		fmt.Sprintf("%d entries will be removed. This cannot be undone.", n) + "\n\n" +
		styleSubtle.Render(m.keybinds.KeyString(keybinds.ContextConfirm, keybinds.ActionConfirm)+": confirm | "+
			m.keybinds.KeyString(keybinds.ContextConfirm, keybinds.ActionCancel)+": cancel")

	box := styleBox.BorderForeground(colorRed).Padding(1, 2).Render(content)
	return lipgloss.Place(m.layoutWidth(), m.bodyHeight(), lipgloss.Center, lipgloss.Center, box)
}

// renderHelp renders the help screen
func (m *Model) renderHelp() string {
	title := styleTitle.Render("Keyboard Shortcuts")
	footer := "↑/↓ j/k: scroll | ESC/?: close"
	content := title + "\n\n" + m.helpView.View() + "\n\n" + styleSubtle.Render(footer)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBlue).
		Padding(1, 2).
		Render(content)

	return lipgloss.Place(m.layoutWidth(), max(m.height, 1), lipgloss.Center, lipgloss.Center, box)
}

// renderHelpContent lists the bindings of a mode, grouped by context
func (m *Model) renderHelpContent(mode Mode) string {
	var sb strings.Builder
	current := keybinds.Context("")
	for _, b := range m.keybinds.ListBindings(mode.context()) {
		label, ok := actionLabels[b.Action]
		if !ok {
			label = string(b.Action)
		}
		if label == "" {
			continue
		}
		if b.Context != current {
			if current != "" {
				sb.WriteString("\n")
			}
			sb.WriteString(styleHeading.Render(strings.ToUpper(string(b.Context))))
			sb.WriteString("\n")
			current = b.Context
		}
		sb.WriteString(fmt.Sprintf("  %-12s %s\n", b.Key, label))
	}
	return sb.String()
}

// updateLayout resizes widgets after a window size change
func (m *Model) updateLayout() {
	w := m.layoutWidth()
	h := m.bodyHeight()

	m.editor.SetWidth(max(w-2, 20))
	// tabs, counter, params, status lines
	m.editor.SetHeight(max(h-10, 3))
	m.pathInput.Width = max(w-10, 20)
	m.searchInput.Width = max(m.datasetListWidth()-4, 10)

	m.resultsView.Width = w
	m.resultsView.Height = max(h, 1)
	m.refreshResults()

	m.datasetView.Width = max(w-m.datasetListWidth()-8, 10)
	m.datasetView.Height = max(h-6, 1)
	m.refreshDatasetDetail()

	m.helpView.Width = max(w-10, 20)
	m.helpView.Height = max(m.height-10, 3)
}

func (m *Model) layoutWidth() int {
	if m.width <= 0 {
		return DefaultWidth
	}
	return m.width
}

// bodyHeight is the height between header and status bar
func (m *Model) bodyHeight() int {
	h := m.height
	if h <= 0 {
		h = DefaultHeight
	}
	return max(h-HeaderLines-StatusLines, 1)
}

func (m *Model) contentWidth() int {
	return max(m.layoutWidth()-2, 20)
}

func (m *Model) datasetListWidth() int {
	return max(DatasetListMinWidth, m.layoutWidth()*DatasetListPercent/100)
}

// spread places left and right at the edges of a line
func spread(left, right string, width int) string {
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
