package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/kwintel/internal/keybinds"
	"github.com/studiowebux/kwintel/internal/types"
)

// handleKeyPress routes a key to the global bindings, then to the current mode
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()

	if action, ok := m.keybinds.Match(keybinds.ContextGlobal, key); ok {
		switch action {
		case keybinds.ActionQuitForce:
			return m.quit()
		case keybinds.ActionDismiss:
			m.center.Dismiss()
			return nil
		case keybinds.ActionHelp:
			m.toggleHelp()
			return nil
		}
	}

	switch m.mode {
	case ModeHelp:
		return m.handleHelpKeys(msg)
	case ModeLogin:
		return m.handleLoginKeys(msg)
	case ModeInput:
		return m.handleInputKeys(msg)
	case ModeResults:
		return m.handleResultsKeys(msg)
	case ModeDataset:
		return m.handleDatasetKeys(msg)
	case ModeConfirmClear:
		return m.handleConfirmKeys(msg)
	}
	return nil
}

func (m *Model) handleHelpKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "q", "?":
		m.toggleHelp()
		return nil
	}
	var cmd tea.Cmd
	m.helpView, cmd = m.helpView.Update(msg)
	return cmd
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keybinds.Match(keybinds.ContextLogin, msg.String())
	if ok {
		switch action {
		case keybinds.ActionSubmit:
			return m.login()
		case keybinds.ActionFocusNext:
			return m.focusLogin(m.loginFocus + 1)
		case keybinds.ActionFocusPrev:
			return m.focusLogin(m.loginFocus - 1)
		case keybinds.ActionQuit:
			return m.quit()
		}
	}

	var cmd tea.Cmd
	m.loginInputs[m.loginFocus], cmd = m.loginInputs[m.loginFocus].Update(msg)
	return cmd
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keybinds.Match(keybinds.ContextInput, msg.String())
	if ok {
		switch action {
		case keybinds.ActionSubmit:
			return m.submit()
		case keybinds.ActionClear:
			return m.clear()
		case keybinds.ActionToggleMode:
			return m.toggleInputKind()
		case keybinds.ActionFocusNext:
			return m.focusInput(m.inputFocus + 1)
		case keybinds.ActionFocusPrev:
			return m.focusInput(m.inputFocus - 1)
		case keybinds.ActionIncrease:
			m.adjustParam(1)
			return nil
		case keybinds.ActionDecrease:
			m.adjustParam(-1)
			return nil
		case keybinds.ActionShowResults:
			m.showResults()
			return nil
		case keybinds.ActionOpenDataset:
			return m.openDataset()
		case keybinds.ActionLogout:
			return m.logout()
		case keybinds.ActionQuit:
			return m.quit()
		}
	}

	// Parameter fields behave like number spinners
	if m.inputFocus != focusBody {
		switch msg.String() {
		case "up", "right", "+", "=", "k", "l":
			m.adjustParam(1)
		case "down", "left", "-", "j", "h":
			m.adjustParam(-1)
		}
		return nil
	}

	var cmd tea.Cmd
	if m.inputKind == types.InputText {
		m.editor, cmd = m.editor.Update(msg)
	} else {
		m.pathInput, cmd = m.pathInput.Update(msg)
		m.attached = nil
	}
	return cmd
}

func (m *Model) handleResultsKeys(msg tea.KeyMsg) tea.Cmd {
	action, complete, partial := m.keybinds.MatchMultiKey(keybinds.ContextResults, msg.String())
	if partial {
		return nil
	}
	if !complete {
		var cmd tea.Cmd
		m.resultsView, cmd = m.resultsView.Update(msg)
		return cmd
	}

	switch action {
	case keybinds.ActionNavigateUp:
		m.resultsView.LineUp(1)
	case keybinds.ActionNavigateDown:
		m.resultsView.LineDown(1)
	case keybinds.ActionPageUp:
		m.resultsView.ViewUp()
	case keybinds.ActionPageDown:
		m.resultsView.ViewDown()
	case keybinds.ActionGoToTop:
		m.resultsView.GotoTop()
	case keybinds.ActionGoToBottom:
		m.resultsView.GotoBottom()
	case keybinds.ActionExportCSV:
		m.exportResult("csv")
	case keybinds.ActionExportXLSX:
		m.exportResult("xlsx")
	case keybinds.ActionCopySummary:
		return m.copySummary()
	case keybinds.ActionCopyKeywords:
		return m.copyKeywords()
	case keybinds.ActionSaveDataset:
		return m.saveResult()
	case keybinds.ActionToggleMarks:
		m.showMarks = !m.showMarks
		m.refreshResults()
	case keybinds.ActionOpenDataset:
		return m.openDataset()
	case keybinds.ActionClear:
		return m.clear()
	case keybinds.ActionShowInput:
		return m.setMode(ModeInput)
	case keybinds.ActionHelp:
		m.toggleHelp()
	case keybinds.ActionQuit:
		return m.quit()
	}
	return nil
}

func (m *Model) handleDatasetKeys(msg tea.KeyMsg) tea.Cmd {
	if m.datasetState.GetSearchActive() {
		switch msg.String() {
		case "enter":
			m.datasetState.DeactivateSearch()
			m.searchInput.Blur()
			m.datasetState.SetSearchQuery(m.searchInput.Value())
			return m.loadDatasetCmd(m.searchInput.Value())
		case "esc":
			m.datasetState.DeactivateSearch()
			m.searchInput.Blur()
			m.searchInput.SetValue(m.datasetState.GetSearchQuery())
			return nil
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return cmd
	}

	action, complete, partial := m.keybinds.MatchMultiKey(keybinds.ContextDataset, msg.String())
	if partial || !complete {
		return nil
	}

	switch action {
	case keybinds.ActionNavigateUp:
		m.datasetState.Navigate(-1)
		m.refreshDatasetDetail()
	case keybinds.ActionNavigateDown:
		m.datasetState.Navigate(1)
		m.refreshDatasetDetail()
	case keybinds.ActionGoToTop:
		m.datasetState.SetIndex(0)
		m.refreshDatasetDetail()
	case keybinds.ActionGoToBottom:
		m.datasetState.SetIndex(len(m.datasetState.GetEntries()) - 1)
		m.refreshDatasetDetail()
	case keybinds.ActionSearch:
		m.datasetState.ActivateSearch()
		return m.searchInput.Focus()
	case keybinds.ActionDeleteEntry:
		return m.deleteEntry()
	case keybinds.ActionClearDataset:
		if len(m.datasetState.GetEntries()) > 0 {
			m.mode = ModeConfirmClear
		}
	case keybinds.ActionExportCSV:
		m.exportDataset()
	case keybinds.ActionCloseModal:
		if m.datasetState.GetSearchQuery() != "" {
			m.datasetState.ClearSearch()
			m.searchInput.SetValue("")
			return m.loadDatasetCmd("")
		}
		return m.setMode(m.returnMode)
	}
	return nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keybinds.Match(keybinds.ContextConfirm, msg.String())
	if !ok {
		return nil
	}
	switch action {
	case keybinds.ActionConfirm:
		m.mode = ModeDataset
		return m.clearDataset()
	case keybinds.ActionCancel:
		m.mode = ModeDataset
	}
	return nil
}
