package keybinds

// NewDefaultRegistry creates a registry with all default keybindings
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	registerGlobalBindings(r)
	registerLoginBindings(r)
	registerInputBindings(r)
	registerResultsBindings(r)
	registerDatasetBindings(r)
	registerConfirmBindings(r)

	return r
}

// registerGlobalBindings sets up bindings available in all views
func registerGlobalBindings(r *Registry) {
	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)
	r.Register(ContextGlobal, "ctrl+n", ActionDismiss)
	r.Register(ContextGlobal, "f1", ActionHelp)
}

func registerLoginBindings(r *Registry) {
	r.Register(ContextLogin, "enter", ActionSubmit)
	r.RegisterMultiple(ContextLogin, []string{"tab", "down"}, ActionFocusNext)
	r.RegisterMultiple(ContextLogin, []string{"shift+tab", "up"}, ActionFocusPrev)
	r.Register(ContextLogin, "esc", ActionQuit)
}

// registerInputBindings only uses modified keys so typing is never intercepted
func registerInputBindings(r *Registry) {
	r.RegisterMultiple(ContextInput, []string{"ctrl+s", "ctrl+r"}, ActionSubmit)
	r.Register(ContextInput, "ctrl+l", ActionClear)
	r.Register(ContextInput, "ctrl+o", ActionToggleMode)
	r.Register(ContextInput, "tab", ActionFocusNext)
	r.Register(ContextInput, "shift+tab", ActionFocusPrev)
	r.Register(ContextInput, "ctrl+up", ActionIncrease)
	r.Register(ContextInput, "ctrl+down", ActionDecrease)
	r.Register(ContextInput, "ctrl+t", ActionShowResults)
	r.Register(ContextInput, "ctrl+d", ActionOpenDataset)
	r.Register(ContextInput, "ctrl+x", ActionLogout)
	r.Register(ContextInput, "esc", ActionQuit)
}

func registerResultsBindings(r *Registry) {
	r.RegisterMultiple(ContextResults, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextResults, []string{"down", "j"}, ActionNavigateDown)
	r.Register(ContextResults, "pgup", ActionPageUp)
	r.Register(ContextResults, "pgdown", ActionPageDown)
	r.Register(ContextResults, "g", ActionGoToTopPrepare)
	r.Register(ContextResults, "gg", ActionGoToTop)
	r.RegisterMultiple(ContextResults, []string{"G", "end"}, ActionGoToBottom)
	r.Register(ContextResults, "home", ActionGoToTop)

	r.Register(ContextResults, "e", ActionExportCSV)
	r.Register(ContextResults, "E", ActionExportXLSX)
	r.Register(ContextResults, "c", ActionCopySummary)
	r.Register(ContextResults, "C", ActionCopyKeywords)
	r.Register(ContextResults, "s", ActionSaveDataset)
	r.Register(ContextResults, "h", ActionToggleMarks)
	r.Register(ContextResults, "D", ActionOpenDataset)
	r.Register(ContextResults, "x", ActionClear)
	r.RegisterMultiple(ContextResults, []string{"esc", "i", "tab"}, ActionShowInput)
	r.Register(ContextResults, "?", ActionHelp)
	r.Register(ContextResults, "q", ActionQuit)
}

func registerDatasetBindings(r *Registry) {
	r.RegisterMultiple(ContextDataset, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextDataset, []string{"down", "j"}, ActionNavigateDown)
	r.Register(ContextDataset, "g", ActionGoToTopPrepare)
	r.Register(ContextDataset, "gg", ActionGoToTop)
	r.Register(ContextDataset, "G", ActionGoToBottom)
	r.Register(ContextDataset, "/", ActionSearch)
	r.Register(ContextDataset, "d", ActionDeleteEntry)
	r.Register(ContextDataset, "C", ActionClearDataset)
	r.Register(ContextDataset, "e", ActionExportCSV)
	r.RegisterMultiple(ContextDataset, []string{"esc", "q"}, ActionCloseModal)
}

func registerConfirmBindings(r *Registry) {
	r.RegisterMultiple(ContextConfirm, []string{"y", "Y", "enter"}, ActionConfirm)
	r.RegisterMultiple(ContextConfirm, []string{"n", "N", "esc"}, ActionCancel)
}
