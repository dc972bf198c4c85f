package keybinds

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the view in which keybindings are active
type Context string

const (
	ContextGlobal  Context = "global"  // Available everywhere
	ContextLogin   Context = "login"   // Demo login form
	ContextInput   Context = "input"   // Text editor and parameter fields
	ContextResults Context = "results" // Results viewer
	ContextDataset Context = "dataset" // Saved analyses browser
	ContextConfirm Context = "confirm" // Confirmation dialogs
)

const (
	// Global actions
	ActionQuit      Action = "quit"       // Quit application
	ActionQuitForce Action = "quit_force" // Force quit (ctrl+c)
	ActionHelp      Action = "help"       // Toggle help
	ActionDismiss   Action = "dismiss"    // Dismiss the notification
	ActionLogout    Action = "logout"     // Clear the demo login

	// Focus
	ActionFocusNext Action = "focus_next" // Next field
	ActionFocusPrev Action = "focus_prev" // Previous field

	// Input
	ActionSubmit     Action = "submit"      // Send the submission
	ActionClear      Action = "clear"       // Clear input and result
	ActionToggleMode Action = "toggle_mode" // Switch between text and file input
	ActionIncrease   Action = "increase"    // Increase the focused parameter
	ActionDecrease   Action = "decrease"    // Decrease the focused parameter

	// Results
	ActionShowResults  Action = "show_results"  // Switch to the results view
	ActionShowInput    Action = "show_input"    // Switch back to the input view
	ActionExportCSV    Action = "export_csv"    // Write keywords.csv
	ActionExportXLSX   Action = "export_xlsx"   // Write keywords.xlsx
	ActionCopySummary  Action = "copy_summary"  // Copy the summary
	ActionCopyKeywords Action = "copy_keywords" // Copy all keywords
	ActionSaveDataset  Action = "save_dataset"  // Save the analysis
	ActionToggleMarks  Action = "toggle_marks"  // Toggle highlighted text

	// Dataset
	ActionOpenDataset  Action = "open_dataset"  // Open the saved analyses browser
	ActionSearch       Action = "search"        // Fuzzy search entries
	ActionDeleteEntry  Action = "delete_entry"  // Delete the selected entry
	ActionClearDataset Action = "clear_dataset" // Delete every entry

	// Navigation
	ActionNavigateUp     Action = "navigate_up"       // Move up one item
	ActionNavigateDown   Action = "navigate_down"     // Move down one item
	ActionPageUp         Action = "page_up"           // Move up one page
	ActionPageDown       Action = "page_down"         // Move down one page
	ActionGoToTop        Action = "go_to_top"         // Go to top
	ActionGoToTopPrepare Action = "go_to_top_prepare" // First 'g' in 'gg' sequence
	ActionGoToBottom     Action = "go_to_bottom"      // Go to bottom

	// Dialogs
	ActionCloseModal Action = "close_modal" // Close the current view
	ActionConfirm    Action = "confirm"     // Confirm action (y/Y)
	ActionCancel     Action = "cancel"      // Cancel action (n/N)
)

// KnownActions lists every action a binding may target
var KnownActions = map[Action]bool{
	ActionQuit: true, ActionQuitForce: true, ActionHelp: true, ActionDismiss: true, ActionLogout: true,
	ActionFocusNext: true, ActionFocusPrev: true,
	ActionSubmit: true, ActionClear: true, ActionToggleMode: true, ActionIncrease: true, ActionDecrease: true,
	ActionShowResults: true, ActionShowInput: true, ActionExportCSV: true, ActionExportXLSX: true,
	ActionCopySummary: true, ActionCopyKeywords: true, ActionSaveDataset: true, ActionToggleMarks: true,
	ActionOpenDataset: true, ActionSearch: true, ActionDeleteEntry: true, ActionClearDataset: true,
	ActionNavigateUp: true, ActionNavigateDown: true, ActionPageUp: true, ActionPageDown: true,
	ActionGoToTop: true, ActionGoToTopPrepare: true, ActionGoToBottom: true,
	ActionCloseModal: true, ActionConfirm: true, ActionCancel: true,
}

// KnownContexts lists the contexts a config may bind in
var KnownContexts = map[Context]bool{
	ContextGlobal: true, ContextLogin: true, ContextInput: true,
	ContextResults: true, ContextDataset: true, ContextConfirm: true,
}
