package tui

// UI Layout Constants

const (
	// Fallbacks before the first window size message
	DefaultWidth  = 80
	DefaultHeight = 24

	HeaderLines = 2 // Title line + blank line
	StatusLines = 1

	// Dataset browser list pane
	DatasetListMinWidth = 36
	DatasetListPercent  = 40
)
