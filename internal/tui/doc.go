/*
Package tui implements the terminal user interface for kwintel.

# Architecture

The TUI follows the Bubble Tea framework's Model-Update-View pattern:
  - Model: Maintains all application state
  - Update: Processes messages and returns commands
  - View: Renders the current state to the terminal

# Key Components

  - model.go: Core state, modes and message dispatch
  - init.go: Construction from Options and the program entry point
  - keys.go: Keyboard input handling and keybind routing
  - actions.go: Submissions, exports, clipboard and dataset side effects
  - messages.go: Commands that run off the event loop and the messages they return
  - render.go: View rendering for every mode

# State Management

Submission state and the current result belong to controller.Controller.
The single active notification belongs to notify.Center; the status bar reads
it on every render, and a listener wakes the program when it changes or expires.
The remaining UI state lives on the Model, plus two thread-safe objects
(see sync_state.go):
  - RequestState: cancel functions of submissions whose call has not returned
  - DatasetState: dataset browser entries, selection and search query

# Modes

  - ModeLogin: demo sign-in form, shown until a user is stored
  - ModeInput: text editor or PDF path, plus the numeric parameters
  - ModeResults: topic, summary, keyword table, phrases, highlighted text
  - ModeDataset: saved analyses with fuzzy search
  - ModeConfirmClear: confirmation before deleting every saved analysis
  - ModeHelp: keybindings of the mode it was opened from

# Threading Model

The TUI runs in a single goroutine (Bubble Tea's event loop). Network calls,
clipboard writes and dataset queries run as tea.Cmd functions and report back
as messages. Outcomes of superseded submissions are dropped by the controller.

# Example Usage

	err := tui.Run(ctx, tui.Options{
		Config:   cfg,
		Service:  client,
		Pinger:   client,
		Sessions: sessions,
		Dataset:  store,
	})
*/
package tui
