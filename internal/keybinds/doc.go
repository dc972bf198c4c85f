/*
Package keybinds maps key presses to actions per view.

# Contexts

  - global: available everywhere (ctrl+c, notification dismiss, help)
  - login: demo login form
  - input: text editor and parameter fields
  - results: results viewer
  - dataset: saved analyses browser
  - confirm: yes/no dialogs

A key bound in a view shadows the same key in global. The input view only
binds modified keys so typing into the editor is never intercepted.

# Configuration

Overrides live in the "keybinds" section of the config file:

	keybinds:
	  results:
	    e: export_csv
	    y: copy_keywords
	  input:
	    ctrl+enter: submit

Unknown contexts or actions are rejected when the config is applied.

# Multi-key sequences

Keys bound to go_to_top_prepare start a sequence; MatchMultiKey resolves
"gg" on the second press.
*/
package keybinds
