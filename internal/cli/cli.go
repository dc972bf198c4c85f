// Package cli implements the non-interactive commands.
package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/studiowebux/kwintel/internal/clipboard"
	"github.com/studiowebux/kwintel/internal/config"
	"github.com/studiowebux/kwintel/internal/dataset"
	"github.com/studiowebux/kwintel/internal/executor"
	"github.com/studiowebux/kwintel/internal/logging"
	"github.com/studiowebux/kwintel/internal/notify"
	"github.com/studiowebux/kwintel/internal/types"
)

// ErrReported means the failure was already printed as a notification.
// Callers should exit non-zero without printing it again.
var ErrReported = errors.New("failure already reported")

// Env holds what the commands need from the outside world
type Env struct {
	Config    *config.Config
	Service   executor.Extractor
	Dataset   *dataset.Store // optional
	Clipboard clipboard.Writer
	Logger    *slog.Logger

	Stdin      io.Reader
	StdinPiped bool
	Stdout     io.Writer
	Stderr     io.Writer
	Color      bool // colour JSON and text output
}

// withDefaults fills unset fields so commands never deal with nils
func (e Env) withDefaults() Env {
	if e.Config == nil {
		e.Config = config.Default()
	}
	if e.Logger == nil {
		e.Logger = logging.Discard()
	}
	if e.Stdin == nil {
		e.Stdin = strings.NewReader("")
	}
	if e.Stdout == nil {
		e.Stdout = io.Discard
	}
	if e.Stderr == nil {
		e.Stderr = io.Discard
	}
	return e
}

// newCenter returns a notification center that prints every notification to stderr
func (e Env) newCenter() *notify.Center {
	center := notify.NewCenter(notify.WithTimeout(e.Config.NotificationTimeout()))
	center.Subscribe(func(n types.Notification, active bool) {
		if !active {
			return
		}
		fmt.Fprintln(e.Stderr, formatNotification(n, e.Color))
	})
	return center
}

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func formatNotification(n types.Notification, color bool) string {
	if n.Kind == types.NotifyError {
		return paint(errorStyle, "Error: "+n.Message, color)
	}
	return paint(successStyle, n.Message, color)
}

func paint(style lipgloss.Style, s string, color bool) string {
	if !color {
		return s
	}
	return style.Render(s)
}

// IsInteractive checks if stdin is a terminal (not piped)
func IsInteractive() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// IsTerminal checks if stdout is a terminal
func IsTerminal() bool {
	stat, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// formatResult renders a result as text, json or yaml
func formatResult(r *types.ExtractionResult, format string, color bool) (string, error) {
	if r == nil {
		r = &types.ExtractionResult{}
	}

	switch strings.ToLower(format) {
	case "json":
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal result: %w", err)
		}
		return colorize(string(data)+"\n", "json", color), nil

	case "yaml", "yml":
		data, err := yaml.Marshal(r)
		if err != nil {
			return "", fmt.Errorf("failed to marshal result: %w", err)
		}
		return colorize(string(data), "yaml", color), nil

	case "text", "":
		return formatText(r, color), nil

	default:
		return "", fmt.Errorf("unsupported output format: %s (use text, json or yaml)", format)
	}
}

func formatText(r *types.ExtractionResult, color bool) string {
	var sb strings.Builder

	section := func(title string) {
		sb.WriteString(paint(headingStyle, title, color))
		sb.WriteString("\n")
	}
	list := func(items []string) {
		if len(items) == 0 {
			sb.WriteString(paint(dimStyle, "  (none)", color))
			sb.WriteString("\n")
			return
		}
		for _, item := range items {
			sb.WriteString("  - ")
			sb.WriteString(item)
			sb.WriteString("\n")
		}
	}

	section("Predicted Topic")
	if topic := r.PredictedTopic(); topic != "" {
		sb.WriteString("  " + topic + "\n")
	} else {
		sb.WriteString(paint(dimStyle, "  (none)", color) + "\n")
	}
	if len(r.Topic) > 1 {
		sb.WriteString(paint(dimStyle, "  ranking: "+strings.Join(r.Topic, " > "), color) + "\n")
	}

	sb.WriteString("\n")
	section("Summary")
	if s := strings.TrimSpace(r.Summary); s != "" {
		sb.WriteString("  " + s + "\n")
	} else {
		sb.WriteString(paint(dimStyle, "  (none)", color) + "\n")
	}

	sb.WriteString("\n")
	section("Rule-Based Keywords")
	list(r.RuleKeywords)

	sb.WriteString("\n")
	section("ML-Based Keywords")
	list(r.MLKeywords)

	sb.WriteString("\n")
	section("Phrases")
	list(r.Phrases)

	return sb.String()
}

// colorize highlights source with chroma when color is on.
// Highlighting failures fall back to the plain text.
func colorize(source, lexer string, color bool) string {
	if !color {
		return source
	}
	var buf bytes.Buffer
	if err := quick.Highlight(&buf, source, lexer, "terminal256", "monokai"); err != nil {
		return source
	}
	return buf.String()
}

// looksLikeJSON reports whether s is a JSON document (used for query output)
func looksLikeJSON(s string) bool {
	s = strings.TrimSpace(s)
	return (strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")) && json.Valid([]byte(s))
}
