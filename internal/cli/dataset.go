package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/studiowebux/kwintel/internal/config"
	"github.com/studiowebux/kwintel/internal/dataset"
	"github.com/studiowebux/kwintel/internal/filter"
	"github.com/studiowebux/kwintel/internal/highlight"
	"github.com/studiowebux/kwintel/internal/types"
)

// ListOptions contains options for listing or searching the dataset
type ListOptions struct {
	Limit  int
	Topics []string
	Format string // table, json, yaml, csv
}

var markStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("220"))

// DatasetList prints saved entries, newest first
func DatasetList(ctx context.Context, env Env, store *dataset.Store, opts ListOptions) error {
	env = env.withDefaults()

	entries, err := store.List(ctx, 0)
	if err != nil {
		return err
	}
	entries = filter.ByTopic(entries, opts.Topics)
	if opts.Limit > 0 && len(entries) > opts.Limit {
		entries = entries[:opts.Limit]
	}
	return printEntries(env, entries, opts.Format)
}

// DatasetSearch prints entries fuzzy-matching query, best match first
func DatasetSearch(ctx context.Context, env Env, store *dataset.Store, query string, opts ListOptions) error {
	env = env.withDefaults()

	entries, err := store.Search(ctx, query)
	if err != nil {
		return err
	}
	entries = filter.ByTopic(entries, opts.Topics)
	if opts.Limit > 0 && len(entries) > opts.Limit {
		entries = entries[:opts.Limit]
	}
	return printEntries(env, entries, opts.Format)
}

// EntryPicker lets the user choose one entry interactively
type EntryPicker func(entries []types.DatasetEntry) (string, error)

// DatasetShow prints one entry with its keywords highlighted in the text.
// Without an id, pick chooses among all entries.
func DatasetShow(ctx context.Context, env Env, store *dataset.Store, id string, pick EntryPicker) error {
	env = env.withDefaults()

	if strings.TrimSpace(id) == "" {
		if pick == nil {
			return fmt.Errorf("an entry id is required")
		}
		entries, err := store.List(ctx, 0)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(env.Stdout, "Dataset is empty")
			return nil
		}
		if id, err = pick(entries); err != nil {
			return err
		}
	}

	entry, err := store.Get(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprint(env.Stdout, formatEntry(entry, env.Color))
	return nil
}

func formatEntry(e types.DatasetEntry, color bool) string {
	var sb strings.Builder

	field := func(name, value string) {
		sb.WriteString(paint(headingStyle, fmt.Sprintf("%-9s", name), color))
		sb.WriteString(" ")
		sb.WriteString(value)
		sb.WriteString("\n")
	}

	field("ID", e.ID)
	field("Saved", e.CreatedAt.Local().Format(time.DateTime))
	field("Source", e.Source)
	field("Topic", orNone(e.Topic))
	field("Keywords", orNone(strings.Join(e.Keywords, ", ")))
	field("Summary", orNone(e.Summary))

	if strings.TrimSpace(e.Text) != "" {
		sb.WriteString("\n")
		sb.WriteString(paint(headingStyle, "Text", color))
		sb.WriteString("\n")
		if color {
			sb.WriteString(highlight.Render(e.Text, e.Keywords, markStyle))
		} else {
			sb.WriteString(highlight.Apply(e.Text, e.Keywords, func(s string) string { return "[" + s + "]" }))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// DatasetExport writes the whole dataset as CSV to path, or to stdout when path is empty or "-"
func DatasetExport(ctx context.Context, env Env, store *dataset.Store, path string) error {
	env = env.withDefaults()

	entries, err := store.List(ctx, 0)
	if err != nil {
		return err
	}
	data, err := dataset.ToCSV(entries)
	if err != nil {
		return err
	}

	if path == "" || path == "-" {
		_, err := env.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, config.FilePermissions); err != nil {
		return fmt.Errorf("failed to write dataset export: %w", err)
	}
	fmt.Fprintf(env.Stderr, "Exported %d entries to %s\n", len(entries), path)
	return nil
}

// DatasetClear deletes every entry after confirmation. force skips the prompt.
func DatasetClear(ctx context.Context, env Env, store *dataset.Store, force bool) error {
	env = env.withDefaults()

	if !force {
		fmt.Fprint(env.Stderr, "Delete every saved analysis? [y/N]: ")
		line, _ := bufio.NewReader(env.Stdin).ReadString('\n')
		response := strings.ToLower(strings.TrimSpace(line))
		if response != "y" && response != "yes" {
			return fmt.Errorf("dataset clear cancelled by user")
		}
	}

	n, err := store.Clear(ctx)
	if err != nil {
		return err
	}
	env.Logger.Info("dataset cleared", "entries", n)
	fmt.Fprintf(env.Stdout, "Deleted %d entries\n", n)
	return nil
}

// DatasetTopics prints how many entries were saved per predicted topic
func DatasetTopics(ctx context.Context, env Env, store *dataset.Store) error {
	env = env.withDefaults()

	counts, err := store.TopicCounts(ctx)
	if err != nil {
		return err
	}
	if len(counts) == 0 {
		fmt.Fprintln(env.Stdout, "Dataset is empty")
		return nil
	}

	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{orNone(c.Topic), fmt.Sprintf("%d", c.Entries), c.LastSeen.Local().Format(time.DateTime)})
	}
	fmt.Fprintln(env.Stdout, renderTable([]string{"Topic", "Entries", "Last Seen"}, rows))
	return nil
}

func printEntries(env Env, entries []types.DatasetEntry, format string) error {
	switch strings.ToLower(format) {
	case "json":
		if entries == nil {
			entries = []types.DatasetEntry{}
		}
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal entries: %w", err)
		}
		fmt.Fprint(env.Stdout, colorize(string(data)+"\n", "json", env.Color))
	case "yaml", "yml":
		data, err := yaml.Marshal(entries)
		if err != nil {
			return fmt.Errorf("failed to marshal entries: %w", err)
		}
		fmt.Fprint(env.Stdout, colorize(string(data), "yaml", env.Color))
	case "csv":
		data, err := dataset.ToCSV(entries)
		if err != nil {
			return err
		}
		_, err = env.Stdout.Write(data)
		return err
	case "table", "":
		if len(entries) == 0 {
			fmt.Fprintln(env.Stdout, "No entries")
			return nil
		}
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{
				shortID(e.ID),
				e.CreatedAt.Local().Format(time.DateTime),
				truncate(e.Source, 24),
				orNone(e.Topic),
				truncate(strings.Join(e.Keywords, ", "), 48),
			})
		}
		fmt.Fprintln(env.Stdout, renderTable([]string{"ID", "Saved", "Source", "Topic", "Keywords"}, rows))
	default:
		return fmt.Errorf("unsupported output format: %s (use table, json, yaml or csv)", format)
	}
	return nil
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
