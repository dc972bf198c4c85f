// Package dataset stores saved analyses in SQLite.
package dataset

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sahilm/fuzzy"

	"github.com/studiowebux/kwintel/internal/clock"
	"github.com/studiowebux/kwintel/internal/migrations"
	"github.com/studiowebux/kwintel/internal/types"
)

// ErrNotFound is returned when no entry matches an id
var ErrNotFound = errors.New("dataset entry not found")

// timeLayout sorts lexically in chronological order
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// CSVHeader is the first row of a dataset export
var CSVHeader = []string{"id", "created_at", "source", "text", "summary", "topic", "keywords"}

// TopicCount is the number of saved entries per predicted topic
type TopicCount struct {
	Topic    string
	Entries  int
	LastSeen time.Time
}

// Store is the SQLite-backed dataset
type Store struct {
	db    *sql.DB
	clock clock.Clock
}

// Open opens (and migrates) the dataset database at path
func Open(path string, c clock.Clock) (*Store, error) {
	if c == nil {
		c = clock.SystemClock{}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create dataset directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to dataset database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db, clock: c}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores an analysis. The ML keywords are kept as the entry keywords.
func (s *Store) Save(ctx context.Context, source, text string, r *types.ExtractionResult) (types.DatasetEntry, error) {
	if r == nil {
		return types.DatasetEntry{}, errors.New("no result to save")
	}

	entry := types.DatasetEntry{
		ID:        uuid.NewString(),
		CreatedAt: s.clock.Now().UTC(),
		Source:    source,
		Text:      text,
		Summary:   r.Summary,
		Topic:     r.PredictedTopic(),
		Keywords:  nonNil(r.MLKeywords),
	}

	keywords, err := json.Marshal(entry.Keywords)
	if err != nil {
		return types.DatasetEntry{}, fmt.Errorf("failed to marshal keywords: %w", err)
	}
	ruleKeywords, err := json.Marshal(nonNil(r.RuleKeywords))
	if err != nil {
		return types.DatasetEntry{}, fmt.Errorf("failed to marshal rule keywords: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO dataset (id, created_at, source, text, summary, topic, keywords, rule_keywords)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.ID,
		entry.CreatedAt.Format(timeLayout),
		entry.Source,
		entry.Text,
		entry.Summary,
		entry.Topic,
		string(keywords),
		string(ruleKeywords),
	)
	if err != nil {
		return types.DatasetEntry{}, fmt.Errorf("failed to save dataset entry: %w", err)
	}

	return entry, nil
}

const selectColumns = `SELECT id, created_at, source, text, summary, topic, keywords FROM dataset`

// List returns entries newest first. A non-positive limit returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]types.DatasetEntry, error) {
	query := selectColumns + ` ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Get returns the entry with the given id, or a unique id prefix
func (s *Store) Get(ctx context.Context, id string) (types.DatasetEntry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return types.DatasetEntry{}, fmt.Errorf("%w: empty id", ErrNotFound)
	}

	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE id LIKE ? || '%' LIMIT 2`, id)
	if err != nil {
		return types.DatasetEntry{}, fmt.Errorf("failed to load dataset entry: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return types.DatasetEntry{}, err
	}
	switch len(entries) {
	case 0:
		return types.DatasetEntry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return entries[0], nil
	default:
		return types.DatasetEntry{}, fmt.Errorf("id prefix %q matches more than one entry", id)
	}
}

// Delete removes one entry
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM dataset WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dataset entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Clear removes every entry and returns how many were deleted
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM dataset`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear dataset: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// TopicCounts summarizes saved entries per topic, most frequent first
func (s *Store) TopicCounts(ctx context.Context) ([]TopicCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT topic, entries, last_seen FROM dataset_topics
		ORDER BY entries DESC, topic ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load topic counts: %w", err)
	}
	defer rows.Close()

	var counts []TopicCount
	for rows.Next() {
		var tc TopicCount
		var lastSeen string
		if err := rows.Scan(&tc.Topic, &tc.Entries, &lastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan topic count: %w", err)
		}
		tc.LastSeen = parseTime(lastSeen)
		counts = append(counts, tc)
	}
	return counts, rows.Err()
}

// searchSource adapts entries to fuzzy.Source
type searchSource []types.DatasetEntry

func (s searchSource) String(i int) string {
	e := s[i]
	return strings.Join([]string{e.Source, e.Topic, strings.Join(e.Keywords, " "), e.Summary}, " ")
}

func (s searchSource) Len() int {
	return len(s)
}

// Search fuzzy-matches the query against source, topic, keywords and summary.
// Results are ordered best match first. An empty query lists everything.
func (s *Store) Search(ctx context.Context, query string) ([]types.DatasetEntry, error) {
	entries, err := s.List(ctx, 0)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return entries, nil
	}

	matches := fuzzy.FindFrom(query, searchSource(entries))
	out := make([]types.DatasetEntry, 0, len(matches))
	for _, m := range matches {
		out = append(out, entries[m.Index])
	}
	return out, nil
}

// ToCSV renders entries as CSV with keywords joined by "; "
func ToCSV(entries []types.DatasetEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(CSVHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, e := range entries {
		err := w.Write([]string{
			e.ID,
			e.CreatedAt.Format(time.RFC3339),
			e.Source,
			e.Text,
			e.Summary,
			e.Topic,
			strings.Join(e.Keywords, "; "),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to write entry %s: %w", e.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func scanEntries(rows *sql.Rows) ([]types.DatasetEntry, error) {
	var entries []types.DatasetEntry

	for rows.Next() {
		var e types.DatasetEntry
		var createdAt string
		var keywordsJSON string

		if err := rows.Scan(&e.ID, &createdAt, &e.Source, &e.Text, &e.Summary, &e.Topic, &keywordsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan dataset entry: %w", err)
		}

		e.CreatedAt = parseTime(createdAt)
		if err := json.Unmarshal([]byte(keywordsJSON), &e.Keywords); err != nil {
			e.Keywords = []string{}
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dataset entries: %w", err)
	}
	return entries, nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
