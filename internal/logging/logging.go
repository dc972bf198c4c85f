// Package logging configures slog and decorates the service client with call logging.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/studiowebux/kwintel/internal/executor"
	"github.com/studiowebux/kwintel/internal/request"
	"github.com/studiowebux/kwintel/internal/types"
)

// New creates a text logger writing to w at the named level
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
}

// Discard returns a logger that drops everything
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a level name to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Ensure LoggingExtractor implements executor.Extractor.
var _ executor.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with one log line per call.
type LoggingExtractor struct {
	next   executor.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next executor.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the call.
func (e *LoggingExtractor) Extract(ctx context.Context, out *request.Outbound) (result *types.ExtractionResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"path", pathOf(out),
			"bytes", sizeOf(out),
			"duration", time.Since(begin),
		}
		if err != nil {
			e.logger.Error("extract", append(attrs, "err", err, "reason", executor.Describe(err))...)
			return
		}
		e.logger.Info("extract", append(attrs,
			"rule_keywords", len(result.RuleKeywords),
			"ml_keywords", len(result.MLKeywords),
			"topic", result.PredictedTopic(),
		)...)
	}(time.Now())
	return e.next.Extract(ctx, out)
}

func pathOf(out *request.Outbound) string {
	if out == nil {
		return ""
	}
	return out.Path
}

func sizeOf(out *request.Outbound) int {
	if out == nil {
		return 0
	}
	return len(out.Body)
}
