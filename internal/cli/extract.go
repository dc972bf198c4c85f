package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/studiowebux/kwintel/internal/clipboard"
	"github.com/studiowebux/kwintel/internal/controller"
	"github.com/studiowebux/kwintel/internal/document"
	"github.com/studiowebux/kwintel/internal/executor"
	"github.com/studiowebux/kwintel/internal/export"
	"github.com/studiowebux/kwintel/internal/filter"
	"github.com/studiowebux/kwintel/internal/types"
)

// ExtractOptions contains options for running an extraction in CLI mode
type ExtractOptions struct {
	Text         string
	FilePath     string
	Params       ParamOverrides
	OutputFormat string       // text, json, yaml
	Query        string       // JMESPath expression applied to the result
	Export       string       // csv, xlsx, json, yaml
	Copy         string       // summary or keywords
	Save         bool
}

// ParamOverrides holds the parameters given on the command line; nil fields use the configured defaults
type ParamOverrides struct {
	TopN     *int
	NgramMin *int
	NgramMax *int
}

// Extract submits text or a file to the service and prints the analysis
func Extract(ctx context.Context, env Env, opts ExtractOptions) error {
	env = env.withDefaults()
	if env.Service == nil {
		return errors.New("no extraction service configured")
	}
	if opts.Copy != "" && !validCopyTarget(opts.Copy) {
		return fmt.Errorf("unsupported copy target: %s (use summary or keywords)", opts.Copy)
	}

	in, err := readInput(env, opts)
	if err != nil {
		return err
	}

	center := env.newCenter()
	ctrl := controller.New(env.Service, center)

	out, err := ctrl.Submit(ctx, in)
	if err != nil {
		if out.Err != nil {
			env.Logger.Error("extraction failed", "err", err, "reason", executor.Describe(err))
		}
		return ErrReported
	}

	result := ctrl.Result()
	env.Logger.Info("extraction completed",
		"source", in.Source(),
		"duration", executor.FormatDuration(out.Duration),
		"topic", result.PredictedTopic(),
	)

	if err := printResult(env, result, opts); err != nil {
		return err
	}

	if opts.Export != "" {
		if err := exportResult(env, result, opts.Export); err != nil {
			center.Error(err.Error())
			return ErrReported
		}
	}

	if opts.Copy != "" {
		helper := clipboard.NewHelper(env.Clipboard, center)
		label, text := copyTarget(result, opts.Copy)
		if !helper.Copy(ctx, text, label) {
			return ErrReported
		}
	}

	if env.Dataset != nil && (opts.Save || env.Config.HistoryEnabled) {
		entry, err := env.Dataset.Save(ctx, in.Source(), sourceText(in), result)
		if err != nil {
			// A failed save only warns
			env.Logger.Warn("failed to save dataset entry", "err", err)
			fmt.Fprintf(env.Stderr, "Warning: failed to save to dataset: %v\n", err)
		} else if opts.Save {
			fmt.Fprintf(env.Stderr, "Saved to dataset as %s\n", shortID(entry.ID))
		}
	}

	return nil
}

// readInput builds the submission from --file, --text or piped stdin, in that order
func readInput(env Env, opts ExtractOptions) (types.SubmissionInput, error) {
	params := mergeParams(opts.Params, env.Config.Defaults)

	if opts.FilePath != "" {
		f, err := os.Open(opts.FilePath)
		if err != nil {
			return types.SubmissionInput{}, fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()

		blob, err := document.ReadAll(f, document.MaxFileSize)
		if err != nil {
			return types.SubmissionInput{}, err
		}
		if info, err := document.Inspect(opts.FilePath, blob); err == nil {
			env.Logger.Debug("document inspected", "name", info.Name, "pages", info.Pages, "size", info.Size)
		}
		return types.NewFileInput(blob, opts.FilePath, params), nil
	}

	text := opts.Text
	if text == "" && env.StdinPiped {
		data, err := io.ReadAll(env.Stdin)
		if err != nil {
			return types.SubmissionInput{}, fmt.Errorf("failed to read from stdin: %w", err)
		}
		text = string(data)
	}
	return types.NewTextInput(text, params), nil
}

// mergeParams applies explicit overrides on top of the configured defaults.
// An explicit value is kept as given, out of range or not, so the validator can reject it.
func mergeParams(o ParamOverrides, defaults types.Params) types.Params {
	p := defaults.WithDefaults()
	if o.TopN != nil {
		p.TopN = *o.TopN
	}
	if o.NgramMin != nil {
		p.NgramMin = *o.NgramMin
	}
	if o.NgramMax != nil {
		p.NgramMax = *o.NgramMax
	}
	return p
}

func printResult(env Env, result *types.ExtractionResult, opts ExtractOptions) error {
	if opts.Query != "" {
		output, err := filter.Query(result, opts.Query)
		if err != nil {
			return fmt.Errorf("failed to apply query: %w", err)
		}
		if looksLikeJSON(output) {
			output = colorize(output, "json", env.Color)
		}
		fmt.Fprintln(env.Stdout, strings.TrimRight(output, "\n"))
		return nil
	}

	output, err := formatResult(result, opts.OutputFormat, env.Color)
	if err != nil {
		return err
	}
	fmt.Fprint(env.Stdout, output)
	return nil
}

func exportResult(env Env, result *types.ExtractionResult, format string) error {
	artifact, err := export.Build(format, result)
	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	dir, err := env.Config.ResolveExportDir()
	if err != nil {
		return err
	}
	path, err := export.Deliver(dir, artifact)
	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	fmt.Fprintf(env.Stderr, "Exported %s (%s) to %s\n", artifact.Filename, executor.FormatSize(len(artifact.Data)), path)
	return nil
}

// copyTarget returns the notification label and the text for a copy target
func copyTarget(r *types.ExtractionResult, target string) (string, string) {
	switch strings.ToLower(target) {
	case "summary":
		return "Summary", r.Summary
	default:
		return "Keywords", strings.Join(r.MLKeywords, ", ")
	}
}

func validCopyTarget(target string) bool {
	switch strings.ToLower(target) {
	case "summary", "keywords":
		return true
	}
	return false
}

// sourceText is the text stored with a dataset entry.
// For PDFs it is the locally extracted text, when the document parses.
func sourceText(in types.SubmissionInput) string {
	if in.Kind == types.InputText {
		return in.Body
	}
	text, err := document.Text(in.Blob)
	if err != nil {
		return ""
	}
	return text
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
