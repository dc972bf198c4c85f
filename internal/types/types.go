package types

import (
	"path/filepath"
	"strings"
	"time"
)

// InputKind discriminates the two mutually exclusive submission shapes
type InputKind int

const (
	InputText InputKind = iota
	InputFile
)

func (k InputKind) String() string {
	switch k {
	case InputText:
		return "text"
	case InputFile:
		return "file"
	default:
		return "unknown"
	}
}

// Parameter bounds accepted by the extraction service
const (
	MinTopN  = 5
	MaxTopN  = 20
	MinNgram = 1
	MaxNgram = 3
)

// Params holds the numeric parameters shared by both input kinds
type Params struct {
	TopN     int `json:"top_n" yaml:"top_n"`
	NgramMin int `json:"ng_min" yaml:"ng_min"`
	NgramMax int `json:"ng_max" yaml:"ng_max"`
}

// DefaultParams returns the parameters used when nothing else is configured
func DefaultParams() Params {
	return Params{TopN: 10, NgramMin: 1, NgramMax: 3}
}

// WithDefaults fills zero fields from DefaultParams
func (p Params) WithDefaults() Params {
	def := DefaultParams()
	if p.TopN == 0 {
		p.TopN = def.TopN
	}
	if p.NgramMin == 0 {
		p.NgramMin = def.NgramMin
	}
	if p.NgramMax == 0 {
		p.NgramMax = def.NgramMax
	}
	return p
}

// SubmissionInput is either a text body or a file blob plus shared parameters.
// Build it with NewTextInput or NewFileInput so only one side is ever populated.
type SubmissionInput struct {
	Kind   InputKind
	Body   string
	Blob   []byte
	Name   string
	Params Params
}

// NewTextInput creates a text submission
func NewTextInput(body string, params Params) SubmissionInput {
	return SubmissionInput{Kind: InputText, Body: body, Params: params}
}

// NewFileInput creates a file submission. Any text typed alongside the file is dropped.
func NewFileInput(blob []byte, name string, params Params) SubmissionInput {
	return SubmissionInput{Kind: InputFile, Blob: blob, Name: baseName(name), Params: params}
}

// baseName strips directories from a file name; empty and root-like names become ""
func baseName(name string) string {
	if name == "" {
		return ""
	}
	switch base := filepath.Base(name); base {
	case ".", string(filepath.Separator):
		return ""
	default:
		return base
	}
}

// HasText reports whether a text body was supplied (whitespace counts)
func (in SubmissionInput) HasText() bool {
	return in.Kind == InputText && in.Body != ""
}

// HasFile reports whether a file was attached
func (in SubmissionInput) HasFile() bool {
	return in.Kind == InputFile && (len(in.Blob) > 0 || baseName(in.Name) != "")
}

// Source returns a short label for the input: the file name or "text"
func (in SubmissionInput) Source() string {
	if in.Kind == InputFile {
		return in.Name
	}
	return "text"
}

// ExtractionResult is the analysis returned by the remote service.
// Every field may be missing; renderers treat missing fields as empty.
type ExtractionResult struct {
	RuleKeywords []string `json:"rule_keywords" yaml:"rule_keywords"`
	MLKeywords   []string `json:"ml_keywords" yaml:"ml_keywords"`
	Phrases      []string `json:"phrases" yaml:"phrases"`
	Summary      string   `json:"summary" yaml:"summary"`
	Topic        []string `json:"topic" yaml:"topic"`
}

// PredictedTopic returns the highest ranked topic label, or "" when none was returned
func (r *ExtractionResult) PredictedTopic() string {
	if r == nil || len(r.Topic) == 0 {
		return ""
	}
	return r.Topic[0]
}

// IsEmpty reports whether the result carries nothing to render
func (r *ExtractionResult) IsEmpty() bool {
	return r == nil || (len(r.RuleKeywords) == 0 && len(r.MLKeywords) == 0 &&
		len(r.Phrases) == 0 && strings.TrimSpace(r.Summary) == "" && len(r.Topic) == 0)
}

// Clone returns a deep copy so stored results cannot be mutated by callers
func (r *ExtractionResult) Clone() *ExtractionResult {
	if r == nil {
		return nil
	}
	return &ExtractionResult{
		RuleKeywords: cloneStrings(r.RuleKeywords),
		MLKeywords:   cloneStrings(r.MLKeywords),
		Phrases:      cloneStrings(r.Phrases),
		Summary:      r.Summary,
		Topic:        cloneStrings(r.Topic),
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// NotificationKind is the severity of a notification
type NotificationKind int

const (
	NotifySuccess NotificationKind = iota
	NotifyError
)

func (k NotificationKind) String() string {
	if k == NotifyError {
		return "error"
	}
	return "success"
}

// Notification is a transient, auto-expiring status message
type Notification struct {
	ID        uint64
	Message   string
	Kind      NotificationKind
	CreatedAt time.Time
}

// SubmissionState is the lifecycle state of the submission controller
type SubmissionState int

const (
	StateIdle SubmissionState = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s SubmissionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DatasetEntry is a saved analysis
type DatasetEntry struct {
	ID        string    `json:"id" yaml:"id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Source    string    `json:"source" yaml:"source"`
	Text      string    `json:"text" yaml:"text"`
	Summary   string    `json:"summary" yaml:"summary"`
	Topic     string    `json:"topic" yaml:"topic"`
	Keywords  []string  `json:"keywords" yaml:"keywords"`
}

// Session is the persisted demo login state
type Session struct {
	Username   string    `json:"username,omitempty"`
	LoggedInAt time.Time `json:"loggedInAt,omitempty"`
}

// LoggedIn reports whether a user record is present
func (s *Session) LoggedIn() bool {
	return s != nil && s.Username != ""
}
