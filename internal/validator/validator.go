package validator

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/studiowebux/kwintel/internal/types"
)

const (
	// MinTextLength is the minimum number of characters after trimming whitespace
	MinTextLength = 10

	// MaxTextLength is the maximum number of characters of the untrimmed text
	MaxTextLength = 50000
)

// Rejection reasons shown to the user
const (
	ReasonNoInput    = "Please enter text or upload a PDF file"
	ReasonTooShort   = "Text must be at least 10 characters"
	ReasonTooLong    = "Text must be less than 50000 characters"
	ReasonTopNRange  = "Number of keywords must be between 5 and 20"
	ReasonNgramRange = "N-gram range must satisfy 1 ≤ min ≤ max ≤ 3"
)

// ErrRejected is wrapped by every validation failure
var ErrRejected = errors.New("submission rejected")

// Error is a validation failure carrying the user-facing reason
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", ErrRejected, e.Reason)
}

func (e *Error) Unwrap() error {
	return ErrRejected
}

func reject(reason string) error {
	return &Error{Reason: reason}
}

// Validate checks the submission preconditions in order and returns the first failure.
// File submissions skip the length checks; the service validates file content.
func Validate(in types.SubmissionInput) error {
	if !in.HasText() && !in.HasFile() {
		return reject(ReasonNoInput)
	}

	if in.Kind == types.InputText {
		if utf8.RuneCountInString(strings.TrimSpace(in.Body)) < MinTextLength {
			return reject(ReasonTooShort)
		}
		if utf8.RuneCountInString(in.Body) > MaxTextLength {
			return reject(ReasonTooLong)
		}
	}

	return ValidateParams(in.Params)
}

// ValidateParams checks the numeric parameters against the service limits
func ValidateParams(p types.Params) error {
	if p.TopN < types.MinTopN || p.TopN > types.MaxTopN {
		return reject(ReasonTopNRange)
	}
	if p.NgramMin < types.MinNgram || p.NgramMax > types.MaxNgram || p.NgramMin > p.NgramMax {
		return reject(ReasonNgramRange)
	}
	return nil
}

// Reason extracts the user-facing reason from a validation error, or "" for other errors
func Reason(err error) string {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Reason
	}
	return ""
}
