package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiowebux/kwintel/internal/types"
)

func TestValidate(t *testing.T) {
	params := types.DefaultParams()

	tests := []struct {
		name       string
		input      types.SubmissionInput
		wantReason string
	}{
		{
			name:       "no text and no file",
			input:      types.SubmissionInput{Params: params},
			wantReason: ReasonNoInput,
		},
		{
			name:       "empty text input",
			input:      types.NewTextInput("", params),
			wantReason: ReasonNoInput,
		},
		{
			name:       "empty file input",
			input:      types.NewFileInput(nil, "", params),
			wantReason: ReasonNoInput,
		},
		{
			name:       "whitespace only",
			input:      types.NewTextInput("      \n\t   ", params),
			wantReason: ReasonTooShort,
		},
		{
			name:       "trimmed length nine",
			input:      types.NewTextInput("   123456789   ", params),
			wantReason: ReasonTooShort,
		},
		{
			name:  "trimmed length ten",
			input: types.NewTextInput("   1234567890   ", params),
		},
		{
			name:  "exactly max length",
			input: types.NewTextInput(strings.Repeat("a", MaxTextLength), params),
		},
		{
			name:       "raw length over max",
			input:      types.NewTextInput(strings.Repeat("a", MaxTextLength+1), params),
			wantReason: ReasonTooLong,
		},
		{
			name:       "raw length over max with trimmed length in bounds",
			input:      types.NewTextInput(strings.Repeat("a", 100)+strings.Repeat(" ", MaxTextLength), params),
			wantReason: ReasonTooLong,
		},
		{
			name:  "multibyte characters counted as characters",
			input: types.NewTextInput("ééééééééééé", params),
		},
		{
			name:  "file mode bypasses length checks",
			input: types.NewFileInput([]byte("%PDF-1.4"), "paper.pdf", params),
		},
		{
			name:       "top n too small",
			input:      types.NewTextInput("a perfectly valid text", types.Params{TopN: 4, NgramMin: 1, NgramMax: 3}),
			wantReason: ReasonTopNRange,
		},
		{
			name:       "ngram min above max",
			input:      types.NewTextInput("a perfectly valid text", types.Params{TopN: 10, NgramMin: 3, NgramMax: 2}),
			wantReason: ReasonNgramRange,
		},
		{
			name:       "length rule wins over parameter rule",
			input:      types.NewTextInput("short", types.Params{TopN: 100, NgramMin: 1, NgramMax: 3}),
			wantReason: ReasonTooShort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.input)
			if tt.wantReason == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrRejected)
			assert.Equal(t, tt.wantReason, Reason(err))
		})
	}
}

func TestValidate_AcceptsWholeTextRange(t *testing.T) {
	for _, n := range []int{MinTextLength, 11, 500, 49999, MaxTextLength} {
		err := Validate(types.NewTextInput(strings.Repeat("x", n), types.DefaultParams()))
		assert.NoError(t, err, "length %d", n)
	}
}

func TestReason_NonValidationError(t *testing.T) {
	assert.Equal(t, "", Reason(assert.AnError))
	assert.Equal(t, "", Reason(nil))
}
