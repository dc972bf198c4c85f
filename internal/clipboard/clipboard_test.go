package clipboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/studiowebux/kwintel/internal/types"
)

type writerFunc func(text string) error

func (f writerFunc) WriteAll(text string) error {
	return f(text)
}

type recordingNotifier struct {
	pushed []types.Notification
}

func (r *recordingNotifier) Push(message string, kind types.NotificationKind) types.Notification {
	n := types.Notification{Message: message, Kind: kind}
	r.pushed = append(r.pushed, n)
	return n
}

func TestHelper_Copy(t *testing.T) {
	tests := []struct {
		name     string
		writer   writerFunc
		wantOK   bool
		wantMsg  string
		wantKind types.NotificationKind
	}{
		{
			name:     "success",
			writer:   func(string) error { return nil },
			wantOK:   true,
			wantMsg:  "Summary copied to clipboard!",
			wantKind: types.NotifySuccess,
		},
		{
			name:     "write error",
			writer:   func(string) error { return errors.New("no display") },
			wantMsg:  FailureMessage,
			wantKind: types.NotifyError,
		},
		{
			name:     "panicking writer",
			writer:   func(string) error { panic("xclip exploded") },
			wantMsg:  FailureMessage,
			wantKind: types.NotifyError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes := &recordingNotifier{}
			h := NewHelper(tt.writer, notes)

			ok := h.Copy(context.Background(), "some text", "Summary")
			assert.Equal(t, tt.wantOK, ok)
			if assert.Len(t, notes.pushed, 1) {
				assert.Equal(t, tt.wantMsg, notes.pushed[0].Message)
				assert.Equal(t, tt.wantKind, notes.pushed[0].Kind)
			}
		})
	}
}

func TestHelper_CopyWritesText(t *testing.T) {
	var got string
	h := NewHelper(writerFunc(func(text string) error {
		got = text
		return nil
	}), &recordingNotifier{})

	assert.True(t, h.Copy(context.Background(), "machine learning\nsearch", "Keywords"))
	assert.Equal(t, "machine learning\nsearch", got)
}

func TestHelper_CopyCancelled(t *testing.T) {
	called := false
	notes := &recordingNotifier{}
	h := NewHelper(writerFunc(func(string) error {
		called = true
		return nil
	}), notes)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, h.Copy(ctx, "text", "Summary"))
	assert.False(t, called)
	assert.Equal(t, FailureMessage, notes.pushed[0].Message)
}
