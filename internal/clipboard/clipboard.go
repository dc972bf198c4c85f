// Package clipboard copies result text to the system clipboard and reports the outcome.
package clipboard

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/studiowebux/kwintel/internal/types"
)

// FailureMessage is pushed when a copy fails for any reason
const FailureMessage = "Failed to copy to clipboard"

// Writer writes text to a clipboard
type Writer interface {
	WriteAll(text string) error
}

// Notifier receives the copy outcome
type Notifier interface {
	Push(message string, kind types.NotificationKind) types.Notification
}

// SystemWriter writes to the OS clipboard
type SystemWriter struct{}

func (SystemWriter) WriteAll(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard is not supported on this system")
	}
	return clipboard.WriteAll(text)
}

// Helper copies text and pushes a success or error notification
type Helper struct {
	writer   Writer
	notifier Notifier
}

// NewHelper creates a helper. A nil writer uses the system clipboard.
func NewHelper(w Writer, n Notifier) *Helper {
	if w == nil {
		w = SystemWriter{}
	}
	return &Helper{writer: w, notifier: n}
}

// Copy writes text to the clipboard and reports whether it succeeded.
// It never panics; every failure becomes an error notification.
func (h *Helper) Copy(ctx context.Context, text, label string) bool {
	err := h.write(ctx, text)
	if err != nil {
		h.notifier.Push(FailureMessage, types.NotifyError)
		return false
	}
	h.notifier.Push(fmt.Sprintf("%s copied to clipboard!", label), types.NotifySuccess)
	return true
}

func (h *Helper) write(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("clipboard write panicked: %v", r)
			}
		}()
		done <- h.writer.WriteAll(text)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
