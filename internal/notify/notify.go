// Package notify holds the single transient status message shown to the user.
package notify

import (
	"sync"
	"time"

	"github.com/studiowebux/kwintel/internal/clock"
	"github.com/studiowebux/kwintel/internal/types"
)

// DefaultTimeout is how long a notification stays visible
const DefaultTimeout = 4000 * time.Millisecond

// Listener is called after every change; active is false once the notification is gone
type Listener func(n types.Notification, active bool)

// Center keeps at most one active notification and dismisses it after a timeout.
// Every timer is bound to the notification that started it.
type Center struct {
	mu        sync.Mutex
	clock     clock.Clock
	timeout   time.Duration
	current   types.Notification
	active    bool
	nextID    uint64
	timer     clock.Timer
	listeners []Listener
}

// Option configures a Center
type Option func(*Center)

// WithClock sets the time source used for timestamps and timers
func WithClock(c clock.Clock) Option {
	return func(n *Center) {
		n.clock = c
	}
}

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(n *Center) {
		if d > 0 {
			n.timeout = d
		}
	}
}

// NewCenter creates a notification center
func NewCenter(opts ...Option) *Center {
	c := &Center{
		clock:   clock.SystemClock{},
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Timeout returns the auto-dismiss delay
func (c *Center) Timeout() time.Duration {
	return c.timeout
}

// Subscribe registers a listener for notification changes
func (c *Center) Subscribe(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// Push replaces any active notification and restarts the dismissal timer
func (c *Center) Push(message string, kind types.NotificationKind) types.Notification {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.nextID++
	n := types.Notification{
		ID:        c.nextID,
		Message:   message,
		Kind:      kind,
		CreatedAt: c.clock.Now(),
	}
	c.current = n
	c.active = true
	id := n.ID
	c.timer = c.clock.AfterFunc(c.timeout, func() {
		c.expire(id)
	})
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	notifyAll(listeners, n, true)
	return n
}

// Success pushes a success notification
func (c *Center) Success(message string) types.Notification {
	return c.Push(message, types.NotifySuccess)
}

// Error pushes an error notification
func (c *Center) Error(message string) types.Notification {
	return c.Push(message, types.NotifyError)
}

// Dismiss removes the active notification and cancels its timer
func (c *Center) Dismiss() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	n := c.clearLocked()
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	notifyAll(listeners, n, false)
}

// Current returns the active notification, if any
func (c *Center) Current() (types.Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.active
}

// expire runs from the timer; it only clears the notification it was created for
func (c *Center) expire(id uint64) {
	c.mu.Lock()
	if !c.active || c.current.ID != id {
		c.mu.Unlock()
		return
	}
	n := c.clearLocked()
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	notifyAll(listeners, n, false)
}

func (c *Center) clearLocked() types.Notification {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	n := c.current
	c.current = types.Notification{}
	c.active = false
	return n
}

func (c *Center) snapshotListeners() []Listener {
	if len(c.listeners) == 0 {
		return nil
	}
	out := make([]Listener, len(c.listeners))
	copy(out, c.listeners)
	return out
}

func notifyAll(listeners []Listener, n types.Notification, active bool) {
	for _, l := range listeners {
		l(n, active)
	}
}
