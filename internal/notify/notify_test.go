package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiowebux/kwintel/internal/clock"
	"github.com/studiowebux/kwintel/internal/types"
)

type event struct {
	id     uint64
	active bool
}

func newTestCenter(t *testing.T, opts ...Option) (*Center, *clock.Fake, *[]event) {
	t.Helper()
	fake := clock.NewFake(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	c := NewCenter(append([]Option{WithClock(fake)}, opts...)...)
	var events []event
	c.Subscribe(func(n types.Notification, active bool) {
		events = append(events, event{id: n.ID, active: active})
	})
	return c, fake, &events
}

func TestCenter_AutoDismiss(t *testing.T) {
	c, fake, events := newTestCenter(t)

	n := c.Success("Analysis completed successfully!")
	assert.Equal(t, types.NotifySuccess, n.Kind)
	assert.Equal(t, fake.Now(), n.CreatedAt)

	fake.Advance(3999 * time.Millisecond)
	cur, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "Analysis completed successfully!", cur.Message)

	fake.Advance(time.Millisecond)
	_, ok = c.Current()
	assert.False(t, ok)
	assert.Equal(t, []event{{n.ID, true}, {n.ID, false}}, *events)
}

func TestCenter_DismissEarly(t *testing.T) {
	c, fake, events := newTestCenter(t)

	n := c.Error("boom")
	fake.Advance(1000 * time.Millisecond)
	c.Dismiss()

	_, ok := c.Current()
	assert.False(t, ok)
	assert.Equal(t, 0, fake.Pending())

	fake.Advance(10 * time.Second)
	assert.Equal(t, []event{{n.ID, true}, {n.ID, false}}, *events)
}

func TestCenter_DismissWithoutNotification(t *testing.T) {
	c, _, events := newTestCenter(t)

	c.Dismiss()
	assert.Empty(t, *events)
}

func TestCenter_ReplaceRestartsTimer(t *testing.T) {
	c, fake, events := newTestCenter(t)

	first := c.Success("first")
	fake.Advance(3000 * time.Millisecond)
	second := c.Error("second")
	assert.Equal(t, 1, fake.Pending())

	// The first timer would have fired here
	fake.Advance(1500 * time.Millisecond)
	cur, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, second.ID, cur.ID)

	fake.Advance(2500 * time.Millisecond)
	_, ok = c.Current()
	assert.False(t, ok)

	assert.Equal(t, []event{
		{first.ID, true},
		{second.ID, true},
		{second.ID, false},
	}, *events)
}

func TestCenter_StaleTimerIsNoop(t *testing.T) {
	fake := clock.NewFake(time.Now())
	c := NewCenter(WithClock(fake))

	first := c.Success("first")
	// Simulate a timer that fired after being replaced
	second := c.Success("second")
	c.expire(first.ID)

	cur, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, second.ID, cur.ID)
}

func TestCenter_CustomTimeout(t *testing.T) {
	c, fake, _ := newTestCenter(t, WithTimeout(500*time.Millisecond))
	assert.Equal(t, 500*time.Millisecond, c.Timeout())

	c.Success("short")
	fake.Advance(500 * time.Millisecond)
	_, ok := c.Current()
	assert.False(t, ok)
}

func TestCenter_IgnoresNonPositiveTimeout(t *testing.T) {
	c := NewCenter(WithTimeout(0))
	assert.Equal(t, DefaultTimeout, c.Timeout())
}
