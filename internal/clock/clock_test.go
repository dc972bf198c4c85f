package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFake_AdvanceFiresDueTimersInOrder(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	var fired []string

	c.AfterFunc(3*time.Second, func() { fired = append(fired, "late") })
	c.AfterFunc(1*time.Second, func() { fired = append(fired, "early") })

	c.Advance(2 * time.Second)
	assert.Equal(t, []string{"early"}, fired)
	assert.Equal(t, 1, c.Pending())

	c.Advance(time.Second)
	assert.Equal(t, []string{"early", "late"}, fired)
	assert.Equal(t, time.Unix(3, 0), c.Now())
}

func TestFake_StopCancelsTimer(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	called := false

	timer := c.AfterFunc(time.Second, func() { called = true })
	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	c.Advance(5 * time.Second)
	assert.False(t, called)
	assert.Equal(t, 0, c.Pending())
}

func TestFake_CallbackMayScheduleTimer(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	count := 0

	var tick func()
	tick = func() {
		count++
		if count < 3 {
			c.AfterFunc(time.Second, tick)
		}
	}
	c.AfterFunc(time.Second, tick)

	c.Advance(10 * time.Second)
	assert.Equal(t, 3, count)
}
