package evrt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerWheelOrdersByDeadlineThenSequence(t *testing.T) {
	var fired []int
	w := &timerWheel{}
	base := time.Now()

	w.schedule(base.Add(10*time.Millisecond), func() { fired = append(fired, 1) })
	w.schedule(base.Add(5*time.Millisecond), func() { fired = append(fired, 2) })
	w.schedule(base.Add(5*time.Millisecond), func() { fired = append(fired, 3) })

	w.fireExpired(base.Add(20*time.Millisecond), func() bool { return false })

	assert.Equal(t, []int{2, 3, 1}, fired)
	assert.Equal(t, 0, w.len())
}

func TestTimerWheelCancel(t *testing.T) {
	var fired bool
	w := &timerWheel{}
	e := w.schedule(time.Now(), func() { fired = true })
	w.cancel(e)

	w.fireExpired(time.Now().Add(time.Second), func() bool { return false })
	assert.False(t, fired)

	// Cancelling twice, or after firing, must not panic.
	w.cancel(e)
}

func TestTimerWheelStopsEarlyOnExitRequest(t *testing.T) {
	var fired []int
	w := &timerWheel{}
	base := time.Now()
	w.schedule(base, func() { fired = append(fired, 1) })
	w.schedule(base, func() { fired = append(fired, 2) })

	stop := false
	w.fireExpired(base.Add(time.Millisecond), func() bool {
		stop = len(fired) == 1
		return stop
	})

	require.Len(t, fired, 1)
	assert.Equal(t, 1, w.len())
}
