package evrt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCompletesRootFuture(t *testing.T) {
	v, err := Run(Done(7))
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestSleepOrdersByDuration(t *testing.T) {
	var order []int
	_, err := Run(Lazy(func(cx *Context) Future[struct{}] {
		loop := cx.Loop()
		group := NewTaskGroup[struct{}](loop)
		for i, d := range []time.Duration{9 * time.Millisecond, 1 * time.Millisecond, 5 * time.Millisecond} {
			i, d := i, d
			group.Spawn(AndThen(Sleep(d), func(struct{}) Future[struct{}] {
				order = append(order, i)
				return Done(struct{}{})
			}))
		}
		return group.Join()
	}))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 0}, order)
}

func TestWakeCoalescesRepeatedCallsBeforeNextPoll(t *testing.T) {
	polls := 0
	_, err := Run(Lazy(func(cx *Context) Future[struct{}] {
		first := true
		return FromFunc(func(cx *Context) (struct{}, bool) {
			polls++
			if first {
				first = false
				w := cx.Waker()
				w.Wake()
				w.Wake()
				w.Wake()
				return struct{}{}, false
			}
			return struct{}{}, true
		})
	}))
	require.NoError(t, err)
	assert.Equal(t, 2, polls, "three Wake calls before the next poll must coalesce into exactly one reschedule")
}
