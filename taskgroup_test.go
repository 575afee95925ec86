package evrt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskGroupJoinIncludesTasksSpawnedAfterJoinIsConstructed(t *testing.T) {
	var completed []int
	_, err := Run(Lazy(func(cx *Context) Future[struct{}] {
		loop := cx.Loop()
		group := NewTaskGroup[struct{}](loop)
		group.Spawn(FromFunc(func(cx *Context) (struct{}, bool) {
			completed = append(completed, 1)
			return struct{}{}, true
		}))
		join := group.Join()
		// Spawned after Join's future was built — spec.md §4.10 models the
		// group as a live active counter, not a snapshot taken at Join
		// time, so this member must still be awaited.
		group.Spawn(AndThen(Sleep(time.Millisecond), func(struct{}) Future[struct{}] {
			completed = append(completed, 2)
			return Done(struct{}{})
		}))
		return join
	}))
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 2}, completed)
}

func TestTaskGroupActiveCountsUnfinishedMembers(t *testing.T) {
	result, err := Run(Lazy(func(cx *Context) Future[[]int] {
		loop := cx.Loop()
		group := NewTaskGroup[struct{}](loop)
		group.Spawn(Sleep(time.Millisecond))
		group.Spawn(Sleep(5 * time.Millisecond))

		var samples []int
		join := group.Join()
		return FromFunc(func(cx *Context) ([]int, bool) {
			samples = append(samples, group.Active())
			_, ok := join.Poll(cx)
			if !ok {
				return nil, false
			}
			samples = append(samples, group.Active())
			return samples, true
		})
	}))
	require.NoError(t, err)
	require.NotEmpty(t, result)
	assert.Equal(t, 2, result[0], "both members should still be active right after spawning, before either has been polled")
	assert.Equal(t, 0, result[len(result)-1], "every member must be finished once Join completes")
}

func TestTaskGroupAbortAllCancelsEveryMember(t *testing.T) {
	result, err := Run(Lazy(func(cx *Context) Future[[]JoinResult[struct{}]] {
		loop := cx.Loop()
		group := NewTaskGroup[struct{}](loop)
		h1 := group.Spawn(Sleep(time.Hour))
		h2 := group.Spawn(Sleep(time.Hour))
		join := group.Join()
		group.AbortAll()
		return AndThen(join, func(struct{}) Future[[]JoinResult[struct{}]] {
			return JoinAll([]*JoinHandle[struct{}]{h1, h2})
		})
	}))
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.ErrorIs(t, result[0].Err, ErrCancelled)
	assert.ErrorIs(t, result[1].Err, ErrCancelled)
}
