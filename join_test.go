package evrt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinAllPreservesOrder(t *testing.T) {
	result, err := Run(Lazy(func(cx *Context) Future[[]JoinResult[int]] {
		loop := cx.Loop()
		handles := []*JoinHandle[int]{
			Spawn(loop, delayedValue(3, 3*time.Millisecond)),
			Spawn(loop, delayedValue(1, 1*time.Millisecond)),
			Spawn(loop, delayedValue(2, 2*time.Millisecond)),
		}
		return JoinAll(handles)
	}))
	require.NoError(t, err)
	require.Len(t, result, 3)
	assert.Equal(t, 3, result[0].Value)
	assert.Equal(t, 1, result[1].Value)
	assert.Equal(t, 2, result[2].Value)
}

func TestJoinHandleAbortBeforePollReportsCancelled(t *testing.T) {
	result, err := Run(Lazy(func(cx *Context) Future[JoinResult[int]] {
		h := Spawn(cx.Loop(), delayedValue(1, 10*time.Millisecond))
		h.Abort()
		return h
	}))
	require.NoError(t, err)
	assert.ErrorIs(t, result.Err, ErrCancelled)
}

func TestSelectAnyReportsFirstToFinish(t *testing.T) {
	result, err := Run(Lazy(func(cx *Context) Future[SelectResult[int]] {
		loop := cx.Loop()
		handles := []*JoinHandle[int]{
			Spawn(loop, delayedValue(1, 10*time.Millisecond)),
			Spawn(loop, delayedValue(2, time.Millisecond)),
		}
		sel, err := SelectAny(handles)
		require.NoError(t, err)
		return sel
	}))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Index)
	assert.Equal(t, 2, result.Result.Value)
}

func TestSelectAnyRemainingChainsIntoASecondSelect(t *testing.T) {
	result, err := Run(Lazy(func(cx *Context) Future[SelectResult[int]] {
		loop := cx.Loop()
		handles := []*JoinHandle[int]{
			Spawn(loop, delayedValue(1, 2*time.Millisecond)),
			Spawn(loop, delayedValue(2, time.Millisecond)),
		}
		first, err := SelectAny(handles)
		require.NoError(t, err)
		return AndThen(first, func(r SelectResult[int]) Future[SelectResult[int]] {
			assert.Equal(t, 1, r.Index)
			assert.Equal(t, 2, r.Result.Value)
			require.Len(t, r.Remaining, 1)
			second, err := SelectAny(r.Remaining)
			require.NoError(t, err)
			return second
		})
	}))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Index)
	assert.Equal(t, 1, result.Result.Value)
}

func TestSelectAnyEmptyReportsError(t *testing.T) {
	_, err := SelectAny[int](nil)
	assert.ErrorIs(t, err, ErrEmptyRemaining)
}

func delayedValue(v int, d time.Duration) Future[int] {
	return AndThen(Sleep(d), func(struct{}) Future[int] {
		return Done(v)
	})
}
