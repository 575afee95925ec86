package evrt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsyncQueuePopOrdersFIFO(t *testing.T) {
	result, err := Run(Lazy(func(cx *Context) Future[[]int] {
		loop := cx.Loop()
		q := NewAsyncQueue[int](loop)
		q.Push(1)
		q.Push(2)
		q.Push(3)
		q.Close()

		var got []int
		return FromFunc(func(cx *Context) ([]int, bool) {
			for {
				r, ok := q.Pop().Poll(cx)
				if !ok {
					return nil, false
				}
				if !r.OK {
					return got, true
				}
				got = append(got, r.Value)
			}
		})
	}))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, result)
}

func TestAsyncQueuePopParksUntilPush(t *testing.T) {
	result, err := Run(Lazy(func(cx *Context) Future[int] {
		loop := cx.Loop()
		q := NewAsyncQueue[int](loop)

		Spawn(loop, FromFunc(func(cx *Context) (struct{}, bool) {
			q.Push(42)
			return struct{}{}, true
		}))

		return Map(q.Pop(), func(r QueuePopResult[int]) int { return r.Value })
	}))
	require.NoError(t, err)
	assert.Equal(t, 42, result)
}
