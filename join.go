package evrt

// joinState holds the value a spawned future produced. It exists
// separately from task so the executor's bookkeeping can stay
// non-generic while Spawn's caller still gets a typed result.
type joinState[T any] struct {
	value T
}

func (s *joinState[T]) set(v T) { s.value = v }

// JoinResult is what a JoinHandle produces: either the task's value, or
// Err set to ErrCancelled if it was aborted before the handle observed
// its result, whether or not the task had completed (spec.md §4.8).
type JoinResult[T any] struct {
	Value T
	Err   error
}

// JoinHandle observes a task spawned with Spawn. It is itself a Future,
// so it composes with JoinAll, SelectAny, Select2, and TaskGroup.
type JoinHandle[T any] struct {
	loop  *Loop
	task  *task
	state *joinState[T]
}

// Poll implements Future[JoinResult[T]].
func (h *JoinHandle[T]) Poll(cx *Context) (JoinResult[T], bool) {
	if !h.task.done {
		h.task.waiters = append(h.task.waiters, cx.waker)
		return JoinResult[T]{}, false
	}
	if h.task.cancelled || h.task.aborted.Load() {
		return JoinResult[T]{Err: ErrCancelled}, true
	}
	return JoinResult[T]{Value: h.state.value}, true
}

// Abort flags the task to stop and schedules it, so its next visit drops
// it. Cancellation is cooperative: a poll already in progress is not
// interrupted; a task parked waiting on I/O or a timer is dropped on that
// next visit without another poll, and its JoinHandle waiters are woken
// (spec.md "Cancellation").
func (h *JoinHandle[T]) Abort() {
	h.task.aborted.Store(true)
	(&Waker{loop: h.loop, task: h.task}).Wake()
}

// IsFinished reports whether the task has produced a result (including a
// cancelled one).
func (h *JoinHandle[T]) IsFinished() bool {
	return h.task.done
}

// JoinAll waits for every handle, preserving input order in the output
// regardless of completion order (spec.md §4.8).
func JoinAll[T any](handles []*JoinHandle[T]) Future[[]JoinResult[T]] {
	results := make([]JoinResult[T], len(handles))
	pending := make([]bool, len(handles))
	remaining := len(handles)
	for i := range pending {
		pending[i] = true
	}
	return FromFunc(func(cx *Context) ([]JoinResult[T], bool) {
		for i, h := range handles {
			if !pending[i] {
				continue
			}
			if r, ok := h.Poll(cx); ok {
				results[i] = r
				pending[i] = false
				remaining--
			}
		}
		if remaining == 0 {
			return results, true
		}
		return nil, false
	})
}

// SelectResult identifies which handle of a SelectAny set completed
// first. Remaining holds every other input handle, in input order, so
// the caller can chain a second SelectAny over whatever didn't finish
// (spec.md §4.8).
type SelectResult[T any] struct {
	Index     int
	Result    JoinResult[T]
	Remaining []*JoinHandle[T]
}

// SelectAny completes as soon as any one of handles does, reporting which
// one and the rest for a follow-up select. It fails fast with
// ErrEmptyRemaining if handles is empty.
func SelectAny[T any](handles []*JoinHandle[T]) (Future[SelectResult[T]], error) {
	if len(handles) == 0 {
		return nil, ErrEmptyRemaining
	}
	return FromFunc(func(cx *Context) (SelectResult[T], bool) {
		for i, h := range handles {
			if r, ok := h.Poll(cx); ok {
				remaining := make([]*JoinHandle[T], 0, len(handles)-1)
				remaining = append(remaining, handles[:i]...)
				remaining = append(remaining, handles[i+1:]...)
				return SelectResult[T]{Index: i, Result: r, Remaining: remaining}, true
			}
		}
		return SelectResult[T]{}, false
	}), nil
}

// Either2 is the outcome of Select2: exactly one of First or Second is
// non-nil.
type Either2[A, B any] struct {
	First  *JoinResult[A]
	Second *JoinResult[B]
}

// Select2 completes as soon as either ha or hb does. Unlike SelectAny it
// lets the two branches carry distinct result types.
func Select2[A, B any](ha *JoinHandle[A], hb *JoinHandle[B]) Future[Either2[A, B]] {
	return FromFunc(func(cx *Context) (Either2[A, B], bool) {
		if r, ok := ha.Poll(cx); ok {
			return Either2[A, B]{First: &r}, true
		}
		if r, ok := hb.Poll(cx); ok {
			return Either2[A, B]{Second: &r}, true
		}
		return Either2[A, B]{}, false
	})
}
