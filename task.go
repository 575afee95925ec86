package evrt

import "sync/atomic"

// task is the executor's type-erased record of one spawned future. The
// generic result lives in the JoinState the Spawn caller holds; task
// itself only needs to know how to advance and whether it should stop.
type task struct {
	id        uint64
	poll      func(cx *Context) bool // true once the future is complete
	queued    bool                   // loop-thread only: already in the ready queue
	done      bool                   // loop-thread only
	cancelled bool                   // loop-thread only: finished via abort, not completion
	aborted   atomic.Bool            // may be set from any goroutine

	waiters     []*Waker    // JoinHandles parked waiting for done (loop-thread only)
	pendingWake atomic.Bool // cross-thread dedupe for Waker.Wake
}

// Waker lets a parked future ask to be polled again. It is safe to clone,
// store, and call from any goroutine (spec.md §3 "Waker"); repeated calls
// before the task is next polled coalesce into a single reschedule
// (spec.md §8, "wake coalescing").
type Waker struct {
	loop *Loop
	task *task
}

// Wake schedules the owning task for its next poll. A nil Waker, or one
// whose task has already finished, is a harmless no-op.
func (w *Waker) Wake() {
	if w == nil {
		return
	}
	if !w.task.pendingWake.CompareAndSwap(false, true) {
		return
	}
	t := w.task
	_ = w.loop.handle.Post(func(l *Loop) {
		t.pendingWake.Store(false)
		l.executor.schedule(t)
	})
}

// executor owns the loop-local ready queue of runnable tasks. Only the
// loop's own goroutine ever touches it directly; other goroutines reach
// it exclusively through Waker.Wake's mailbox post.
type executor struct {
	nextID uint64
	ready  []*task
	live   int
}

func newExecutor() *executor {
	return &executor{}
}

// schedule enqueues t for the next drain, deduping against a task already
// waiting in the queue or already finished.
func (e *executor) schedule(t *task) {
	if t.done || t.queued {
		return
	}
	t.queued = true
	e.ready = append(e.ready, t)
}

// drainReady runs every task queued at call time to completion or to its
// next park, matching spec.md §4.4 step 3 ("run local tasks"). Tasks
// woken while this pass is running are picked up on the next call, which
// bounds the work done per dispatch cycle.
func (e *executor) drainReady(l *Loop) {
	batch := e.ready
	e.ready = nil
	for _, t := range batch {
		t.queued = false
		if t.done {
			continue
		}
		if t.aborted.Load() {
			t.cancelled = true
			e.finish(t)
			continue
		}
		cx := &Context{loop: l, waker: &Waker{loop: l, task: t}}
		if t.poll(cx) {
			e.finish(t)
		}
	}
}

func (e *executor) finish(t *task) {
	if t.done {
		return
	}
	t.done = true
	e.live--
	waiters := t.waiters
	t.waiters = nil
	for _, w := range waiters {
		w.Wake()
	}
}

func (e *executor) spawn(poll func(cx *Context) bool) *task {
	e.nextID++
	t := &task{id: e.nextID, poll: poll}
	e.live++
	e.ready = append(e.ready, t)
	t.queued = true
	return t
}

// Spawn schedules fut to run on l, returning a JoinHandle that observes
// its eventual result (spec.md §4.7, §4.8).
func Spawn[T any](l *Loop, fut Future[T]) *JoinHandle[T] {
	state := &joinState[T]{}
	t := l.executor.spawn(func(cx *Context) bool {
		v, ok := fut.Poll(cx)
		if !ok {
			return false
		}
		state.set(v)
		return true
	})
	return &JoinHandle[T]{loop: l, task: t, state: state}
}
