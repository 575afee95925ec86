package evrt

// Future is a suspendable computation polled to completion by an
// Executor. A call to Poll either produces a final value (ok == true) or
// parks, having arranged — via cx.Waker() — to be polled again once
// progress is possible (spec.md §3 "Future").
//
// Implementations must not block and must not poll themselves from
// another goroutine; all polling happens on the owning Loop's goroutine.
type Future[T any] interface {
	Poll(cx *Context) (T, bool)
}

// Context is passed to every Poll call. It carries the Waker a future
// must retain to be scheduled again, and the Loop it is running on —
// Go's stand-in for a language-level thread-local current loop (spec.md
// §9 "Thread-local current loop").
type Context struct {
	waker *Waker
	loop  *Loop
}

// Waker returns the handle a parked future uses to request another poll.
func (cx *Context) Waker() *Waker { return cx.waker }

// Loop returns the loop driving this poll.
func (cx *Context) Loop() *Loop { return cx.loop }

// funcFuture adapts a plain poll function to Future, the way an anonymous
// struct would in a language with closures-as-interfaces.
type funcFuture[T any] func(cx *Context) (T, bool)

func (f funcFuture[T]) Poll(cx *Context) (T, bool) { return f(cx) }

// FromFunc builds a Future out of a bare poll function.
func FromFunc[T any](poll func(cx *Context) (T, bool)) Future[T] {
	return funcFuture[T](poll)
}

// Done returns a Future that completes with v on its very first poll.
// Named to avoid colliding with the Ready readiness-bundle type.
func Done[T any](v T) Future[T] {
	return funcFuture[T](func(cx *Context) (T, bool) { return v, true })
}

// Map runs f over the output of inner once inner completes.
func Map[T, U any](inner Future[T], f func(T) U) Future[U] {
	return funcFuture[U](func(cx *Context) (U, bool) {
		v, ok := inner.Poll(cx)
		if !ok {
			var zero U
			return zero, false
		}
		return f(v), true
	})
}

// Lazy defers constructing the real future until the first poll, then
// delegates every subsequent poll to that same instance — the building
// block anything that needs a *Loop or *Context to construct its future
// (Spawn, JoinAll over freshly spawned handles) uses instead of
// reconstructing a fresh future on every outer poll.
func Lazy[T any](build func(cx *Context) Future[T]) Future[T] {
	var inner Future[T]
	return FromFunc(func(cx *Context) (T, bool) {
		if inner == nil {
			inner = build(cx)
		}
		return inner.Poll(cx)
	})
}

// AndThen chains inner into a second future built from its result: the
// package's sequential-composition primitive.
func AndThen[T, U any](inner Future[T], next func(T) Future[U]) Future[U] {
	var tail Future[U]
	return funcFuture[U](func(cx *Context) (U, bool) {
		var zero U
		if tail == nil {
			v, ok := inner.Poll(cx)
			if !ok {
				return zero, false
			}
			tail = next(v)
		}
		return tail.Poll(cx)
	})
}
