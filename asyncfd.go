package evrt

// AsyncFd bridges a raw, already non-blocking file descriptor into the
// future/waker world: Readable and Writable return futures that park
// until the backend reports the corresponding readiness (spec.md §4.5).
//
// All methods run on the owning loop's goroutine, matching every other
// future in the package. A single read waiter and a single write waiter
// are supported at a time, mirroring real backends that deliver
// readiness per fd rather than per waiter.
type AsyncFd struct {
	loop *Loop
	fd   int

	readable bool
	writable bool
	errored  bool
	hungup   bool

	readWaker  *Waker
	writeWaker *Waker
	closed     bool
}

// NewAsyncFd registers fd with the loop for read-write interest. fd must
// already be in non-blocking mode; AsyncFd never sets it itself, since
// ownership of that mode switch varies by caller (spec.md §4.5, §8
// invariant about error/hangup being single-observer events).
func NewAsyncFd(l *Loop, fd int) *AsyncFd {
	a := &AsyncFd{loop: l, fd: fd}
	l.sources.add(fd, ReadWrite, a.dispatch)
	_ = l.backend.Register(fd, ReadWrite)
	return a
}

func (a *AsyncFd) dispatch(l *Loop, ready Ready) {
	if ready.Readable {
		a.readable = true
	}
	if ready.Writable {
		a.writable = true
	}
	if ready.Error {
		a.errored = true
	}
	if ready.Hangup {
		a.hungup = true
	}

	if (a.readable || a.errored || a.hungup) && a.readWaker != nil {
		w := a.readWaker
		a.readWaker = nil
		w.Wake()
	}
	if (a.writable || a.errored || a.hungup) && a.writeWaker != nil {
		w := a.writeWaker
		a.writeWaker = nil
		w.Wake()
	}
}

// Readable returns a Future that completes with the fd's current Ready
// snapshot once it has data to read, has hung up, or has errored — error
// and hangup are sticky and reported to whichever side is waiting,
// matching invariant 8's single-observer coalescing (there is no
// separate error/hangup channel to miss a notification on). Only the
// readable, error, and hangup bits are consumed; writable is reported as
// a side effect but left for Writable to consume on its own.
func (a *AsyncFd) Readable() Future[Ready] {
	return FromFunc(func(cx *Context) (Ready, bool) {
		if a.readable || a.errored || a.hungup {
			out := Ready{Readable: a.readable, Writable: a.writable, Error: a.errored, Hangup: a.hungup}
			a.readable, a.errored, a.hungup = false, false, false
			return out, true
		}
		a.readWaker = cx.waker
		return Ready{}, false
	})
}

// Writable mirrors Readable for write-readiness.
func (a *AsyncFd) Writable() Future[Ready] {
	return FromFunc(func(cx *Context) (Ready, bool) {
		if a.writable || a.errored || a.hungup {
			out := Ready{Readable: a.readable, Writable: a.writable, Error: a.errored, Hangup: a.hungup}
			a.writable, a.errored, a.hungup = false, false, false
			return out, true
		}
		a.writeWaker = cx.waker
		return Ready{}, false
	})
}

// Fd returns the underlying file descriptor.
func (a *AsyncFd) Fd() int { return a.fd }

// Close deregisters fd from the loop. It does not close the fd itself —
// callers own that, since AsyncFd never assumed ownership on
// construction either.
func (a *AsyncFd) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	a.loop.sources.remove(a.fd)
	return a.loop.backend.Deregister(a.fd)
}
