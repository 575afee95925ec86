//go:build unix

package evrt

import (
	"golang.org/x/sys/unix"
)

// wakeupPipe is the cross-thread notification channel into the loop
// (spec.md §4.2): a non-blocking self-pipe whose read end is registered
// for read readiness. Writing a single byte from any goroutine unblocks
// a sleeping Backend.Wait.
type wakeupPipe struct {
	readFd  int
	writeFd int
}

func newWakeupPipe() (*wakeupPipe, error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return nil, &OpError{Op: "pipe", Fd: -1, Err: err}
	}
	if err := unix.SetNonblock(fds[0], true); err != nil {
		unix.Close(fds[0])
		unix.Close(fds[1])
		return nil, &OpError{Op: "fcntl", Fd: fds[0], Err: err}
	}
	if err := unix.SetNonblock(fds[1], true); err != nil {
		unix.Close(fds[0])
		unix.Close(fds[1])
		return nil, &OpError{Op: "fcntl", Fd: fds[1], Err: err}
	}
	return &wakeupPipe{readFd: fds[0], writeFd: fds[1]}, nil
}

// wake is best-effort: a full pipe means a wakeup is already pending,
// which is sufficient, so EAGAIN is swallowed (spec.md §4.3).
func (w *wakeupPipe) wake() {
	var buf [1]byte
	_, _ = unix.Write(w.writeFd, buf[:])
}

// drain empties the pipe until it would block, discarding the bytes —
// the information carried is just "wake up" (spec.md §4.2).
func (w *wakeupPipe) drain() {
	var buf [64]byte
	for {
		n, err := unix.Read(w.readFd, buf[:])
		if n <= 0 || err != nil {
			return
		}
	}
}

func (w *wakeupPipe) close() error {
	err1 := unix.Close(w.readFd)
	err2 := unix.Close(w.writeFd)
	if err1 != nil {
		return err1
	}
	return err2
}
