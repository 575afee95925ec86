//go:build linux

package evrt

import (
	"time"

	"golang.org/x/sys/unix"
)

// maxEpollEvents is the size of the preallocated kernel event buffer, per
// spec.md §4.1 ("preallocated event buffer (1024 entries)").
const maxEpollEvents = 1024

// epollBackend is the Linux epoll(7)-backed backend. The kernel always
// reports error/hangup regardless of the registered interest, so Register
// only has to translate Readable/Writable into EPOLLIN/EPOLLOUT; the
// user-data field carries the raw fd, so no per-registration heap slot is
// needed (spec.md §4.1).
type epollBackend struct {
	epfd   int
	events [maxEpollEvents]unix.EpollEvent
}

func newEpollBackend() (*epollBackend, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, &OpError{Op: "epoll_create1", Fd: -1, Err: err}
	}
	return &epollBackend{epfd: epfd}, nil
}

func epollEventMask(interest Interest) uint32 {
	var mask uint32
	if interest&Readable != 0 {
		mask |= unix.EPOLLIN
	}
	if interest&Writable != 0 {
		mask |= unix.EPOLLOUT
	}
	return mask
}

func (b *epollBackend) Register(fd int, interest Interest) error {
	ev := unix.EpollEvent{Events: epollEventMask(interest), Fd: int32(fd)}
	if err := unix.EpollCtl(b.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return &OpError{Op: "epoll_ctl_add", Fd: fd, Err: err}
	}
	return nil
}

func (b *epollBackend) Deregister(fd int) error {
	if err := unix.EpollCtl(b.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		if err == unix.ENOENT || err == unix.EBADF {
			return nil
		}
		return &OpError{Op: "epoll_ctl_del", Fd: fd, Err: err}
	}
	return nil
}

func (b *epollBackend) Wait(timeout *time.Duration) ([]Event, error) {
	ms := -1
	if timeout != nil {
		ms = saturateMillis(*timeout)
	}

	n, err := unix.EpollWait(b.epfd, b.events[:], ms)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, &OpError{Op: "epoll_wait", Fd: -1, Err: err}
	}

	if n == 0 {
		return nil, nil
	}
	events := make([]Event, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, Event{
			Fd:    int(b.events[i].Fd),
			Ready: epollToReady(b.events[i].Events),
		})
	}
	return events, nil
}

func (b *epollBackend) Close() error {
	return unix.Close(b.epfd)
}

func epollToReady(mask uint32) Ready {
	return Ready{
		Readable: mask&(unix.EPOLLIN|unix.EPOLLPRI) != 0,
		Writable: mask&unix.EPOLLOUT != 0,
		Error:    mask&unix.EPOLLERR != 0,
		Hangup:   mask&(unix.EPOLLHUP|unix.EPOLLRDHUP) != 0,
	}
}

func defaultBackendKind() BackendKind {
	return BackendEpoll
}

func newBackend(kind BackendKind) (Backend, error) {
	switch kind {
	case BackendEpoll:
		return newEpollBackend()
	case BackendPoll:
		return newPollBackend()
	default:
		return nil, ErrUnsupportedBackend
	}
}
