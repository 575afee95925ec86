//go:build unix

package evrt

import (
	"time"

	"golang.org/x/sys/unix"
)

// pollBackend is the portable level-triggered backend, built on poll(2).
// It keeps a compact vector of poll descriptors alongside a fd→index map
// so that Register/Deregister stay O(1) amortised; Deregister uses
// swap-remove and fixes up the displaced fd's index.
type pollBackend struct {
	fds     []unix.PollFd
	indexOf map[int]int
}

func newPollBackend() (*pollBackend, error) {
	return &pollBackend{
		indexOf: make(map[int]int),
	}, nil
}

func pollEvents(interest Interest) int16 {
	var ev int16
	if interest&Readable != 0 {
		ev |= unix.POLLIN
	}
	if interest&Writable != 0 {
		ev |= unix.POLLOUT
	}
	return ev
}

func (b *pollBackend) Register(fd int, interest Interest) error {
	if _, ok := b.indexOf[fd]; ok {
		// Re-registration is a tolerated no-op.
		return nil
	}
	b.indexOf[fd] = len(b.fds)
	b.fds = append(b.fds, unix.PollFd{Fd: int32(fd), Events: pollEvents(interest)})
	return nil
}

func (b *pollBackend) Deregister(fd int) error {
	idx, ok := b.indexOf[fd]
	if !ok {
		return nil
	}
	last := len(b.fds) - 1
	if idx != last {
		b.fds[idx] = b.fds[last]
		b.indexOf[int(b.fds[idx].Fd)] = idx
	}
	b.fds = b.fds[:last]
	delete(b.indexOf, fd)
	return nil
}

func (b *pollBackend) Wait(timeout *time.Duration) ([]Event, error) {
	for i := range b.fds {
		b.fds[i].Revents = 0
	}

	ms := -1
	if timeout != nil {
		ms = saturateMillis(*timeout)
	}

	_, err := unix.Poll(b.fds, ms)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, &OpError{Op: "poll", Fd: -1, Err: err}
	}

	var events []Event
	for _, pfd := range b.fds {
		ready := pollfdToReady(pfd.Revents)
		if ready.Any() {
			events = append(events, Event{Fd: int(pfd.Fd), Ready: ready})
		}
	}
	return events, nil
}

func (b *pollBackend) Close() error {
	return nil
}

func pollfdToReady(revents int16) Ready {
	return Ready{
		Readable: revents&(unix.POLLIN|unix.POLLPRI) != 0,
		Writable: revents&unix.POLLOUT != 0,
		Error:    revents&unix.POLLERR != 0,
		Hangup:   revents&(unix.POLLHUP|unix.POLLRDHUP|unix.POLLNVAL) != 0,
	}
}

// saturateMillis clamps d to the range a platform int can hold when
// passed to poll(2)/epoll_wait(2) as a millisecond timeout.
func saturateMillis(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	ms := d.Milliseconds()
	const maxInt = int64(^uint(0) >> 1)
	if ms > maxInt {
		return int(maxInt)
	}
	return int(ms)
}
