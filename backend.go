package evrt

import "time"

// Interest is a registration-time hint telling a Backend which readiness
// classes to report for a file descriptor.
type Interest uint8

const (
	// Readable requests read-readiness notifications.
	Readable Interest = 1 << iota
	// Writable requests write-readiness notifications.
	Writable
	// ReadWrite requests both.
	ReadWrite = Readable | Writable
)

func (i Interest) String() string {
	switch i {
	case Readable:
		return "readable"
	case Writable:
		return "writable"
	case ReadWrite:
		return "read-write"
	default:
		return "none"
	}
}

// Ready is the 4-flag readiness bundle a Backend reports per fd per
// wakeup. Error and Hangup are delivered regardless of the Interest that
// was registered.
type Ready struct {
	Readable bool
	Writable bool
	Error    bool
	Hangup   bool
}

// Any reports whether at least one bit is set.
func (r Ready) Any() bool {
	return r.Readable || r.Writable || r.Error || r.Hangup
}

// Merge ORs the bits of other into r.
func (r Ready) Merge(other Ready) Ready {
	return Ready{
		Readable: r.Readable || other.Readable,
		Writable: r.Writable || other.Writable,
		Error:    r.Error || other.Error,
		Hangup:   r.Hangup || other.Hangup,
	}
}

// Event pairs a file descriptor with the readiness a Backend observed
// for it in one Wait call.
type Event struct {
	Fd    int
	Ready Ready
}

// BackendKind selects which readiness multiplexer a Loop constructs.
type BackendKind uint8

const (
	// BackendEpoll selects the Linux epoll(7)-backed backend.
	BackendEpoll BackendKind = iota
	// BackendPoll selects the portable poll(2)-backed backend.
	BackendPoll
)

func (k BackendKind) String() string {
	switch k {
	case BackendEpoll:
		return "epoll"
	case BackendPoll:
		return "poll"
	default:
		return "unknown"
	}
}

// DefaultBackendKind is epoll on Linux, poll everywhere else, matching
// spec.md §6's command-line selection default.
func DefaultBackendKind() BackendKind {
	return defaultBackendKind()
}

// Backend abstracts a platform-specific readiness multiplexer. All
// methods are called only from the loop's own goroutine.
type Backend interface {
	// Register arranges for subsequent Wait calls to report events for fd
	// consistent with interest. Re-registering a known fd is a no-op on
	// the portable backend; the epoll backend surfaces the kernel's
	// EEXIST unchanged (see DESIGN.md, "double registration").
	Register(fd int, interest Interest) error

	// Deregister silently tolerates an unknown fd.
	Deregister(fd int) error

	// Wait blocks up to timeout (nil means indefinitely) and returns one
	// Event per fd that reported non-zero readiness. Spurious empty
	// returns are allowed.
	Wait(timeout *time.Duration) ([]Event, error)

	// Close releases the backend's OS resources.
	Close() error
}
