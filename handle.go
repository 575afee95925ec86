package evrt

import "sync"

// Handle is a cheap-to-clone, thread-safe reference to a running Loop. It
// is the only supported way to reach a Loop from a goroutine other than
// the one executing Loop.Run (spec.md §4.2).
type Handle struct {
	mailbox *mailbox
}

// mailbox is the cross-thread inbox a Loop drains once per dispatch cycle.
// Posting and waking are decoupled from the loop's own state so any
// goroutine can call Post without synchronising with a running poll.
type mailbox struct {
	wake func()

	mu     sync.Mutex
	closed bool
	jobs   []func(l *Loop)
}

// Post enqueues fn to run on the loop's own goroutine at the start of its
// next dispatch cycle, and nudges the loop out of a blocking wait. It
// returns ErrMailboxClosed once the owning loop has shut down; fn is not
// invoked in that case.
func (h Handle) Post(fn func(l *Loop)) error {
	m := h.mailbox
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrMailboxClosed
	}
	m.jobs = append(m.jobs, fn)
	m.mu.Unlock()
	m.wake()
	return nil
}

// drain hands back every queued job and empties the mailbox. Called only
// from the loop's own goroutine.
func (m *mailbox) drain() []func(l *Loop) {
	m.mu.Lock()
	jobs := m.jobs
	m.jobs = nil
	m.mu.Unlock()
	return jobs
}

// close marks the mailbox closed; subsequent Post calls fail fast instead
// of silently queuing work nobody will ever run.
func (m *mailbox) close() {
	m.mu.Lock()
	m.closed = true
	m.jobs = nil
	m.mu.Unlock()
}
