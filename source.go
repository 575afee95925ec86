package evrt

// sourceCallback is invoked with the loop and the readiness observed for
// the owning fd.
type sourceCallback func(l *Loop, ready Ready)

// source is the loop's record of one fd registration together with its
// dispatch callback (spec.md §3 "Source").
type source struct {
	fd       int
	interest Interest
	callback sourceCallback
}

// sourceTable owns the fd→Source map and the bookkeeping needed to let a
// callback safely mutate the table it is itself being dispatched from
// (spec.md §4.4 step 7–8, §9 "Reentrancy into the source table").
//
// Invariant: during dispatch of fd F, sources[F] is absent — the entry is
// detached before the callback runs and only reinserted (or replaced, or
// dropped) once the callback returns.
type sourceTable struct {
	sources map[int]*source

	inDispatch    bool
	pendingAdd    map[int]*source
	pendingRemove map[int]bool
}

func newSourceTable() *sourceTable {
	return &sourceTable{
		sources:       make(map[int]*source),
		pendingAdd:    make(map[int]*source),
		pendingRemove: make(map[int]bool),
	}
}

func (t *sourceTable) len() int { return len(t.sources) }

// add installs (or, during dispatch, queues) a Source for fd.
func (t *sourceTable) add(fd int, interest Interest, cb sourceCallback) {
	src := &source{fd: fd, interest: interest, callback: cb}
	if t.inDispatch {
		delete(t.pendingRemove, fd)
		t.pendingAdd[fd] = src
		return
	}
	t.sources[fd] = src
}

// remove drops (or, during dispatch, queues the drop of) fd's Source.
// Unknown fds are tolerated silently.
func (t *sourceTable) remove(fd int) {
	if t.inDispatch {
		delete(t.pendingAdd, fd)
		t.pendingRemove[fd] = true
		return
	}
	delete(t.sources, fd)
}

// beginBatch marks the start of a readiness-dispatch pass (spec.md §4.4
// step 7). Must be paired with endBatch once every fd in the batch has
// been dispatched.
func (t *sourceTable) beginBatch() {
	t.inDispatch = true
}

// dispatchOne detaches fd's Source (if any), runs cb with it, and then
// reinserts it unless the callback itself removed or replaced fd's own
// registration. Mutations the callback made to *other* fds remain queued
// until endBatch.
func (t *sourceTable) dispatchOne(fd int, ready Ready, run func(cb sourceCallback)) {
	src, ok := t.sources[fd]
	if !ok {
		return
	}
	delete(t.sources, fd)

	run(src.callback)

	if t.pendingRemove[fd] {
		delete(t.pendingRemove, fd)
		delete(t.pendingAdd, fd)
		return
	}
	if replacement, ok := t.pendingAdd[fd]; ok {
		delete(t.pendingAdd, fd)
		t.sources[fd] = replacement
		return
	}
	t.sources[fd] = src
}

// endBatch applies mutations queued against fds other than the one being
// actively dispatched when they were requested: pending removals first,
// then pending additions (spec.md §4.4 step 8).
func (t *sourceTable) endBatch() {
	for fd := range t.pendingRemove {
		delete(t.sources, fd)
	}
	for k := range t.pendingRemove {
		delete(t.pendingRemove, k)
	}
	for fd, src := range t.pendingAdd {
		t.sources[fd] = src
		delete(t.pendingAdd, fd)
	}
	t.inDispatch = false
}
