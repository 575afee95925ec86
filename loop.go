package evrt

import "time"

// Loop is the single-threaded reactor: one Backend, one timer wheel, one
// task executor, and the cross-thread mailbox other goroutines reach it
// through. Every method except Handle and the mailbox it returns must
// only be called from the goroutine running Loop.Run (spec.md §4).
type Loop struct {
	backend  Backend
	sources  *sourceTable
	timers   *timerWheel
	executor *executor
	mbox     *mailbox
	handle   Handle

	wakeup *wakeupPipe

	logger  Logger
	metrics Metrics
	trace   bool

	exitRequested bool
}

// NewLoop constructs a Loop with the given options applied. The default
// backend is epoll on Linux, poll(2) elsewhere (spec.md §6).
func NewLoop(opts ...LoopOption) (*Loop, error) {
	cfg, err := resolveLoopOptions(opts)
	if err != nil {
		return nil, err
	}

	backend, err := newBackend(cfg.backendKind)
	if err != nil {
		return nil, err
	}

	wakeup, err := newWakeupPipe()
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	l := &Loop{
		backend:  backend,
		sources:  newSourceTable(),
		timers:   &timerWheel{},
		executor: newExecutor(),
		wakeup:   wakeup,
		logger:   cfg.logger,
		metrics:  cfg.metrics,
		trace:    cfg.trace,
	}
	l.mbox = &mailbox{wake: l.wakeup.wake}
	l.handle = Handle{mailbox: l.mbox}

	if err := l.backend.Register(l.wakeup.readFd, Readable); err != nil {
		_ = l.wakeup.close()
		_ = backend.Close()
		return nil, err
	}
	l.sources.add(l.wakeup.readFd, Readable, func(l *Loop, ready Ready) {
		l.wakeup.drain()
	})

	return l, nil
}

// Handle returns the cross-thread reference other goroutines use to post
// work onto this loop.
func (l *Loop) Handle() Handle { return l.handle }

// RequestStop asks the loop to exit at the end of the current dispatch
// cycle. Safe to call from the loop's own goroutine (e.g. from a task's
// Poll); from elsewhere, route through Handle.Post.
func (l *Loop) RequestStop() {
	l.exitRequested = true
}

// Logger returns the logger this loop was configured with.
func (l *Loop) Logger() Logger { return l.logger }

// Metrics returns the metrics sink this loop was configured with.
func (l *Loop) Metrics() Metrics { return l.metrics }

// Run drives the dispatch cycle until RequestStop is called (on this
// goroutine, or via Handle.Post from another). The cycle, per iteration
// (spec.md §4.4):
//
//  1. Drain the cross-thread mailbox and run each posted job.
//  2. Fire every timer whose deadline has passed.
//  3. Run every task that was ready at the start of this step.
//  4. Exit if requested.
//  5. Compute how long the backend may block: zero if tasks are already
//     queued to run, the next timer deadline if one exists, otherwise
//     indefinitely. Mailbox posts are not checked here; each one writes
//     the wakeup pipe, which ends the wait.
//  6. Block in the backend for readiness events.
//  7. Dispatch each event to its Source, with detach/reinsert protecting
//     against reentrant table mutation.
//  8. Apply deferred table mutations queued during dispatch.
func (l *Loop) Run() {
	for {
		for _, job := range l.mbox.drain() {
			job(l)
		}

		l.timers.fireExpired(time.Now(), func() bool { return l.exitRequested })

		ran := len(l.executor.ready)
		l.executor.drainReady(l)
		l.metrics.TasksReady(ran)
		l.metrics.ActiveTasks(l.executor.live)
		l.metrics.PendingTimers(l.timers.len())

		if l.exitRequested {
			return
		}

		timeout := l.computeTimeout()

		waitStart := time.Now()
		events, err := l.backend.Wait(timeout)
		waited := time.Since(waitStart)
		if err != nil {
			l.logger.Errorf("evrt: backend wait: %v", err)
		}
		if l.trace {
			l.logger.Debugf("evrt: dispatch batch: %d event(s)", len(events))
		}
		l.metrics.DispatchBatch(len(events), waited.Nanoseconds())

		l.sources.beginBatch()
		for _, ev := range events {
			fd, ready := ev.Fd, ev.Ready
			l.sources.dispatchOne(fd, ready, func(cb sourceCallback) {
				cb(l, ready)
			})
		}
		l.sources.endBatch()
		l.metrics.ActiveSources(l.sources.len())
	}
}

// computeTimeout returns the duration Backend.Wait may block for: zero
// if tasks are already queued to run, the time remaining until the next
// timer, or nil to block indefinitely.
func (l *Loop) computeTimeout() *time.Duration {
	if len(l.executor.ready) > 0 {
		zero := time.Duration(0)
		return &zero
	}

	deadline, ok := l.timers.peekDeadline()
	if !ok {
		return nil
	}
	d := time.Until(deadline)
	if d < 0 {
		d = 0
	}
	return &d
}

// Close releases the loop's OS resources. Call only after Run has
// returned.
func (l *Loop) Close() error {
	l.mbox.close()
	err1 := l.backend.Close()
	err2 := l.wakeup.close()
	if err1 != nil {
		return err1
	}
	return err2
}
