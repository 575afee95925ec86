package evrt

// Metrics is the sink the loop reports runtime counters and gauges to.
// evrt/evrtmetrics provides a Prometheus-backed implementation; tests
// and callers who don't care use NewNoopMetrics.
type Metrics interface {
	// DispatchBatch records one readiness-dispatch pass: how many events
	// it carried and how long Backend.Wait blocked, in nanoseconds.
	DispatchBatch(events int, waitNanos int64)

	// TasksReady records how many tasks were run in one executor drain.
	TasksReady(n int)

	// ActiveTasks reports the current number of live (spawned, not yet
	// finished) tasks.
	ActiveTasks(n int)

	// ActiveSources reports the current number of registered fds.
	ActiveSources(n int)

	// PendingTimers reports the current number of scheduled timers.
	PendingTimers(n int)
}

type noopMetrics struct{}

func (noopMetrics) DispatchBatch(int, int64) {}
func (noopMetrics) TasksReady(int)           {}
func (noopMetrics) ActiveTasks(int)          {}
func (noopMetrics) ActiveSources(int)        {}
func (noopMetrics) PendingTimers(int)        {}

// NewNoopMetrics returns a Metrics that discards every call.
func NewNoopMetrics() Metrics { return noopMetrics{} }
