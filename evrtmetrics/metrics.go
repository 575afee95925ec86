// Package evrtmetrics exposes a Loop's runtime counters as Prometheus
// collectors.
package evrtmetrics

import (
	"github.com/go-evrt/evrt"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a Prometheus-backed evrt.Metrics. Register its Collectors
// with a prometheus.Registerer to expose them over /metrics.
type Metrics struct {
	dispatchBatches prometheus.Counter
	dispatchEvents  prometheus.Counter
	waitSeconds     prometheus.Histogram
	tasksReady      prometheus.Histogram
	activeTasks     prometheus.Gauge
	activeSources   prometheus.Gauge
	pendingTimers   prometheus.Gauge
}

// New builds a Metrics with every collector prefixed "evrt_".
func New() *Metrics {
	return &Metrics{
		dispatchBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "evrt_dispatch_batches_total",
			Help: "Number of readiness-dispatch passes completed.",
		}),
		dispatchEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "evrt_dispatch_events_total",
			Help: "Number of readiness events dispatched.",
		}),
		waitSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "evrt_backend_wait_seconds",
			Help:    "Time spent blocked in the readiness backend per dispatch cycle.",
			Buckets: prometheus.DefBuckets,
		}),
		tasksReady: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "evrt_tasks_ready",
			Help:    "Number of tasks run per executor drain.",
			Buckets: prometheus.LinearBuckets(0, 4, 10),
		}),
		activeTasks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "evrt_active_tasks",
			Help: "Number of spawned tasks that have not yet finished.",
		}),
		activeSources: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "evrt_active_sources",
			Help: "Number of file descriptors currently registered with the backend.",
		}),
		pendingTimers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "evrt_pending_timers",
			Help: "Number of timers currently scheduled.",
		}),
	}
}

// Collectors returns every collector, for bulk registration.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.dispatchBatches,
		m.dispatchEvents,
		m.waitSeconds,
		m.tasksReady,
		m.activeTasks,
		m.activeSources,
		m.pendingTimers,
	}
}

func (m *Metrics) DispatchBatch(events int, waitNanos int64) {
	m.dispatchBatches.Inc()
	m.dispatchEvents.Add(float64(events))
	m.waitSeconds.Observe(float64(waitNanos) / 1e9)
}

func (m *Metrics) TasksReady(n int)    { m.tasksReady.Observe(float64(n)) }
func (m *Metrics) ActiveTasks(n int)   { m.activeTasks.Set(float64(n)) }
func (m *Metrics) ActiveSources(n int) { m.activeSources.Set(float64(n)) }
func (m *Metrics) PendingTimers(n int) { m.pendingTimers.Set(float64(n)) }

var _ evrt.Metrics = (*Metrics)(nil)
