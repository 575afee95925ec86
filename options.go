package evrt

// loopOptions holds configuration resolved from a chain of LoopOption
// values.
type loopOptions struct {
	backendKind BackendKind
	logger      Logger
	metrics     Metrics
	trace       bool
}

// LoopOption configures a Loop at construction time.
type LoopOption interface {
	applyLoop(*loopOptions) error
}

type loopOptionFunc func(*loopOptions) error

func (f loopOptionFunc) applyLoop(opts *loopOptions) error { return f(opts) }

// WithBackend selects which readiness multiplexer the loop uses. Passing
// BackendEpoll on a non-Linux target surfaces ErrUnsupportedBackend from
// NewLoop.
func WithBackend(kind BackendKind) LoopOption {
	return loopOptionFunc(func(opts *loopOptions) error {
		opts.backendKind = kind
		return nil
	})
}

// WithLogger attaches a structured logger. The default is a no-op
// logger, so omitting this option is always safe.
func WithLogger(logger Logger) LoopOption {
	return loopOptionFunc(func(opts *loopOptions) error {
		opts.logger = logger
		return nil
	})
}

// WithMetrics attaches a metrics sink the loop reports gauges and
// counters to. The default is a no-op sink.
func WithMetrics(metrics Metrics) LoopOption {
	return loopOptionFunc(func(opts *loopOptions) error {
		opts.metrics = metrics
		return nil
	})
}

// WithTrace enables per-batch diagnostic logging of dispatch cycles, the
// same toggle the EVLOOP_TRACE environment variable controls for
// cmd/evrtd.
func WithTrace(enabled bool) LoopOption {
	return loopOptionFunc(func(opts *loopOptions) error {
		opts.trace = enabled
		return nil
	})
}

// resolveLoopOptions applies opts over the package defaults.
func resolveLoopOptions(opts []LoopOption) (*loopOptions, error) {
	cfg := &loopOptions{
		backendKind: DefaultBackendKind(),
		logger:      NewNoopLogger(),
		metrics:     NewNoopMetrics(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyLoop(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
