package observe

import (
	"context"
	"time"
)

// ExecuteFunc is the signature Middleware wraps.
type ExecuteFunc func(ctx context.Context, op OperationMeta) error

// Middleware wraps gateway operations with tracing, metrics, and logging.
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe ExecuteFunc.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from the wrapped function are recorded and propagated unchanged.
type Middleware struct {
	tracer   Tracer
	metrics  Metrics
	logger   Logger
	expected func(error) bool
}

// MiddlewareOption configures a Middleware.
type MiddlewareOption func(*Middleware)

// WithExpectedErrors marks errors caused by the caller. They are logged at
// debug level instead of error level.
func WithExpectedErrors(fn func(error) bool) MiddlewareOption {
	return func(m *Middleware) {
		m.expected = fn
	}
}

// NewMiddleware creates a new Middleware with the given observability components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger, opts ...MiddlewareOption) *Middleware {
	if tracer == nil {
		tracer = NewTracer(nil)
	}
	if metrics == nil {
		metrics = NoopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}

	m := &Middleware{
		tracer:   tracer,
		metrics:  metrics,
		logger:   logger,
		expected: func(error) bool { return false },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Wrap wraps fn with a span, operation metrics and a completion log line.
func (m *Middleware) Wrap(fn ExecuteFunc) ExecuteFunc {
	return func(ctx context.Context, op OperationMeta) error {
		ctx, span := m.tracer.StartSpan(ctx, op)
		start := time.Now()

		err := fn(ctx, op)

		duration := time.Since(start)
		m.tracer.EndSpan(span, err)
		m.metrics.RecordOperation(ctx, op, duration, err)

		opLogger := m.logger.WithOperation(op)
		fields := []Field{F("duration_ms", float64(duration.Milliseconds()))}

		switch {
		case err == nil:
			opLogger.Info(ctx, "operation completed", fields...)
		case m.expected(err):
			opLogger.Debug(ctx, "operation rejected", append(fields, F("error", err))...)
		default:
			opLogger.Error(ctx, "operation failed", append(fields, F("error", err))...)
		}

		return err
	}
}

// Metrics returns the metrics recorder used by the middleware.
func (m *Middleware) Metrics() Metrics {
	return m.metrics
}

// Logger returns the logger used by the middleware.
func (m *Middleware) Logger() Logger {
	return m.logger
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer, opts ...MiddlewareOption) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger(), opts...), nil
}
