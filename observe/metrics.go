package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric instrument names.
const (
	MetricOperationTotal    = "contentgate.operation.total"
	MetricOperationErrors   = "contentgate.operation.errors"
	MetricOperationDuration = "contentgate.operation.duration_ms"
	MetricCacheLookups      = "contentgate.cache.lookups"
	MetricCacheFaults       = "contentgate.cache.faults"
	MetricLedgerFailures    = "contentgate.ledger.write_failures"
	MetricUpstreamDuration  = "contentgate.upstream.duration_ms"
)

// Metrics records gateway metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordOperation records one pipeline invocation.
	RecordOperation(ctx context.Context, meta OperationMeta, duration time.Duration, err error)

	// RecordCacheLookup records a cache hit or miss for a block type.
	RecordCacheLookup(ctx context.Context, blockType string, hit bool)

	// RecordCacheFault records an internal cache failure treated as a miss.
	RecordCacheFault(ctx context.Context, stage string)

	// RecordLedgerFailure records a usage record that could not be written.
	RecordLedgerFailure(ctx context.Context, generationType string)

	// RecordUpstreamCall records one upstream call. kind is empty on success.
	RecordUpstreamCall(ctx context.Context, meta OperationMeta, duration time.Duration, kind string)
}

type metricsImpl struct {
	totalCount     metric.Int64Counter
	errorCount     metric.Int64Counter
	durationHist   metric.Float64Histogram
	cacheLookups   metric.Int64Counter
	cacheFaults    metric.Int64Counter
	ledgerFailures metric.Int64Counter
	upstreamHist   metric.Float64Histogram
}

// NewMetrics creates the gateway instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	m := &metricsImpl{}
	var err error

	if m.totalCount, err = meter.Int64Counter(MetricOperationTotal,
		metric.WithDescription("Total number of gateway operations"),
		metric.WithUnit("{call}"),
	); err != nil {
		return nil, err
	}

	if m.errorCount, err = meter.Int64Counter(MetricOperationErrors,
		metric.WithDescription("Total number of failed gateway operations"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, err
	}

	if m.durationHist, err = meter.Float64Histogram(MetricOperationDuration,
		metric.WithDescription("Gateway operation duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}

	if m.cacheLookups, err = meter.Int64Counter(MetricCacheLookups,
		metric.WithDescription("Generation cache lookups by result"),
		metric.WithUnit("{lookup}"),
	); err != nil {
		return nil, err
	}

	if m.cacheFaults, err = meter.Int64Counter(MetricCacheFaults,
		metric.WithDescription("Internal cache failures degraded to a miss"),
		metric.WithUnit("{fault}"),
	); err != nil {
		return nil, err
	}

	if m.ledgerFailures, err = meter.Int64Counter(MetricLedgerFailures,
		metric.WithDescription("Usage records dropped after a write failure"),
		metric.WithUnit("{record}"),
	); err != nil {
		return nil, err
	}

	if m.upstreamHist, err = meter.Float64Histogram(MetricUpstreamDuration,
		metric.WithDescription("Upstream generation call duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *metricsImpl) RecordOperation(ctx context.Context, meta OperationMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(meta.attributes()...)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *metricsImpl) RecordCacheLookup(ctx context.Context, blockType string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("content.block_type", blockType),
		attribute.String("cache.result", result),
	))
}

func (m *metricsImpl) RecordCacheFault(ctx context.Context, stage string) {
	m.cacheFaults.Add(ctx, 1, metric.WithAttributes(attribute.String("cache.stage", stage)))
}

func (m *metricsImpl) RecordLedgerFailure(ctx context.Context, generationType string) {
	m.ledgerFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("generation.type", generationType)))
}

func (m *metricsImpl) RecordUpstreamCall(ctx context.Context, meta OperationMeta, duration time.Duration, kind string) {
	attrs := meta.attributes()
	if kind == "" {
		kind = "ok"
	}
	attrs = append(attrs, attribute.String("upstream.result", kind))
	m.upstreamHist.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// NoopMetrics returns a Metrics that records nothing.
func NoopMetrics() Metrics {
	return noopMetrics{}
}

type noopMetrics struct{}

func (noopMetrics) RecordOperation(context.Context, OperationMeta, time.Duration, error) {}

func (noopMetrics) RecordCacheLookup(context.Context, string, bool) {}

func (noopMetrics) RecordCacheFault(context.Context, string) {}

func (noopMetrics) RecordLedgerFailure(context.Context, string) {}

func (noopMetrics) RecordUpstreamCall(context.Context, OperationMeta, time.Duration, string) {}
