package observe

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	zapobserver "go.uber.org/zap/zaptest/observer"
)

type telemetry struct {
	recorder *tracetest.SpanRecorder
	reader   *sdkmetric.ManualReader
	tracer   Tracer
	metrics  Metrics
}

func newTelemetry(t *testing.T) telemetry {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	return telemetry{
		recorder: recorder,
		reader:   reader,
		tracer:   NewTracer(tp.Tracer("test")),
		metrics:  metrics,
	}
}

func (tm telemetry) collect(t *testing.T) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := tm.reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumValue(t *testing.T, rm metricdata.ResourceMetrics, name string, match ...attribute.KeyValue) int64 {
	t.Helper()
	m := findMetric(rm, name)
	if m == nil {
		return 0
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: expected Sum[int64], got %T", name, m.Data)
	}

	var total int64
	for _, dp := range sum.DataPoints {
		matched := true
		for _, kv := range match {
			if v, ok := dp.Attributes.Value(kv.Key); !ok || v != kv.Value {
				matched = false
				break
			}
		}
		if matched {
			total += dp.Value
		}
	}
	return total
}

func TestOperationMeta(t *testing.T) {
	meta := OperationMeta{Name: "outline"}
	if got := meta.SpanName(); got != "contentgate.outline" {
		t.Errorf("SpanName() = %q, want contentgate.outline", got)
	}
	if err := meta.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	if err := (OperationMeta{}).Validate(); !errors.Is(err, ErrMissingOperationName) {
		t.Errorf("Validate() = %v, want ErrMissingOperationName", err)
	}
}

func TestTracer_SpanAttributes(t *testing.T) {
	tm := newTelemetry(t)

	_, span := tm.tracer.StartSpan(context.Background(), OperationMeta{Name: "generate", BlockType: "quiz", CourseID: "c9"})
	tm.tracer.EndSpan(span, nil)

	spans := tm.recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	s := spans[0]
	if s.Name() != "contentgate.generate" {
		t.Errorf("span name = %q", s.Name())
	}
	if s.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", s.Status().Code)
	}

	attrs := make(map[attribute.Key]attribute.Value)
	for _, a := range s.Attributes() {
		attrs[a.Key] = a.Value
	}
	if attrs["operation.name"].AsString() != "generate" {
		t.Errorf("operation.name = %v", attrs["operation.name"])
	}
	if attrs["content.block_type"].AsString() != "quiz" {
		t.Errorf("content.block_type = %v", attrs["content.block_type"])
	}
	if attrs["course.id"].AsString() != "c9" {
		t.Errorf("course.id = %v", attrs["course.id"])
	}
}

func TestTracer_EndSpanWithError(t *testing.T) {
	tm := newTelemetry(t)

	_, span := tm.tracer.StartSpan(context.Background(), OperationMeta{Name: "refine"})
	tm.tracer.EndSpan(span, errors.New("upstream: timeout"))

	s := tm.recorder.Ended()[0]
	if s.Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", s.Status().Code)
	}
	if len(s.Events()) == 0 {
		t.Error("expected an exception event")
	}
}

func TestMetrics_Operation(t *testing.T) {
	tm := newTelemetry(t)
	ctx := context.Background()
	meta := OperationMeta{Name: "generate", BlockType: "text"}

	tm.metrics.RecordOperation(ctx, meta, 20*time.Millisecond, nil)
	tm.metrics.RecordOperation(ctx, meta, 30*time.Millisecond, errors.New("boom"))

	rm := tm.collect(t)
	if got := sumValue(t, rm, MetricOperationTotal); got != 2 {
		t.Errorf("%s = %d, want 2", MetricOperationTotal, got)
	}
	if got := sumValue(t, rm, MetricOperationErrors); got != 1 {
		t.Errorf("%s = %d, want 1", MetricOperationErrors, got)
	}

	hist := findMetric(rm, MetricOperationDuration)
	if hist == nil {
		t.Fatalf("%s not found", MetricOperationDuration)
	}
	data, ok := hist.Data.(metricdata.Histogram[float64])
	if !ok || len(data.DataPoints) == 0 || data.DataPoints[0].Count != 2 {
		t.Errorf("unexpected histogram data: %+v", hist.Data)
	}
}

func TestMetrics_CacheAndLedger(t *testing.T) {
	tm := newTelemetry(t)
	ctx := context.Background()

	tm.metrics.RecordCacheLookup(ctx, "text", false)
	tm.metrics.RecordCacheLookup(ctx, "text", true)
	tm.metrics.RecordCacheLookup(ctx, "text", true)
	tm.metrics.RecordCacheFault(ctx, "get")
	tm.metrics.RecordLedgerFailure(ctx, "generate")
	tm.metrics.RecordUpstreamCall(ctx, OperationMeta{Name: "generate"}, time.Second, "rate_limited")

	rm := tm.collect(t)
	if got := sumValue(t, rm, MetricCacheLookups, attribute.String("cache.result", "hit")); got != 2 {
		t.Errorf("cache hits = %d, want 2", got)
	}
	if got := sumValue(t, rm, MetricCacheLookups, attribute.String("cache.result", "miss")); got != 1 {
		t.Errorf("cache misses = %d, want 1", got)
	}
	if got := sumValue(t, rm, MetricCacheFaults); got != 1 {
		t.Errorf("cache faults = %d, want 1", got)
	}
	if got := sumValue(t, rm, MetricLedgerFailures, attribute.String("generation.type", "generate")); got != 1 {
		t.Errorf("ledger failures = %d, want 1", got)
	}
	if findMetric(rm, MetricUpstreamDuration) == nil {
		t.Errorf("%s not found", MetricUpstreamDuration)
	}
}

func TestMiddleware_SuccessPath(t *testing.T) {
	tm := newTelemetry(t)
	core, logs := zapobserver.New(zap.DebugLevel)
	mw := NewMiddleware(tm.tracer, tm.metrics, NewZapLogger(zap.New(core)))

	var sawSpan bool
	err := mw.Wrap(func(ctx context.Context, op OperationMeta) error {
		sawSpan = trace.SpanContextFromContext(ctx).IsValid()
		return nil
	})(context.Background(), OperationMeta{Name: "generate", BlockType: "text"})

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !sawSpan {
		t.Error("wrapped function should run inside the span")
	}
	if len(tm.recorder.Ended()) != 1 {
		t.Errorf("expected 1 span")
	}
	if got := sumValue(t, tm.collect(t), MetricOperationTotal); got != 1 {
		t.Errorf("operations = %d, want 1", got)
	}

	entries := logs.FilterMessage("operation completed").All()
	if len(entries) != 1 {
		t.Fatalf("expected completion log, got %d entries", logs.Len())
	}
	if entries[0].ContextMap()["operation"] != "generate" {
		t.Errorf("operation field = %v", entries[0].ContextMap()["operation"])
	}
}

func TestMiddleware_ErrorLevels(t *testing.T) {
	errCaller := errors.New("bad input")
	errSystem := errors.New("upstream down")

	tm := newTelemetry(t)
	core, logs := zapobserver.New(zap.DebugLevel)
	mw := NewMiddleware(tm.tracer, tm.metrics, NewZapLogger(zap.New(core)),
		WithExpectedErrors(func(err error) bool { return errors.Is(err, errCaller) }))

	for _, want := range []error{errCaller, errSystem} {
		got := mw.Wrap(func(ctx context.Context, op OperationMeta) error {
			return want
		})(context.Background(), OperationMeta{Name: "refine"})
		if !errors.Is(got, want) {
			t.Errorf("Wrap() error = %v, want %v", got, want)
		}
	}

	if n := logs.FilterMessage("operation rejected").FilterField(zap.String("error", "bad input")).Len(); n != 1 {
		t.Errorf("expected one debug rejection entry, got %d", n)
	}
	failed := logs.FilterMessage("operation failed").All()
	if len(failed) != 1 || failed[0].Level != zap.ErrorLevel {
		t.Errorf("expected one error-level failure entry, got %+v", failed)
	}
	if got := sumValue(t, tm.collect(t), MetricOperationErrors); got != 2 {
		t.Errorf("errors = %d, want 2", got)
	}
}

func TestMiddleware_NilComponents(t *testing.T) {
	mw := NewMiddleware(nil, nil, nil)
	err := mw.Wrap(func(ctx context.Context, op OperationMeta) error { return nil })(context.Background(), OperationMeta{Name: "x"})
	if err != nil {
		t.Errorf("Wrap() error = %v", err)
	}
	if mw.Metrics() == nil || mw.Logger() == nil {
		t.Error("defaults should be non-nil")
	}
}

func TestMiddlewareFromObserver_Nil(t *testing.T) {
	if _, err := MiddlewareFromObserver(nil); !errors.Is(err, ErrNilObserver) {
		t.Errorf("error = %v, want ErrNilObserver", err)
	}
}
