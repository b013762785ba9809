package resilience

import (
	"context"
	"testing"
	"time"
)

// BenchmarkBulkhead_Execute measures uncontended slot acquisition.
func BenchmarkBulkhead_Execute(b *testing.B) {
	bh := NewBulkhead(BulkheadConfig{MaxConcurrent: 100})
	ctx := context.Background()
	op := func(ctx context.Context) error { return nil }

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = bh.Execute(ctx, op)
	}
}

// BenchmarkBulkhead_Concurrent measures contended slot acquisition.
func BenchmarkBulkhead_Concurrent(b *testing.B) {
	bh := NewBulkhead(BulkheadConfig{MaxConcurrent: 4})
	ctx := context.Background()
	op := func(ctx context.Context) error { return nil }

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = bh.Execute(ctx, op)
		}
	})
}

// BenchmarkTimeout_Execute_Fast measures the goroutine and timer overhead.
func BenchmarkTimeout_Execute_Fast(b *testing.B) {
	t := NewTimeout(TimeoutConfig{Timeout: time.Second})
	ctx := context.Background()
	op := func(ctx context.Context) error { return nil }

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = t.Execute(ctx, op)
	}
}

// BenchmarkExecutor_Full measures a timeout plus bulkhead chain.
func BenchmarkExecutor_Full(b *testing.B) {
	e := NewExecutor(
		WithTimeout(time.Second),
		WithBulkhead(NewBulkhead(BulkheadConfig{MaxConcurrent: 100})),
	)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Do(ctx, e, func(ctx context.Context) (int, error) { return i, nil })
	}
}
