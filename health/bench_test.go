package health

import (
	"context"
	"fmt"
	"testing"
)

func BenchmarkAggregator_CheckAll(b *testing.B) {
	for _, n := range []int{1, 4, 16} {
		b.Run(fmt.Sprintf("checkers=%d", n), func(b *testing.B) {
			agg := NewAggregator()
			for i := range n {
				agg.Register(staticChecker(fmt.Sprintf("c%d", i), StatusHealthy))
			}
			ctx := context.Background()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = agg.CheckAll(ctx)
			}
		})
	}
}
