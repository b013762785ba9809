// Package resilience bounds calls to the upstream generation service.
//
// Two patterns are provided and composed by [Executor]:
//
//   - Timeout: fails fast with ErrTimeout once a deadline passes. The
//     operation keeps running in the background with a cancelled context.
//
//   - Bulkhead: limits the number of concurrent upstream calls. Waiting for
//     a slot counts against the surrounding timeout.
//
// There is no retry pattern. A failed upstream call is reported to the
// client, which decides whether to try again.
//
// # Usage
//
//	exec := resilience.NewExecutor(
//	    resilience.WithTimeout(30*time.Second),
//	    resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{
//	        MaxConcurrent: 8,
//	    })),
//	)
//
//	resp, err := resilience.Do(ctx, exec, func(ctx context.Context) (*upstream.Response, error) {
//	    return gen.Invoke(ctx, prompt)
//	})
package resilience
