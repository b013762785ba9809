// Package gateway implements the content generation pipelines.
//
// Generate validates a request, fingerprints it, and serves identical
// requests from the bounded cache. On a miss it interpolates the block
// type's prompt template, calls the upstream generator under a timeout and
// stores the result. Refine, Outline and AltText call the upstream directly
// and are never cached.
//
// Every successful invocation appends one usage record, cached or not.
// Ledger and cache failures are logged and counted but never change the
// response. Validation failures are returned as *ValidationError before any
// external work; upstream failures are returned as *upstream.Error.
//
// Basic usage:
//
//	svc, err := gateway.NewService(gateway.Config{
//	    Generator: gen,
//	    Ledger:    usage.NewMemoryLedger(),
//	    Cache:     cache.NewMemoryCache(cache.DefaultPolicy()),
//	})
//	res, err := svc.Generate(ctx, gateway.GenerationRequest{
//	    BlockType: "text",
//	    Prompt:    "Explain photosynthesis",
//	    Context:   &gateway.CourseContext{CourseID: "c1"},
//	})
package gateway
