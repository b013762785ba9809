// Package upstream defines the contract of the external text-generation
// service and adapts the Anthropic Messages API to it.
package upstream

import "context"

// Response is the result of one upstream generation call.
type Response struct {
	Text string
	// TokensUsed is nil when the service did not report usage.
	TokensUsed *int
}

// Generator turns a fully built prompt into generated text.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: failures should be *Error; callers Classify anything else.
// - Retries: implementations must not retry.
type Generator interface {
	Invoke(ctx context.Context, prompt string) (*Response, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (*Response, error)

// Invoke calls f.
func (f GeneratorFunc) Invoke(ctx context.Context, prompt string) (*Response, error) {
	return f(ctx, prompt)
}
