// Package llm defines the text-generation boundary the agent core depends on.
//
// The core treats generation as an opaque, fallible function from prompt to
// text. Production wiring uses the Anthropic-backed implementation in
// llm/anthropic; tests substitute scripted generators.
package llm

import "context"

// Generator produces text for a prompt. Implementations may fail on network
// or model errors; callers are expected to degrade rather than abort.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
