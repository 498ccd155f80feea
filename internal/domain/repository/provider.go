package repository

import "context"

// Provider model backend turning a prompt into text
type Provider interface {
	// Generate sends a single prompt and returns the single text reply.
	Generate(ctx context.Context, prompt string) (string, error)

	// Name describes the backend for logs.
	Name() string
}
