// Package llm provides completion-service client implementations.
package llm

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the completion service could not be reached.
// Callers should degrade (keyword routing) rather than fail the request.
var ErrUnavailable = errors.New("completion service unavailable")

// Client is the interface that all completion providers implement.
type Client interface {
	// Complete sends a prompt and returns the raw completion text.
	// stop sequences, when supported by the provider, truncate generation.
	Complete(ctx context.Context, prompt string, stop ...string) (string, error)

	// Ping checks if the provider is reachable.
	Ping(ctx context.Context) error
}
