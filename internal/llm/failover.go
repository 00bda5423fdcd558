package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Failover tries each client in order, moving on when one is unavailable.
// Non-availability errors (bad request, malformed response) are returned
// immediately since retrying another provider won't fix the input.
type Failover struct {
	clients []Client
	logger  *slog.Logger
}

// NewFailover creates a failover wrapper over the given clients.
func NewFailover(logger *slog.Logger, clients ...Client) *Failover {
	return &Failover{clients: clients, logger: logger}
}

// Complete tries each provider until one responds.
func (f *Failover) Complete(ctx context.Context, prompt string, stop ...string) (string, error) {
	if len(f.clients) == 0 {
		return "", ErrUnavailable
	}

	var lastErr error
	for i, c := range f.clients {
		out, err := c.Complete(ctx, prompt, stop...)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, ErrUnavailable) {
			return "", err
		}
		f.logger.Warn("completion provider unavailable, trying next",
			"provider", i,
			"error", err,
		)
		lastErr = err
	}

	return "", fmt.Errorf("all providers failed: %w", lastErr)
}

// Ping succeeds if any provider is reachable.
func (f *Failover) Ping(ctx context.Context) error {
	var lastErr error
	for _, c := range f.clients {
		if err := c.Ping(ctx); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	if lastErr == nil {
		return ErrUnavailable
	}
	return lastErr
}
