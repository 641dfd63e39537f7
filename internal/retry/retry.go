// Package retry is the one retry policy shared by every remote spreadsheet
// operation: fixed attempts, fixed delay.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type Policy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultPolicy matches the external service's tolerance: three tries with
// a short pause between them.
func DefaultPolicy() Policy {
	return Policy{Attempts: 3, Delay: 2 * time.Second}
}

// Do runs op until it succeeds, attempts are exhausted, or ctx is done.
// The last error is wrapped with the operation name and attempt count.
func (p Policy) Do(ctx context.Context, name string, op func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if attempt < attempts {
			slog.WarnContext(ctx, "Operation failed, retrying",
				"operation", name,
				"attempt", attempt,
				"max_attempts", attempts,
				"error", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.Delay):
			}
		}
	}

	return fmt.Errorf("%s: %d attempts exhausted: %w", name, attempts, lastErr)
}
