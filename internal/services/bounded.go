package services

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Bounded runs fn under a deadline of the given number of seconds and tags
// deadline expiry with ErrTimeout. A non-positive bound runs fn unbounded.
// Parent-context cancellation is reported as-is, never as a timeout.
func Bounded(ctx context.Context, seconds int, fn func(context.Context) error) error {
	if seconds <= 0 {
		return fn(ctx)
	}
	bounded, cancel := context.WithTimeout(ctx, time.Duration(seconds)*time.Second)
	defer cancel()
	err := fn(bounded)
	if err != nil && errors.Is(bounded.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%w after %ds: %w", ErrTimeout, seconds, err)
	}
	return err
}
