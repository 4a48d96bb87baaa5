package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy is a bounded retry policy with exponential backoff. The zero value
// is not usable; construct with NewPolicy.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func NewPolicy(maxAttempts int, baseDelay, maxDelay time.Duration) Policy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	if maxDelay < baseDelay {
		maxDelay = baseDelay
	}
	return Policy{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		MaxDelay:    maxDelay,
	}
}

// Do runs fn up to MaxAttempts times, doubling the delay between attempts up
// to MaxDelay. It returns the last error once the budget is exhausted, so the
// caller gets a clear giving-up signal instead of an endless poll loop.
func (p Policy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var lastErr error
	delay := p.BaseDelay

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == p.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: canceled after attempt %d: %w", op, attempt, ctx.Err())
		case <-time.After(delay):
		}

		delay *= 2
		if delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}

	return fmt.Errorf("%s: giving up after %d attempts: %w", op, p.MaxAttempts, lastErr)
}
