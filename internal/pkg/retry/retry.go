package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Policy bounds a call with a per-attempt timeout and exponential backoff between attempts.
type Policy struct {
	Timeout     time.Duration
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultPolicy is 60s per attempt, 3 attempts, 1s doubling up to 8s.
func DefaultPolicy() Policy {
	return Policy{
		Timeout:     60 * time.Second,
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    8 * time.Second,
	}
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Backoff returns the delay before attempt n+1 (n is 1-based).
func (p Policy) Backoff(n int) time.Duration {
	if p.BaseDelay <= 0 || n < 1 {
		return 0
	}
	delay := p.BaseDelay
	for i := 1; i < n; i++ {
		delay *= 2
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

// Do runs fn until it succeeds, returns a permanent error, the parent context ends, or
// MaxAttempts is reached. It returns the number of attempts made and the last error.
func (p Policy) Do(ctx context.Context, log *zap.Logger, fn func(ctx context.Context) error) (int, error) {
	if log == nil {
		log = zap.NewNop()
	}
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = p.attempt(ctx, fn)
		if lastErr == nil {
			return attempt, nil
		}
		if IsPermanent(lastErr) {
			return attempt, lastErr
		}
		if ctx.Err() != nil {
			return attempt, fmt.Errorf("cancelled after attempt %d: %w", attempt, ctx.Err())
		}
		if attempt == maxAttempts {
			break
		}

		backoff := p.Backoff(attempt)
		log.Warn("retrying after failure",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(lastErr),
		)
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, fmt.Errorf("cancelled during backoff: %w", ctx.Err())
		case <-timer.C:
		}
	}
	return maxAttempts, lastErr
}

func (p Policy) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	if p.Timeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()
	return fn(attemptCtx)
}
