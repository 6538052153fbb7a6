package chain

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	migrateerr "github.com/mrz1836/tokenmigrate/pkg/errors"
)

// Sentinel errors for transport retries.
var (
	ErrRetryable = &migrateerr.MigrateError{
		Code:     "RETRYABLE_ERROR",
		Message:  "retryable error",
		ExitCode: migrateerr.ExitGeneral,
	}

	ErrRateLimited = &migrateerr.MigrateError{
		Code:     "RATE_LIMITED",
		Message:  "rate limited",
		ExitCode: migrateerr.ExitGeneral,
	}
)

// RetryPolicy configures retry behavior for a single HTTP call.
type RetryPolicy struct {
	MaxAttempts int           // including the initial attempt
	BaseDelay   time.Duration // first backoff delay
	MaxDelay    time.Duration // backoff ceiling
}

// DefaultRetryPolicy returns 3 attempts with delays of roughly 500ms and 1s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    4 * time.Second,
	}
}

// Retry runs operation until it succeeds, returns a non-retryable error,
// or the policy's attempts are exhausted. Cancellation of ctx stops waiting
// immediately.
func Retry[T any](ctx context.Context, policy RetryPolicy, operation func(context.Context) (T, error)) (T, error) {
	var (
		result T
		err    error
	)
	attempts := max(policy.MaxAttempts, 1)

	for attempt := 0; attempt < attempts; attempt++ {
		result, err = operation(ctx)
		if err == nil || !IsRetryable(err) {
			return result, err
		}
		if attempt == attempts-1 {
			break
		}

		timer := time.NewTimer(policy.delay(attempt, retryAfter(err)))
		select {
		case <-ctx.Done():
			timer.Stop()
			return result, ctx.Err()
		case <-timer.C:
		}
	}

	return result, fmt.Errorf("gave up after %d attempts: %w", attempts, err)
}

// delay is exponential backoff with jitter in [d/2, d), raised to the
// server's Retry-After hint and capped at MaxDelay.
func (p RetryPolicy) delay(attempt int, hint time.Duration) time.Duration {
	d := p.BaseDelay << attempt
	if d <= 0 || (p.MaxDelay > 0 && d > p.MaxDelay) {
		d = p.MaxDelay
	}
	if half := d / 2; half > 0 {
		d = half + rand.N(half) //nolint:gosec // G404: jitter does not need crypto randomness
	}
	if hint > d {
		d = hint
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// IsRetryable reports whether err is a transient transport failure.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrRetryable) || errors.Is(err, ErrRateLimited)
}

// MarkRetryable wraps err so that Retry tries again.
func MarkRetryable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrRetryable, err)
}

type retryAfterError struct {
	err   error
	after time.Duration
}

func (e *retryAfterError) Error() string { return e.err.Error() }
func (e *retryAfterError) Unwrap() error { return e.err }

// RateLimitedAfter returns ErrRateLimited carrying the server's wait hint.
func RateLimitedAfter(after time.Duration) error {
	return &retryAfterError{err: ErrRateLimited, after: after}
}

func retryAfter(err error) time.Duration {
	var ra *retryAfterError
	if errors.As(err, &ra) {
		return ra.after
	}
	return 0
}

// ParseRetryAfter parses a Retry-After header given in seconds.
// Returns 0 if the header is absent or not a number.
func ParseRetryAfter(header string) time.Duration {
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
