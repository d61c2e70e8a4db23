package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"autoshow/internal/logging"
	"autoshow/internal/services"
)

const (
	// DefaultMaxAttempts is the attempt ceiling shared by every external call.
	DefaultMaxAttempts = 7
	// DefaultBaseDelay is the delay before the second attempt.
	DefaultBaseDelay = time.Second
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Policy configures Do. The zero value uses the defaults.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// AttemptTimeout bounds each attempt individually. Zero disables it.
	AttemptTimeout time.Duration
	Sleep          Sleeper
	Logger         *slog.Logger
	// Retryable reports whether a failed attempt may be repeated. Nil retries
	// every error. A non-retryable error is returned as is.
	Retryable func(error) bool
}

// DefaultPolicy returns the 7 attempt, 1 second base policy.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, BaseDelay: DefaultBaseDelay}
}

// WithTimeout returns a copy of p with a per-attempt timeout.
func (p Policy) WithTimeout(d time.Duration) Policy {
	p.AttemptTimeout = d
	return p
}

// Delay returns the wait before attempt+1, given that attempt (1-based) failed.
func (p Policy) Delay(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}
	if attempt < 1 {
		attempt = 1
	}
	return base << (attempt - 1)
}

func (p Policy) attempts() int {
	if p.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return p.MaxAttempts
}

// AttemptsError reports that every attempt failed. It matches
// services.ErrExternalTool and the last attempt's error under errors.Is.
type AttemptsError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *AttemptsError) Error() string {
	return fmt.Sprintf("%s: failed after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *AttemptsError) Unwrap() []error {
	return []error{services.ErrExternalTool, e.Err}
}

// Do runs fn until it succeeds or the attempt ceiling is reached. Every
// attempt re-executes fn in full. The delay before attempt k+1 is
// BaseDelay * 2^(k-1); there is no jitter. Cancellation of ctx stops the loop
// and returns the context error.
func Do[T any](ctx context.Context, p Policy, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	logger := p.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	maxAttempts := p.attempts()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		result, err := runAttempt(ctx, p.AttemptTimeout, fn)
		if err == nil {
			if attempt > 1 {
				logger.Info("retry succeeded",
					logging.String(logging.FieldEventType, "retry_succeeded"),
					logging.String("operation", op),
					logging.Int("attempt", attempt),
				)
			}
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return zero, err
		}
		if attempt == maxAttempts {
			break
		}
		delay := p.Delay(attempt)
		logging.WarnWithContext(logger, "attempt failed; retrying", "retry_attempt",
			logging.String("operation", op),
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", maxAttempts),
			logging.Duration("delay", delay),
			logging.Error(err),
			logging.String(logging.FieldImpact, "call will be retried after backoff"),
		)
		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
	return zero, &AttemptsError{Op: op, Attempts: maxAttempts, Err: lastErr}
}

func runAttempt[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	result, err := fn(attemptCtx)
	if err != nil && attemptCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		err = fmt.Errorf("%w: attempt exceeded %s: %w", services.ErrTimeout, timeout, err)
	}
	return result, err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
