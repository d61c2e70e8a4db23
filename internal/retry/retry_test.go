package retry_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"autoshow/internal/retry"
	"autoshow/internal/services"
)

type recordingSleeper struct {
	delays []time.Duration
}

func (r *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func (r *recordingSleeper) total() time.Duration {
	var sum time.Duration
	for _, d := range r.delays {
		sum += d
	}
	return sum
}

func TestDoSucceedsOnSeventhAttempt(t *testing.T) {
	sleeper := &recordingSleeper{}
	policy := retry.DefaultPolicy()
	policy.Sleep = sleeper.sleep

	calls := 0
	got, err := retry.Do(context.Background(), policy, "flaky", func(context.Context) (string, error) {
		calls++
		if calls < 7 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if got != "ok" || calls != 7 {
		t.Fatalf("unexpected result %q after %d calls", got, calls)
	}
	want := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second, 32 * time.Second}
	if len(sleeper.delays) != len(want) {
		t.Fatalf("expected %d sleeps, got %v", len(want), sleeper.delays)
	}
	for i := range want {
		if sleeper.delays[i] != want[i] {
			t.Fatalf("delay %d = %v, want %v", i, sleeper.delays[i], want[i])
		}
	}
	if sleeper.total() < 63*time.Second {
		t.Fatalf("expected at least 63s of backoff, got %v", sleeper.total())
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	sleeper := &recordingSleeper{}
	policy := retry.DefaultPolicy()
	policy.Sleep = sleeper.sleep
	cause := errors.New("still down")

	calls := 0
	_, err := retry.Do(context.Background(), policy, "download", func(context.Context) (int, error) {
		calls++
		return 0, cause
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 7 {
		t.Fatalf("expected 7 calls, got %d", calls)
	}
	var attemptsErr *retry.AttemptsError
	if !errors.As(err, &attemptsErr) || attemptsErr.Attempts != 7 {
		t.Fatalf("expected AttemptsError with 7 attempts, got %v", err)
	}
	if !strings.Contains(err.Error(), "7 attempts") {
		t.Fatalf("expected attempt count in message, got %q", err.Error())
	}
	if !errors.Is(err, cause) || !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected cause and external marker, got %v", err)
	}
	if len(sleeper.delays) != 6 {
		t.Fatalf("expected 6 sleeps, got %d", len(sleeper.delays))
	}
}

func TestDoStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := retry.DefaultPolicy()
	policy.Sleep = func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}
	calls := 0
	_, err := retry.Do(ctx, policy, "cancel", func(context.Context) (struct{}, error) {
		calls++
		return struct{}{}, errors.New("fail")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected single call before cancellation, got %d", calls)
	}
}

func TestAttemptTimeoutCountsAsFailure(t *testing.T) {
	policy := retry.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, AttemptTimeout: 10 * time.Millisecond}
	policy.Sleep = func(context.Context, time.Duration) error { return nil }

	calls := 0
	_, err := retry.Do(context.Background(), policy, "slow", func(ctx context.Context) (bool, error) {
		calls++
		<-ctx.Done()
		return false, ctx.Err()
	})
	if calls != 2 {
		t.Fatalf("expected both attempts to run, got %d", calls)
	}
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout marker, got %v", err)
	}
}

func TestDelaySchedule(t *testing.T) {
	policy := retry.DefaultPolicy()
	for attempt, want := range map[int]time.Duration{1: time.Second, 3: 4 * time.Second, 6: 32 * time.Second} {
		if got := policy.Delay(attempt); got != want {
			t.Fatalf("Delay(%d) = %v, want %v", attempt, got, want)
		}
	}
}

func TestDoReturnsNonRetryableErrorImmediately(t *testing.T) {
	sleeper := &recordingSleeper{}
	permanent := errors.New("constraint failed")
	policy := retry.Policy{
		MaxAttempts: 5,
		BaseDelay:   10 * time.Millisecond,
		Sleep:       sleeper.sleep,
		Retryable:   func(err error) bool { return !errors.Is(err, permanent) },
	}

	calls := 0
	_, err := retry.Do(context.Background(), policy, "insert", func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("database is locked")
		}
		return 0, permanent
	})
	if err != permanent {
		t.Fatalf("expected the non-retryable error unchanged, got %v", err)
	}
	var attempts *retry.AttemptsError
	if errors.As(err, &attempts) {
		t.Fatal("non-retryable error should not be reported as exhausted attempts")
	}
	if calls != 2 || len(sleeper.delays) != 1 || sleeper.delays[0] != 10*time.Millisecond {
		t.Fatalf("expected one retry then stop, calls=%d delays=%v", calls, sleeper.delays)
	}
}
