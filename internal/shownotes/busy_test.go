package shownotes

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestRetryOnBusyRetriesOnlyLockedErrors(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "autoshow.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()
	var delays []time.Duration
	store.busy.Sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	calls := 0
	err = store.retryOnBusy(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked (5) (SQLITE_BUSY)")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected busy errors to be retried, got %v", err)
	}
	if calls != 3 || len(delays) != 2 || delays[0] != busyRetryInitialBackoff || delays[1] != 2*busyRetryInitialBackoff {
		t.Fatalf("unexpected retry schedule: calls=%d delays=%v", calls, delays)
	}

	calls = 0
	constraint := errors.New("UNIQUE constraint failed")
	err = store.retryOnBusy(context.Background(), func() error {
		calls++
		return constraint
	})
	if !errors.Is(err, constraint) || calls != 1 {
		t.Fatalf("expected non-busy error after one call, calls=%d err=%v", calls, err)
	}

	calls = 0
	err = store.retryOnBusy(context.Background(), func() error {
		calls++
		return errors.New("SQLITE_BUSY")
	})
	if err == nil || calls != busyRetryAttempts {
		t.Fatalf("expected %d attempts before giving up, calls=%d err=%v", busyRetryAttempts, calls, err)
	}
}
