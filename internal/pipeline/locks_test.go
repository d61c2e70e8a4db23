package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPathLocksSerializeSameKey(t *testing.T) {
	var locks pathLocks
	release, err := locks.acquire(context.Background(), "/out/a")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	acquired := make(chan func())
	go func() {
		next, err := locks.acquire(context.Background(), "/out/a")
		if err != nil {
			t.Errorf("second acquire: %v", err)
			close(acquired)
			return
		}
		acquired <- next
	}()

	select {
	case <-acquired:
		t.Fatal("second holder entered while the first still held the key")
	case <-time.After(50 * time.Millisecond):
	}

	other, err := locks.acquire(context.Background(), "/out/b")
	if err != nil {
		t.Fatalf("acquire other key: %v", err)
	}
	other()

	release()
	release()
	select {
	case next := <-acquired:
		if next == nil {
			t.Fatal("second acquire failed")
		}
		next()
	case <-time.After(2 * time.Second):
		t.Fatal("second holder never entered after release")
	}

	locks.mu.Lock()
	defer locks.mu.Unlock()
	if len(locks.locks) != 0 {
		t.Fatalf("expected released keys to be dropped, have %d", len(locks.locks))
	}
}

func TestPathLocksAcquireHonorsCancellation(t *testing.T) {
	var locks pathLocks
	release, err := locks.acquire(context.Background(), "/out/a")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := locks.acquire(ctx, "/out/a"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	locks.mu.Lock()
	refs := locks.locks["/out/a"].refs
	locks.mu.Unlock()
	if refs != 1 {
		t.Fatalf("expected only the holder to remain counted, refs=%d", refs)
	}
}
