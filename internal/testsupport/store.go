package testsupport

import (
	"testing"

	"autoshow/internal/config"
	"autoshow/internal/shownotes"
)

// MustOpenStore opens the show-note store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *shownotes.Store {
	t.Helper()

	store, err := shownotes.Open(cfg.DatabasePath())
	if err != nil {
		t.Fatalf("shownotes.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
