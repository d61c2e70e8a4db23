package batch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"autoshow/internal/logging"
	"autoshow/internal/services"
)

// LockFileName is created in the output directory for the duration of a run.
const LockFileName = ".autoshow.lock"

type dirLock struct {
	path string
	lock *flock.Flock
}

func acquireLock(outputDir string) (*dirLock, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "batch", "lock", "create output dir", err)
	}
	path := filepath.Join(outputDir, LockFileName)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "batch", "lock", path, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "batch", "lock",
			fmt.Sprintf("another autoshow run is using %s", outputDir), nil)
	}
	return &dirLock{path: path, lock: lock}, nil
}

func (l *dirLock) release(logger *slog.Logger) {
	if err := l.lock.Unlock(); err != nil {
		logging.WarnWithContext(logger, "failed to release output lock", "lock_release_failed",
			logging.String("lock", l.path),
			logging.Error(err),
		)
	}
}
