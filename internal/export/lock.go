package export

import (
	"path/filepath"

	"github.com/gofrs/flock"

	"cardpress/internal/services"
)

// RunLock guards against two exports driving the same renderer at once.
type RunLock struct {
	lock *flock.Flock
}

// NewRunLock creates a lock file inside dir. The directory must exist.
func NewRunLock(dir string) *RunLock {
	return &RunLock{lock: flock.New(filepath.Join(dir, "cardpress.lock"))}
}

// Acquire takes the lock without blocking. It fails when another run holds it.
func (l *RunLock) Acquire() error {
	ok, err := l.lock.TryLock()
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "export", "lock", "acquire run lock", err)
	}
	if !ok {
		return services.Wrap(services.ErrValidation, "export", "lock",
			"another export run is already active", nil)
	}
	return nil
}

// Release drops the lock. Safe to call after a failed Acquire.
func (l *RunLock) Release() error {
	return l.lock.Unlock()
}

// Path returns the lock file location.
func (l *RunLock) Path() string {
	return l.lock.Path()
}
