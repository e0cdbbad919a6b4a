package daemonlife

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// LockPath derives the single-instance lock file location from the
// configured log path's directory, falling back to the working directory,
// matching the teacher's daemon.Daemon deriving spindled.lock from
// cfg.LogDir.
func LockPath(logPath string) string {
	dir := filepath.Dir(strings.TrimSpace(logPath))
	if dir == "" || dir == "." {
		dir = "."
	}
	return filepath.Join(dir, "fod.lock")
}

// AcquireLock enforces spec.md §1's "exactly one FOD instance per queue
// set" via an flock-based single-instance lock, generalized from the
// teacher's daemon.Daemon.Start.
func AcquireLock(path string) (*flock.Flock, error) {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, errors.New("another fod instance is already running")
	}
	return lock, nil
}
