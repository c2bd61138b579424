package atomicio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/storeerr"
	"golang.org/x/sys/unix"
)

// DefaultLockTimeout is the acquisition timeout the spec mandates for every
// advisory lock scope (project creation, member heartbeats, inbox, resource
// updates).
const DefaultLockTimeout = 5 * time.Second

// lockRetryInterval is how often a blocked acquisition retries flock while
// waiting out DefaultLockTimeout.
const lockRetryInterval = 20 * time.Millisecond

// FileLock is an advisory, exclusive, process-and-goroutine-scoped lock
// backed by flock(2) on a dedicated lock file (e.g. "<dir>/.lock").
type FileLock struct {
	path string
	f    *os.File
}

// Lock acquires an exclusive flock on path, creating it if necessary,
// retrying until ctx is done or timeout elapses. Returns LOCK_TIMEOUT if the
// lock could not be acquired in time. Callers must call Unlock on every
// path, including error returns from the guarded operation.
func Lock(ctx context.Context, path string, timeout time.Duration) (*FileLock, error) {
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, storeerr.New(storeerr.IOError, "creating lock directory")
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, storeerr.New(storeerr.IOError, "opening lock file")
	}

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()

	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return &FileLock{path: path, f: f}, nil
		}
		if err != unix.EWOULDBLOCK {
			f.Close()
			return nil, storeerr.New(storeerr.IOError, "acquiring file lock")
		}

		if time.Now().After(deadline) {
			f.Close()
			return nil, storeerr.New(storeerr.LockTimeout, fmt.Sprintf("timed out acquiring lock after %s", timeout))
		}

		select {
		case <-ctx.Done():
			f.Close()
			return nil, storeerr.New(storeerr.LockTimeout, "lock wait cancelled")
		case <-ticker.C:
		}
	}
}

// Unlock releases the lock and closes the underlying file descriptor. Safe
// to call from a defer immediately after a successful Lock, on every
// return path of the guarded section.
func (l *FileLock) Unlock() error {
	if l == nil || l.f == nil {
		return nil
	}
	_ = unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
	return l.f.Close()
}
