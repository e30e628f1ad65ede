// Package filelock serializes writers to a shared output directory and
// writes files atomically so readers never observe a partial report.
package filelock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// LockFileName is the lock file created inside a locked directory
const LockFileName = ".secrev.lock"

// DefaultRetryDelay is the polling interval used while waiting for a lock
const DefaultRetryDelay = 100 * time.Millisecond

// DirLock is an exclusive, cross-process lock on a directory
type DirLock struct {
	flock *flock.Flock
	dir   string
}

// NewDirLock creates a lock for dir. The directory is created if needed;
// nothing is locked until Lock is called.
func NewDirLock(dir string) (*DirLock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return &DirLock{
		flock: flock.New(filepath.Join(dir, LockFileName)),
		dir:   dir,
	}, nil
}

// Lock blocks until the lock is acquired or ctx is done
func (l *DirLock) Lock(ctx context.Context) error {
	locked, err := l.flock.TryLockContext(ctx, DefaultRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", l.dir, err)
	}
	if !locked {
		return fmt.Errorf("failed to acquire lock on %s", l.dir)
	}
	return nil
}

// TryLock attempts the lock without blocking
func (l *DirLock) TryLock() (bool, error) {
	locked, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", l.dir, err)
	}
	return locked, nil
}

// Unlock releases the lock
func (l *DirLock) Unlock() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", l.dir, err)
	}
	return nil
}

// AtomicWrite writes data to path through a temp file in the same directory
// followed by a rename. On failure the target is left untouched and the temp
// file is removed.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	committed = true
	return nil
}

// WithDirLock runs fn while holding the lock on dir
func WithDirLock(ctx context.Context, dir string, fn func() error) error {
	lock, err := NewDirLock(dir)
	if err != nil {
		return err
	}
	if err := lock.Lock(ctx); err != nil {
		return err
	}
	defer lock.Unlock()

	return fn()
}
