package archive

import (
	"fmt"
	"os"

	"github.com/gofrs/flock"

	serrors "github.com/kennethwty/filesearch/internal/errors"
)

// lockSuffix names the sibling file used to serialise writers of one archive.
const lockSuffix = ".lock"

// outputLock is a cross-process advisory lock on an archive destination.
// Two runs writing the same archive would interleave truncation and entries,
// so the second one fails fast instead.
type outputLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

func newOutputLock(archivePath string) *outputLock {
	path := archivePath + lockSuffix
	return &outputLock{
		path:  path,
		flock: flock.New(path),
	}
}

// acquire takes the lock without blocking.
func (l *outputLock) acquire(archivePath string) error {
	ok, err := l.flock.TryLock()
	if err != nil {
		return serrors.SetupError(serrors.ErrCodeArchiveCreate,
			"cannot create archive", archivePath, fmt.Errorf("lock %s: %w", l.path, err)).
			WithSuggestion("check that the destination directory exists and is writable")
	}
	if !ok {
		return serrors.SetupError(serrors.ErrCodeArchiveLocked,
			"archive is being written by another process", archivePath, nil).
			WithDetail("lock_file", l.path)
	}
	l.locked = true
	return nil
}

// release unlocks and removes the lock file. Safe to call when not held.
func (l *outputLock) release() error {
	if !l.locked {
		return nil
	}
	l.locked = false

	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	// Only remove once unlocked, so no one can lock a fresh file at the
	// same path while this process still holds the old one.
	_ = os.Remove(l.path)
	return nil
}
