package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/kennethwty/filesearch/internal/errors"
)

func TestOutputLock_ReleaseUnlocksThenRemoves(t *testing.T) {
	// Given: a held lock
	out := filepath.Join(t.TempDir(), "out.zip")
	l := newOutputLock(out)
	require.NoError(t, l.acquire(out))
	assert.True(t, l.flock.Locked())

	// When
	require.NoError(t, l.release())

	// Then: the handle is unlocked and the file is gone
	assert.False(t, l.flock.Locked())
	_, err := os.Stat(out + lockSuffix)
	assert.True(t, os.IsNotExist(err))

	other := flock.New(out + lockSuffix)
	ok, err := other.TryLock()
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, other.Unlock())
}

func TestOutputLock_SecondAcquireFails(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.zip")
	first := newOutputLock(out)
	require.NoError(t, first.acquire(out))
	defer func() { _ = first.release() }()

	err := newOutputLock(out).acquire(out)

	require.Error(t, err)
	assert.Equal(t, serrors.ErrCodeArchiveLocked, serrors.GetCode(err))
}

func TestOutputLock_ReleaseWhenNotHeld(t *testing.T) {
	l := newOutputLock(filepath.Join(t.TempDir(), "out.zip"))

	assert.NoError(t, l.release())
}
