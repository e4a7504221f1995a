package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLogPath(t *testing.T) {
	path := DefaultLogPath()

	assert.Equal(t, "filesearch.log", filepath.Base(path))
	assert.Equal(t, "logs", filepath.Base(filepath.Dir(path)))
	assert.Contains(t, path, ".filesearch")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "warn", cfg.Level)
	assert.Empty(t, cfg.FilePath)
	assert.Equal(t, 10, cfg.MaxSizeMB)
	assert.Equal(t, 5, cfg.MaxFiles)
}

func TestDebugConfig(t *testing.T) {
	cfg := DebugConfig()

	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, DefaultLogPath(), cfg.FilePath)
	assert.True(t, cfg.WriteToStderr)
}

func TestSetup_StderrOnly(t *testing.T) {
	// Given: the default config with a captured stderr
	var stderr bytes.Buffer
	cfg := DefaultConfig()
	cfg.Stderr = &stderr

	// When: logging below and at the threshold
	logger, cleanup, err := Setup(cfg)
	require.NoError(t, err)
	defer cleanup()
	logger.Info("hidden")
	logger.Warn("shown", "path", "/data/x.txt")

	// Then: only the warning is written, as text
	out := stderr.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "path=/data/x.txt")
}

func TestSetup_FileWithStderr(t *testing.T) {
	// Given: a debug config pointing into a temp dir
	var stderr bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "filesearch.log")
	cfg := DebugConfig()
	cfg.FilePath = path
	cfg.Stderr = &stderr

	// When
	logger, cleanup, err := Setup(cfg)
	require.NoError(t, err)
	logger.Debug("archived file", "entry", "c/d.txt")
	cleanup()

	// Then: the file holds one JSON record, echoed to stderr
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var record map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &record))
	assert.Equal(t, "archived file", record["msg"])
	assert.Equal(t, "c/d.txt", record["entry"])
	assert.Equal(t, string(bytes.TrimSpace(data)), strings.TrimSpace(stderr.String()))
}

func TestSetup_UnwritableFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	cfg := DebugConfig()
	cfg.FilePath = filepath.Join(blocker, "sub", "filesearch.log")

	_, _, err := Setup(cfg)
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "DEBUG",
		"INFO":    "INFO",
		"warn":    "WARN",
		"warning": "WARN",
		"error":   "ERROR",
		"bogus":   "INFO",
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in).String(), in)
	}
}

func TestRotatingWriter_Rotation(t *testing.T) {
	// Given: a 1 MB writer
	path := filepath.Join(t.TempDir(), "test.log")
	w, err := NewRotatingWriter(path, 1, 3)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	chunk := bytes.Repeat([]byte("x"), 600*1024)

	// When: writing past the limit
	_, err = w.Write(chunk)
	require.NoError(t, err)
	_, err = w.Write(chunk)
	require.NoError(t, err)

	// Then: the first chunk moved to .1 and the current file holds the second
	info, err := os.Stat(path + ".1")
	require.NoError(t, err)
	assert.Equal(t, int64(len(chunk)), info.Size())
	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(chunk)), info.Size())
}

func TestRotatingWriter_MaxFilesLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	w, err := NewRotatingWriter(path, 1, 2)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	chunk := bytes.Repeat([]byte("y"), 700*1024)
	for i := 0; i < 5; i++ {
		_, err := w.Write(chunk)
		require.NoError(t, err)
	}

	_, err = os.Stat(path + ".1")
	assert.NoError(t, err)
	_, err = os.Stat(path + ".2")
	assert.NoError(t, err)
	_, err = os.Stat(path + ".3")
	assert.True(t, os.IsNotExist(err))
}

func TestRotatingWriter_AppendsToExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	w, err := NewRotatingWriter(path, 1, 2)
	require.NoError(t, err)
	_, err = w.Write([]byte("new\n"))
	require.NoError(t, err)
	require.NoError(t, w.Sync())
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old\nnew\n", string(data))
}

func TestRotatingWriter_ConcurrentWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	w, err := NewRotatingWriter(path, 1, 2)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = w.Write([]byte("line\n"))
			}
		}()
	}
	wg.Wait()
	require.NoError(t, w.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 8*50, strings.Count(string(data), "line\n"))
}
