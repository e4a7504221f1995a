// Package scanner walks a directory tree and reports every entry it finds,
// tagged with its kind, as a lazy single-pass sequence.
package scanner

import (
	"time"
)

// Kind tells files and directories apart during traversal.
type Kind int

const (
	// KindUnknown marks an entry that could not be classified, such as one
	// carried by a per-entry error. It never passes as a file.
	KindUnknown Kind = iota
	// KindFile is a regular file, or a symlink to one.
	KindFile
	// KindDir is a directory, or a symlink to one (not descended into).
	KindDir
	// KindOther is a device, socket, pipe or similar.
	KindOther
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// Entry is one filesystem entry met during a walk.
type Entry struct {
	Path    string    // Absolute path
	Kind    Kind      // file, dir, other
	ModTime time.Time // Last modification time
	Size    int64     // Size in bytes (files only)
}

// IsFile reports whether the entry can be read as a file.
func (e Entry) IsFile() bool {
	return e.Kind == KindFile
}

// Options configures what a Scanner reports. The zero value walks
// everything.
type Options struct {
	// Exclude holds gitignore-syntax patterns evaluated relative to the root.
	// Matching directories are pruned.
	Exclude []string

	// RespectGitignore applies .gitignore files found along the way and
	// prunes .git directories.
	RespectGitignore bool

	// SkipPaths lists absolute paths that are never reported.
	SkipPaths []string
}
