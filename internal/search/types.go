// Package search runs the search-and-archive pipeline: walk the root,
// match every regular file's lines, and archive the matches.
//
// A run is strictly sequential. Traversal, matching and archiving never
// overlap, and only one file handle is open at a time.
package search

import (
	"time"

	"github.com/kennethwty/filesearch/internal/scanner"
)

// State is the phase a run is in.
type State int

const (
	StateIdle State = iota
	StateWalking
	StateFiltering
	StateMatching
	StateCollecting
	StateArchiving
	StateDone
	StateFailed
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWalking:
		return "walking"
	case StateFiltering:
		return "filtering"
	case StateMatching:
		return "matching"
	case StateCollecting:
		return "collecting"
	case StateArchiving:
		return "archiving"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FileOutcome is the result of examining one regular file.
// A non-nil Err means the file was skipped; Matched is then false.
type FileOutcome struct {
	Entry   scanner.Entry
	Matched bool
	Err     error
}

// Failure describes a file that could not be examined.
type Failure struct {
	Path    string `json:"path" yaml:"path"`
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

// Result summarises a completed run.
type Result struct {
	// RunID identifies the run in logs and reports.
	RunID string `json:"run_id" yaml:"run_id"`

	// Root is the absolute scan root.
	Root string `json:"root" yaml:"root"`

	// ArchivePath is the archive written, empty when archiving was off.
	ArchivePath string `json:"archive,omitempty" yaml:"archive,omitempty"`

	// Matches lists matching files in traversal order.
	Matches []string `json:"matches" yaml:"matches"`

	// Failures lists files skipped because of per-file errors.
	Failures []Failure `json:"failures,omitempty" yaml:"failures,omitempty"`

	// Scanned counts regular files examined.
	Scanned int `json:"scanned" yaml:"scanned"`

	// Skipped counts directories and other non-regular entries.
	Skipped int `json:"skipped" yaml:"skipped"`

	// Archived counts entries written to the archive.
	Archived int `json:"archived" yaml:"archived"`

	// Duration is the wall time of the run.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Observer receives progress callbacks during a run. Callbacks are made on
// the goroutine calling Run, one at a time.
type Observer interface {
	// StateChanged is called on every transition.
	StateChanged(from, to State)

	// FileMatched is called once per matching file.
	FileMatched(entry scanner.Entry)

	// FileFailed is called once per file skipped because of an error.
	FileFailed(outcome FileOutcome)
}

// NopObserver ignores every callback.
type NopObserver struct{}

func (NopObserver) StateChanged(State, State) {}
func (NopObserver) FileMatched(scanner.Entry) {}
func (NopObserver) FileFailed(FileOutcome) {}
