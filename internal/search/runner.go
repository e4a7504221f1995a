package search

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/kennethwty/filesearch/internal/archive"
	"github.com/kennethwty/filesearch/internal/config"
	serrors "github.com/kennethwty/filesearch/internal/errors"
	"github.com/kennethwty/filesearch/internal/matcher"
	"github.com/kennethwty/filesearch/internal/scanner"
)

// Option configures a run.
type Option func(*runner)

// WithObserver receives progress callbacks.
func WithObserver(o Observer) Option {
	return func(r *runner) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithLogger sets the structured logger. Every record carries the run id.
func WithLogger(l *slog.Logger) Option {
	return func(r *runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRunID fixes the run id instead of generating one.
func WithRunID(id string) Option {
	return func(r *runner) {
		r.runID = id
	}
}

type runner struct {
	cfg      *config.ScanConfig
	matcher  *matcher.Matcher
	observer Observer
	logger   *slog.Logger
	writer   *archive.Writer
	runID    string

	state     State
	collected []scanner.Entry
	result    *Result
}

// Run executes one search over cfg.RootPath.
//
// Directories and other non-regular entries are skipped. Each regular file
// is matched line by line; files that fail to read are reported and left
// out while the run continues. When cfg names an archive, matching files
// are written to it, in traversal order, after the walk completes.
//
// An inaccessible root, any archive failure, or a cancelled ctx ends the run
// with an error and no result.
func Run(ctx context.Context, cfg *config.ScanConfig, opts ...Option) (*Result, error) {
	if cfg == nil {
		return nil, serrors.New(serrors.ErrCodeInternal, "search config is required", nil)
	}

	r := &runner{
		cfg:      cfg,
		matcher:  cfg.Matcher(),
		observer: NopObserver{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.runID == "" {
		r.runID = uuid.NewString()
	}
	r.logger = r.logger.With(slog.String("run_id", r.runID))
	r.writer = archive.NewWriter(archive.WithLogger(r.logger))

	result, err := r.run(ctx)
	if err != nil {
		r.setState(StateFailed)
		r.logger.Error("search failed", serrors.FormatForLog(err)...)
		return nil, err
	}
	r.setState(StateDone)
	return result, nil
}

func (r *runner) run(ctx context.Context) (*Result, error) {
	start := time.Now()

	absRoot, err := filepath.Abs(r.cfg.RootPath)
	if err != nil {
		return nil, serrors.SetupError(serrors.ErrCodeRootInaccessible,
			"cannot resolve search path", r.cfg.RootPath, err)
	}

	r.result = &Result{
		RunID:   r.runID,
		Root:    absRoot,
		Matches: []string{},
	}

	opts := scanner.Options{
		Exclude:          r.cfg.Exclude,
		RespectGitignore: r.cfg.RespectGitignore,
	}
	if r.cfg.Archiving() {
		absArchive, err := filepath.Abs(r.cfg.ArchivePath)
		if err != nil {
			return nil, serrors.SetupError(serrors.ErrCodeArchiveCreate,
				"cannot resolve archive path", r.cfg.ArchivePath, err)
		}
		r.result.ArchivePath = absArchive
		opts.SkipPaths = []string{absArchive, absArchive + ".lock"}
	}

	sc, err := scanner.New(opts)
	if err != nil {
		return nil, err
	}

	r.logger.Info("search started",
		slog.String("root", absRoot),
		slog.Bool("pattern", !r.matcher.MatchesAll()),
		slog.Bool("archive", r.cfg.Archiving()))

	baseDir := absRoot
	r.setState(StateWalking)
	for entry, walkErr := range sc.Walk(ctx, absRoot) {
		if walkErr != nil {
			if serrors.IsPerFile(walkErr) {
				r.fail(FileOutcome{Entry: entry, Err: walkErr})
				continue
			}
			return nil, walkErr
		}

		// A root that is itself a file is archived under its own name.
		if entry.Path == absRoot && entry.IsFile() {
			baseDir = filepath.Dir(absRoot)
		}

		r.visit(entry)
		r.setState(StateWalking)
	}

	if r.cfg.Archiving() {
		r.setState(StateArchiving)
		n, err := r.writer.Write(ctx, r.result.ArchivePath, baseDir, r.collected)
		r.result.Archived = n
		if err != nil {
			return nil, err
		}
	}

	r.result.Duration = time.Since(start)
	r.logger.Info("search completed",
		slog.Int("scanned", r.result.Scanned),
		slog.Int("matched", len(r.result.Matches)),
		slog.Int("failed", len(r.result.Failures)),
		slog.Int("archived", r.result.Archived),
		slog.Duration("duration", r.result.Duration))

	return r.result, nil
}

// visit filters, matches and collects one walked entry.
func (r *runner) visit(entry scanner.Entry) {
	r.setState(StateFiltering)
	if !entry.IsFile() {
		r.result.Skipped++
		return
	}
	r.result.Scanned++

	r.setState(StateMatching)
	outcome := r.examine(entry)
	if outcome.Err != nil {
		r.fail(outcome)
		return
	}
	if !outcome.Matched {
		return
	}

	r.setState(StateCollecting)
	r.result.Matches = append(r.result.Matches, entry.Path)
	if r.cfg.Archiving() {
		r.collected = append(r.collected, entry)
	}
	r.observer.FileMatched(entry)
}

// examine decides whether a regular file matches.
func (r *runner) examine(entry scanner.Entry) FileOutcome {
	if limit := r.cfg.MaxFileSize; limit > 0 && entry.Size > limit {
		return FileOutcome{
			Entry: entry,
			Err: serrors.FileError(serrors.ErrCodeFileTooLarge, entry.Path,
				fmt.Errorf("size %d exceeds limit %d", entry.Size, limit)),
		}
	}

	matched, err := r.matcher.Matches(entry.Path)
	return FileOutcome{Entry: entry, Matched: matched, Err: err}
}

func (r *runner) fail(outcome FileOutcome) {
	r.result.Failures = append(r.result.Failures, Failure{
		Path:    outcome.Entry.Path,
		Code:    serrors.GetCode(outcome.Err),
		Message: serrors.Cause(outcome.Err),
	})
	r.logger.Warn("file skipped", serrors.FormatForLog(outcome.Err)...)
	r.observer.FileFailed(outcome)
}

func (r *runner) setState(next State) {
	if next == r.state {
		return
	}
	prev := r.state
	r.state = next
	r.observer.StateChanged(prev, next)
}
