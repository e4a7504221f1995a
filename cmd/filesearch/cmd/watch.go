package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	serrors "github.com/kennethwty/filesearch/internal/errors"
	"github.com/kennethwty/filesearch/internal/watcher"
)

// newWatchCmd creates the watch command, which repeats the search whenever
// something under the root changes.
func newWatchCmd(opts *rootOptions) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch path [regex] [zipfile]",
		Short: "Re-run the search whenever files under path change",
		Long: `watch performs the same search as the root command once, then keeps
watching path and repeats it after every burst of file system changes.
The archive and its lock file are never treated as changes.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd, args, opts, debounce)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watcher.DefaultOptions().DebounceWindow,
		"Quiet period after a change before searching again")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, args []string, opts *rootOptions, debounce time.Duration) error {
	s, err := newSession(cmd, args, opts)
	if err != nil {
		return err
	}

	var skip []string
	if s.cfg.Archiving() {
		archivePath, err := filepath.Abs(s.cfg.ArchivePath)
		if err != nil {
			return serrors.SetupError(serrors.ErrCodeArchiveCreate, "cannot resolve archive path", s.cfg.ArchivePath, err)
		}
		skip = []string{archivePath, archivePath + ".lock"}
	}

	w, err := watcher.New(watcher.Options{
		DebounceWindow: debounce,
		Exclude:        s.cfg.Exclude,
		SkipPaths:      skip,
	})
	if err != nil {
		return serrors.Wrap(serrors.ErrCodeInternal, err)
	}
	if err := w.Add(s.cfg.RootPath); err != nil {
		_ = w.Close()
		return serrors.SetupError(serrors.ErrCodeRootInaccessible, "cannot watch root", s.cfg.RootPath, err)
	}

	// Watching starts before the first search so no change is missed.
	if _, err := s.run(ctx); err != nil {
		_ = w.Close()
		return err
	}
	s.console.Dimf("Watching %s for changes (Ctrl+C to stop)", s.cfg.RootPath)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return w.Run(gctx)
	})

	g.Go(func() error {
		for batch := range w.Events() {
			s.console.Dimf("%d change(s) detected, searching again", len(batch))
			_, err := s.run(gctx)
			switch {
			case err == nil, errors.Is(err, context.Canceled):
			case serrors.IsFatal(err):
				// The run is lost but watching goes on.
				_, _ = fmt.Fprint(cmd.ErrOrStderr(), serrors.FormatForCLI(err))
			default:
				slog.Warn("search rerun failed", serrors.FormatForLog(err)...)
			}
		}
		return nil
	})

	g.Go(func() error {
		for err := range w.Errors() {
			slog.Warn("watcher error", slog.String("error", err.Error()))
		}
		return nil
	})

	return g.Wait()
}
