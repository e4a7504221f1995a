package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kennethwty/filesearch/internal/config"
	serrors "github.com/kennethwty/filesearch/internal/errors"
	"github.com/kennethwty/filesearch/internal/output"
	"github.com/kennethwty/filesearch/internal/search"
)

// session holds what one invocation needs to run searches repeatedly.
type session struct {
	cfg     *config.ScanConfig
	format  output.Format
	console *output.Writer // per-file lines; stderr for json and yaml
	report  *output.Writer
	quiet   bool
}

// newSession validates flags and positional arguments before any traversal.
func newSession(cmd *cobra.Command, args []string, opts *rootOptions) (*session, error) {
	format, err := output.ParseFormat(opts.format)
	if err != nil {
		return nil, serrors.ConfigError(serrors.ErrCodeOptionInvalid, err.Error(), nil)
	}

	cfg, err := config.FromArgs(args, opts.scanOptions()...)
	if err != nil {
		return nil, err
	}

	stdout := cmd.OutOrStdout()
	consoleOut := stdout
	if format != output.FormatText {
		consoleOut = cmd.ErrOrStderr()
	}

	return &session{
		cfg:     cfg,
		format:  format,
		console: output.New(consoleOut, output.ColorEnabled(consoleOut, opts.noColor)),
		report:  output.New(stdout, output.ColorEnabled(stdout, opts.noColor)),
		quiet:   opts.quiet || format != output.FormatText,
	}, nil
}

// run performs one search and prints its report.
func (s *session) run(ctx context.Context) (*search.Result, error) {
	result, err := search.Run(ctx, s.cfg,
		search.WithObserver(output.NewConsole(s.console, s.quiet)),
		search.WithLogger(slog.Default()),
	)
	if err != nil {
		return nil, err
	}

	if err := output.WriteReport(s.report, s.format, s.cfg, result); err != nil {
		return result, err
	}
	return result, nil
}

// runSearch is the root command's action.
func runSearch(ctx context.Context, cmd *cobra.Command, args []string, opts *rootOptions) (*search.Result, error) {
	s, err := newSession(cmd, args, opts)
	if err != nil {
		return nil, err
	}
	return s.run(ctx)
}
