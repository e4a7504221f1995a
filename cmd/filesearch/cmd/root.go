// Package cmd provides the CLI commands for filesearch.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kennethwty/filesearch/internal/config"
	serrors "github.com/kennethwty/filesearch/internal/errors"
	"github.com/kennethwty/filesearch/internal/logging"
	"github.com/kennethwty/filesearch/pkg/version"
)

// rootOptions holds the persistent flags shared by the search and watch
// commands.
type rootOptions struct {
	exclude     []string
	gitignore   bool
	maxFileSize int64
	format      string
	quiet       bool
	noColor     bool
	debug       bool

	loggingCleanup func()
}

// scanOptions turns flags into config options.
func (o *rootOptions) scanOptions() []config.Option {
	return []config.Option{
		config.WithExclude(o.exclude...),
		config.WithGitignore(o.gitignore),
		config.WithMaxFileSize(o.maxFileSize),
	}
}

// NewRootCmd creates the root command for the filesearch CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "filesearch path [regex] [zipfile]",
		Short: "Find files by line pattern and zip them",
		Long: `filesearch walks path recursively and reports every regular file that has
at least one line fully matching regex. With zipfile, the matching files are
written to a zip archive under their paths relative to path.

Without regex every regular file matches. Without arguments the usage line
is printed.`,
		Example: `  filesearch ./docs
  filesearch ./docs 'TODO.*'
  filesearch ./docs 'TODO.*' todos.zip --exclude '*.tmp'`,
		Version:       version.Version,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), config.Usage)
				return err
			}
			_, err := runSearch(cmd.Context(), cmd, args, opts)
			return err
		},
	}

	cmd.SetVersionTemplate("filesearch version {{.Version}}\n")

	flags := cmd.PersistentFlags()
	flags.StringArrayVar(&opts.exclude, "exclude", nil, "Skip paths matching a gitignore-style pattern (repeatable)")
	flags.BoolVar(&opts.gitignore, "gitignore", false, "Honour .gitignore files and skip .git directories")
	flags.Int64Var(&opts.maxFileSize, "max-file-size", 0, "Skip files larger than this many bytes (0 = no limit)")
	flags.StringVar(&opts.format, "format", "text", "Summary format: text, json or yaml")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Do not print matching paths")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging to ~/.filesearch/logs/")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return startLogging(cmd, opts)
	}
	cmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		stopLogging(opts)
		return nil
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newWatchCmd(opts))

	return cmd
}

// startLogging installs the default slog logger for this invocation.
func startLogging(cmd *cobra.Command, opts *rootOptions) error {
	cfg := logging.DefaultConfig()
	if opts.debug {
		cfg = logging.DebugConfig()
	}
	cfg.Stderr = cmd.ErrOrStderr()

	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	opts.loggingCleanup = cleanup
	slog.SetDefault(logger)

	if opts.debug {
		slog.Info("debug logging enabled",
			slog.String("log_file", cfg.FilePath),
			slog.String("version", version.Version))
	}
	return nil
}

func stopLogging(opts *rootOptions) {
	if opts.loggingCleanup != nil {
		opts.loggingCleanup()
		opts.loggingCleanup = nil
	}
}

// Execute runs the root command. Errors are printed to stderr; the caller
// only decides the exit status.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	err := root.ExecuteContext(ctx)
	if err != nil {
		_, _ = fmt.Fprint(root.ErrOrStderr(), serrors.FormatForCLI(err))
	}
	return err
}
