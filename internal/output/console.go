package output

import (
	"log/slog"

	serrors "github.com/kennethwty/filesearch/internal/errors"
	"github.com/kennethwty/filesearch/internal/scanner"
	"github.com/kennethwty/filesearch/internal/search"
)

// Console reports a run as it happens. It prints each matching path (unless
// quiet) and a line for every file that could not be processed.
type Console struct {
	w      *Writer
	quiet  bool
	logger *slog.Logger
}

var _ search.Observer = (*Console)(nil)

// NewConsole creates a Console writing through w.
func NewConsole(w *Writer, quiet bool) *Console {
	return &Console{w: w, quiet: quiet, logger: slog.Default()}
}

// StateChanged logs phase transitions at debug level.
func (c *Console) StateChanged(from, to search.State) {
	c.logger.Debug("search state changed",
		slog.String("from", from.String()),
		slog.String("to", to.String()))
}

// FileMatched prints the matching path.
func (c *Console) FileMatched(entry scanner.Entry) {
	if c.quiet {
		return
	}
	c.w.Match(entry.Path)
}

// FileFailed prints "Error processing file: <path>: <cause>".
func (c *Console) FileFailed(outcome search.FileOutcome) {
	c.w.Errorf("Error processing file: %s: %s", outcome.Entry.Path, serrors.Cause(outcome.Err))
}
