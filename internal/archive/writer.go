package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	serrors "github.com/kennethwty/filesearch/internal/errors"
	"github.com/kennethwty/filesearch/internal/scanner"
)

// Writer assembles zip archives from scanned files.
type Writer struct {
	logger *slog.Logger
	method uint16
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithLogger sets the logger used for per-entry debug output.
func WithLogger(logger *slog.Logger) WriterOption {
	return func(w *Writer) {
		w.logger = logger
	}
}

// NewWriter creates a Writer. Entries are deflated with the zip package's
// default level.
func NewWriter(opts ...WriterOption) *Writer {
	w := &Writer{
		logger: slog.Default(),
		method: zip.Deflate,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write creates (or truncates) the archive at archivePath and adds files in
// order. Each entry is named by Relativize(file.Path, baseDir), stamped with
// the file's modification time and holds the file's bytes verbatim.
//
// Any failure is fatal for the archive: the partially written file is closed
// and removed, and the error is returned. Write returns the number of entries
// written.
func (w *Writer) Write(ctx context.Context, archivePath, baseDir string, files []scanner.Entry) (n int, err error) {
	lock := newOutputLock(archivePath)
	if err := lock.acquire(archivePath); err != nil {
		return 0, err
	}
	defer func() {
		if unlockErr := lock.release(); unlockErr != nil {
			w.logger.Warn("archive lock release failed",
				slog.String("archive", archivePath),
				slog.String("error", unlockErr.Error()))
		}
	}()

	out, err := os.Create(archivePath)
	if err != nil {
		return 0, serrors.SetupError(serrors.ErrCodeArchiveCreate,
			"cannot create archive", archivePath, err).
			WithSuggestion("check that the destination directory exists and is writable")
	}

	// Runs last: drop whatever was written if anything failed.
	defer func() {
		if err != nil {
			_ = os.Remove(archivePath)
		}
	}()
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = writeError(archivePath, "close archive", closeErr)
		}
	}()

	zw := zip.NewWriter(out)
	defer func() {
		if closeErr := zw.Close(); closeErr != nil && err == nil {
			err = writeError(archivePath, "finalize archive", closeErr)
		}
	}()

	for _, file := range files {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return n, ctxErr
		}

		name, relErr := Relativize(file.Path, baseDir)
		if relErr != nil {
			return n, relErr
		}

		if addErr := w.addEntry(zw, name, file); addErr != nil {
			return n, writeError(archivePath, fmt.Sprintf("add %s", name), addErr).WithDetail("source", file.Path)
		}
		n++

		w.logger.Debug("archived file",
			slog.String("entry", name),
			slog.Time("modified", file.ModTime))
	}

	return n, nil
}

// addEntry copies one file into a new entry.
func (w *Writer) addEntry(zw *zip.Writer, name string, file scanner.Entry) error {
	src, err := os.Open(file.Path)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	header := &zip.FileHeader{
		Name:     name,
		Method:   w.method,
		Modified: file.ModTime,
	}

	dst, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("create entry: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copy content: %w", err)
	}
	return nil
}

func writeError(archivePath, action string, cause error) *serrors.SearchError {
	return serrors.SetupError(serrors.ErrCodeArchiveWrite,
		fmt.Sprintf("cannot write archive: %s", action), archivePath, cause)
}
