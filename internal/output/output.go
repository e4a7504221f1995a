// Package output renders run progress and summaries for the CLI: one line
// per matching file, one line per file that could not be processed, and a
// closing report in text, JSON or YAML.
package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Writer provides formatted output for CLI.
type Writer struct {
	out      io.Writer
	useColor bool
	styles   Styles
}

// New creates a new output Writer. Output is plain unless color is enabled.
func New(out io.Writer, useColor bool) *Writer {
	styles := NoColorStyles()
	if useColor {
		styles = DefaultStyles()
	}
	return &Writer{
		out:      out,
		useColor: useColor,
		styles:   styles,
	}
}

// Out returns the underlying writer.
func (w *Writer) Out() io.Writer {
	return w.out
}

// render applies style only in color mode so plain output is byte-exact.
func (w *Writer) render(style lipgloss.Style, s string) string {
	if !w.useColor {
		return s
	}
	return style.Render(s)
}

// Line prints a message styled as style.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Line(style lipgloss.Style, msg string) {
	_, _ = fmt.Fprintln(w.out, w.render(style, msg))
}

// Match prints a matching file path.
func (w *Writer) Match(path string) {
	w.Line(w.styles.Match, path)
}

// Header prints a bold heading.
func (w *Writer) Header(msg string) {
	w.Line(w.styles.Header, msg)
}

// Field prints an indented "label: value" pair.
func (w *Writer) Field(label string, value any) {
	_, _ = fmt.Fprintf(w.out, "  %s %v\n", w.render(w.styles.Label, label+":"), value)
}

// Success prints a success message.
func (w *Writer) Success(msg string) {
	w.Line(w.styles.Success, msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Line(w.styles.Warning, msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Line(w.styles.Error, msg)
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Dimf prints a low-emphasis status line.
func (w *Writer) Dimf(format string, args ...any) {
	w.Line(w.styles.Dim, fmt.Sprintf(format, args...))
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}
