package errors

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// FormatForCLI formats an error for terminal display.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	var se *SearchError
	if !stderrors.As(err, &se) {
		se = Wrap(ErrCodeInternal, err)
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Error: %s\n", se.Message))
	if se.Path != "" {
		sb.WriteString(fmt.Sprintf("  Path: %s\n", se.Path))
	}
	if se.Cause != nil && se.Cause.Error() != se.Message {
		sb.WriteString(fmt.Sprintf("  Cause: %v\n", se.Cause))
	}
	if se.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  Hint: %s\n", se.Suggestion))
	}
	sb.WriteString(fmt.Sprintf("  Code: %s\n", se.Code))

	return sb.String()
}

// FormatForLog returns slog attributes describing err.
// Details are emitted in key order so log lines are stable.
func FormatForLog(err error) []any {
	if err == nil {
		return nil
	}

	var se *SearchError
	if !stderrors.As(err, &se) {
		return []any{slog.String("error", err.Error())}
	}

	attrs := []any{
		slog.String("error_code", se.Code),
		slog.String("message", se.Message),
		slog.String("category", string(se.Category)),
		slog.String("severity", string(se.Severity)),
	}
	if se.Path != "" {
		attrs = append(attrs, slog.String("path", se.Path))
	}
	if se.Cause != nil {
		attrs = append(attrs, slog.String("cause", se.Cause.Error()))
	}
	if se.Suggestion != "" {
		attrs = append(attrs, slog.String("suggestion", se.Suggestion))
	}

	keys := make([]string, 0, len(se.Details))
	for k := range se.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, slog.String("detail_"+k, se.Details[k]))
	}

	return attrs
}

// Cause returns the innermost message worth showing next to a file name:
// the cause of a SearchError, or the error itself.
func Cause(err error) string {
	var se *SearchError
	if stderrors.As(err, &se) && se.Cause != nil {
		return se.Cause.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
