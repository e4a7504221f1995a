package errors

import (
	stderrors "errors"
	"fmt"
)

// SearchError is the structured error type for filesearch.
// It carries enough context to decide whether a run can continue and to
// present the failure to the operator.
type SearchError struct {
	// Code is the unique error code (e.g., "ERR_201_FILE_UNREADABLE").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Path is the file or directory the error is about, if any.
	Path string

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *SearchError) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *SearchError) Unwrap() error {
	return e.Cause
}

// Is matches another SearchError by code.
func (e *SearchError) Is(target error) bool {
	if t, ok := target.(*SearchError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
func (e *SearchError) WithDetail(key, value string) *SearchError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *SearchError) WithSuggestion(suggestion string) *SearchError {
	e.Suggestion = suggestion
	return e
}

// WithPath records the path the error refers to.
func (e *SearchError) WithPath(path string) *SearchError {
	e.Path = path
	return e
}

// New creates a new SearchError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *SearchError {
	return &SearchError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a SearchError from an existing error.
// The error's message becomes the SearchError message.
func Wrap(code string, err error) *SearchError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration error. Config errors are fatal and are
// raised before traversal begins.
func ConfigError(code, message string, cause error) *SearchError {
	return New(code, message, cause)
}

// FileError creates a per-file error bound to path.
func FileError(code, path string, cause error) *SearchError {
	return New(code, fmt.Sprintf("cannot process %s", path), cause).WithPath(path)
}

// SetupError creates a run-fatal IO error bound to path.
func SetupError(code, message, path string, cause error) *SearchError {
	return New(code, message, cause).WithPath(path)
}

// IsFatal checks if an error has fatal severity.
// Errors that are not SearchErrors are treated as fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var se *SearchError
	if stderrors.As(err, &se) {
		return se.Severity == SeverityFatal
	}
	return true
}

// IsPerFile reports whether err only affects a single file.
func IsPerFile(err error) bool {
	var se *SearchError
	if stderrors.As(err, &se) {
		return isPerFileCode(se.Code)
	}
	return false
}

// GetCode extracts the error code from a SearchError anywhere in the chain.
// Returns empty string if there is none.
func GetCode(err error) string {
	var se *SearchError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ""
}
