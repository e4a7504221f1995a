// Package errors provides structured error handling for filesearch.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors (raised before any traversal)
//   - 2XX: IO errors (per-file or run setup)
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal aborts the run.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning affects a single file; the run continues.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodePatternInvalid = "ERR_101_PATTERN_INVALID"
	ErrCodeRootMissing    = "ERR_102_ROOT_MISSING"
	ErrCodeOptionInvalid  = "ERR_103_OPTION_INVALID"

	// IO errors (200-299)
	ErrCodeFileUnreadable   = "ERR_201_FILE_UNREADABLE"
	ErrCodeFileNotText      = "ERR_202_FILE_NOT_TEXT"
	ErrCodeRootInaccessible = "ERR_203_ROOT_INACCESSIBLE"
	ErrCodeArchiveCreate    = "ERR_204_ARCHIVE_CREATE"
	ErrCodeArchiveWrite     = "ERR_205_ARCHIVE_WRITE"
	ErrCodePathOutsideRoot  = "ERR_206_PATH_OUTSIDE_ROOT"
	ErrCodeArchiveLocked    = "ERR_207_ARCHIVE_LOCKED"
	ErrCodeFileTooLarge     = "ERR_208_FILE_TOO_LARGE"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	if isPerFileCode(code) {
		return SeverityWarning
	}

	switch categoryFromCode(code) {
	case CategoryConfig, CategoryIO:
		return SeverityFatal
	default:
		return SeverityError
	}
}

// isPerFileCode reports whether a code describes a failure scoped to one file.
func isPerFileCode(code string) bool {
	switch code {
	case ErrCodeFileUnreadable, ErrCodeFileNotText, ErrCodeFileTooLarge:
		return true
	default:
		return false
	}
}
