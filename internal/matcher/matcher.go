// Package matcher decides whether a file's text content qualifies for the
// archive: a file matches when at least one of its lines fully matches the
// configured regular expression.
package matcher

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"unicode/utf8"

	serrors "github.com/kennethwty/filesearch/internal/errors"
)

// MaxLineLength is the longest line Matches will buffer (16 MiB).
// Longer lines are reported as not being text.
const MaxLineLength = 16 * 1024 * 1024

// Matcher tests files against a compiled full-line pattern.
// A Matcher without a pattern accepts every file without reading it.
// Matchers are immutable and safe to share.
type Matcher struct {
	pattern string
	re      *regexp.Regexp
}

// MatchAll returns a Matcher that treats every file as a match.
func MatchAll() *Matcher {
	return &Matcher{}
}

// Compile compiles pattern once for full-line matching. When enabled is
// false the pattern is ignored and the result is MatchAll.
func Compile(pattern string, enabled bool) (*Matcher, error) {
	if !enabled {
		return MatchAll(), nil
	}

	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, serrors.ConfigError(serrors.ErrCodePatternInvalid,
			fmt.Sprintf("invalid pattern %q", pattern), err).
			WithSuggestion("patterns use RE2 syntax and must match a whole line")
	}

	return &Matcher{pattern: pattern, re: re}, nil
}

// Pattern returns the source pattern, or "" for MatchAll.
func (m *Matcher) Pattern() string {
	return m.pattern
}

// MatchesAll reports whether the matcher accepts every file.
func (m *Matcher) MatchesAll() bool {
	return m.re == nil
}

// Matches reads the file at path as UTF-8 text and reports whether any line
// fully matches. Scanning stops at the first matching line. Lines that are
// not valid UTF-8 fail with ERR_202_FILE_NOT_TEXT; open and read failures
// fail with ERR_201_FILE_UNREADABLE.
func (m *Matcher) Matches(path string) (bool, error) {
	if m.re == nil {
		return true, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return false, serrors.FileError(serrors.ErrCodeFileUnreadable, path, err)
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineLength)
	sc.Split(scanLines)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Bytes()
		if !utf8.Valid(line) {
			return false, serrors.FileError(serrors.ErrCodeFileNotText, path,
				fmt.Errorf("invalid UTF-8 on line %d", lineNo)).
				WithDetail("line", fmt.Sprint(lineNo))
		}
		if m.re.Match(line) {
			return true, nil
		}
	}

	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return false, serrors.FileError(serrors.ErrCodeFileNotText, path,
				fmt.Errorf("line %d exceeds %d bytes", lineNo+1, MaxLineLength))
		}
		return false, serrors.FileError(serrors.ErrCodeFileUnreadable, path, err)
	}

	return false, nil
}

// scanLines splits on "\n", "\r\n" and a lone "\r". The terminator is not
// part of the token. A final line without terminator is still returned.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		// '\r': need one more byte to tell "\r\n" from a lone "\r".
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		return 0, nil, nil
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
