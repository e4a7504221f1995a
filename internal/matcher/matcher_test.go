package matcher

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/kennethwty/filesearch/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCompile_InvalidPattern(t *testing.T) {
	// Given: a pattern that is not valid RE2
	// When: compiling it
	m, err := Compile("([a-z", true)

	// Then: a config error is returned before any file is touched
	require.Error(t, err)
	assert.Nil(t, m)
	assert.Equal(t, serrors.ErrCodePatternInvalid, serrors.GetCode(err))
	assert.True(t, serrors.IsFatal(err))
}

func TestCompile_Disabled(t *testing.T) {
	m, err := Compile("([a-z", false)

	require.NoError(t, err)
	assert.True(t, m.MatchesAll())
	assert.Equal(t, "", m.Pattern())
}

func TestMatches_FullLineSemantics(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		line    string
		want    bool
	}{
		{name: "exact", pattern: "world", line: "world", want: true},
		{name: "substring is not enough", pattern: "world", line: "hello world", want: false},
		{name: "prefix is not enough", pattern: "wor", line: "world", want: false},
		{name: "wildcard spans line", pattern: ".*world.*", line: "hello world!", want: true},
		{name: "alternation anchored as a whole", pattern: "foo|bar", line: "xbar", want: false},
		{name: "alternation second branch", pattern: "foo|bar", line: "bar", want: true},
		{name: "empty pattern matches empty line", pattern: "", line: "", want: true},
		{name: "character class", pattern: `\d{3}`, line: "123", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a file holding exactly one terminated line
			path := writeFile(t, t.TempDir(), "line.txt", tt.line+"\n")
			m, err := Compile(tt.pattern, true)
			require.NoError(t, err)

			// When
			got, err := m.Matches(path)

			// Then
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatches_AnyLine(t *testing.T) {
	dir := t.TempDir()
	x := writeFile(t, dir, "x.txt", "hello\nworld")
	y := writeFile(t, dir, "y.txt", "foo")

	m, err := Compile("world", true)
	require.NoError(t, err)

	ok, err := m.Matches(x)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.Matches(y)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatches_LineTerminators(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "lf", content: "a\nworld\nb\n"},
		{name: "crlf", content: "a\r\nworld\r\nb"},
		{name: "lone cr", content: "a\rworld\rb"},
		{name: "trailing cr", content: "a\rworld\r"},
		{name: "no terminator", content: "world"},
	}

	m, err := Compile("world", true)
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "f.txt", tt.content)
			ok, err := m.Matches(path)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestMatches_EmptyFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.txt", "")

	m, err := Compile(".*", true)
	require.NoError(t, err)

	ok, err := m.Matches(path)
	require.NoError(t, err)
	assert.False(t, ok, "an empty file has no lines")
}

func TestMatches_InvalidUTF8(t *testing.T) {
	// Given: a file whose first line is not UTF-8
	path := writeFile(t, t.TempDir(), "bin.dat", "\xff\xfe\x00\x01\nworld\n")

	m, err := Compile("world", true)
	require.NoError(t, err)

	// When: matching
	ok, err := m.Matches(path)

	// Then: a per-file decoding error is returned
	require.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, serrors.ErrCodeFileNotText, serrors.GetCode(err))
	assert.True(t, serrors.IsPerFile(err))
}

func TestMatches_StopsAtFirstMatch(t *testing.T) {
	// A matching line before undecodable bytes short-circuits the scan.
	path := writeFile(t, t.TempDir(), "mixed.txt", "world\n\xff\xfe\n")

	m, err := Compile("world", true)
	require.NoError(t, err)

	ok, err := m.Matches(path)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMatches_MissingFile(t *testing.T) {
	m, err := Compile("x", true)
	require.NoError(t, err)

	_, err = m.Matches(filepath.Join(t.TempDir(), "gone.txt"))

	require.Error(t, err)
	assert.Equal(t, serrors.ErrCodeFileUnreadable, serrors.GetCode(err))
}

func TestMatches_Directory(t *testing.T) {
	m, err := Compile("x", true)
	require.NoError(t, err)

	_, err = m.Matches(t.TempDir())

	require.Error(t, err)
	assert.True(t, serrors.IsPerFile(err))
}

func TestMatches_MatchAllDoesNotRead(t *testing.T) {
	ok, err := MatchAll().Matches(filepath.Join(t.TempDir(), "does-not-exist"))

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMatches_LongLine(t *testing.T) {
	path := writeFile(t, t.TempDir(), "long.txt", strings.Repeat("a", 200*1024)+"\nend\n")

	m, err := Compile("end", true)
	require.NoError(t, err)

	ok, err := m.Matches(path)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestScanLines(t *testing.T) {
	adv, tok, err := scanLines([]byte("ab\r"), false)
	require.NoError(t, err)
	assert.Equal(t, 0, adv, "lone CR at buffer end waits for more input")
	assert.Nil(t, tok)

	adv, tok, err = scanLines([]byte("ab\r"), true)
	require.NoError(t, err)
	assert.Equal(t, 3, adv)
	assert.Equal(t, "ab", string(tok))

	adv, tok, err = scanLines([]byte("ab\r\ncd"), false)
	require.NoError(t, err)
	assert.Equal(t, 4, adv)
	assert.Equal(t, "ab", string(tok))
}
