package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kennethwty/filesearch/internal/config"
	serrors "github.com/kennethwty/filesearch/internal/errors"
	"github.com/kennethwty/filesearch/internal/scanner"
	"github.com/kennethwty/filesearch/internal/search"
)

func sampleRun(t *testing.T) (*config.ScanConfig, *search.Result) {
	t.Helper()
	cfg, err := config.FromArgs([]string{"/data", "wor.*", "/tmp/out.zip"})
	require.NoError(t, err)
	return cfg, &search.Result{
		RunID:       "run-1",
		Root:        "/data",
		ArchivePath: "/tmp/out.zip",
		Matches:     []string{"/data/x.txt"},
		Failures:    []search.Failure{{Path: "/data/bad.txt", Code: serrors.ErrCodeFileNotText, Message: "invalid UTF-8 on line 1"}},
		Scanned:     3,
		Skipped:     1,
		Archived:    1,
		Duration:    1500 * time.Millisecond,
	}
}

func TestWriter_PlainOutputIsUnstyled(t *testing.T) {
	// Given: a writer without color
	buf := &bytes.Buffer{}
	w := New(buf, false)

	// When: printing styled lines
	w.Match("/data/x.txt")
	w.Error("boom")
	w.Dimf("%d change(s)", 2)

	// Then: the bytes are exactly the messages
	assert.Equal(t, "/data/x.txt\nboom\n2 change(s)\n", buf.String())
}

func TestWriter_ColorOutputKeepsText(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf, true)

	w.Success("done")

	assert.Contains(t, buf.String(), "done")
}

func TestWriter_Field(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf, false)

	w.Field("Scanned", 3)

	assert.Equal(t, "  Scanned: 3\n", buf.String())
}

func TestConsole_FileFailedLine(t *testing.T) {
	// Given: a per-file error for an undecodable file
	buf := &bytes.Buffer{}
	c := NewConsole(New(buf, false), false)
	err := serrors.FileError(serrors.ErrCodeFileNotText, "/data/bad.txt", errors.New("invalid UTF-8 on line 1"))

	// When: the observer is told about it
	c.FileFailed(search.FileOutcome{Entry: scanner.Entry{Path: "/data/bad.txt"}, Err: err})

	// Then: the classic console line is printed
	assert.Equal(t, "Error processing file: /data/bad.txt: invalid UTF-8 on line 1\n", buf.String())
}

func TestConsole_FileMatched(t *testing.T) {
	buf := &bytes.Buffer{}
	c := NewConsole(New(buf, false), false)

	c.FileMatched(scanner.Entry{Path: "/data/x.txt", Kind: scanner.KindFile})
	c.StateChanged(search.StateWalking, search.StateDone)

	assert.Equal(t, "/data/x.txt\n", buf.String())
}

func TestConsole_QuietSuppressesMatches(t *testing.T) {
	buf := &bytes.Buffer{}
	c := NewConsole(New(buf, false), true)

	c.FileMatched(scanner.Entry{Path: "/data/x.txt"})
	c.FileFailed(search.FileOutcome{Entry: scanner.Entry{Path: "/data/y"}, Err: errors.New("gone")})

	assert.Equal(t, "Error processing file: /data/y: gone\n", buf.String())
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatText},
		{in: "text", want: FormatText},
		{in: "JSON", want: FormatJSON},
		{in: " yaml ", want: FormatYAML},
		{in: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteReport_Text(t *testing.T) {
	buf := &bytes.Buffer{}
	cfg, res := sampleRun(t)

	require.NoError(t, WriteReport(New(buf, false), FormatText, cfg, res))

	out := buf.String()
	assert.Contains(t, out, "Search summary")
	assert.Contains(t, out, "  Pattern: wor.*\n")
	assert.Contains(t, out, "  Scanned: 3 files\n")
	assert.Contains(t, out, "  Matched: 1\n")
	assert.Contains(t, out, "  Duration: 1.5s\n")
	assert.Contains(t, out, "1 file(s) could not be processed")
	assert.Contains(t, out, "Archived 1 file(s) to /tmp/out.zip")
}

func TestWriteReport_TextWithoutPattern(t *testing.T) {
	buf := &bytes.Buffer{}
	cfg, err := config.FromArgs([]string{"/data"})
	require.NoError(t, err)

	require.NoError(t, WriteReport(New(buf, false), FormatText, cfg, &search.Result{Root: "/data"}))

	assert.Contains(t, buf.String(), "(none, every file matches)")
	assert.NotContains(t, buf.String(), "Archived")
}

func TestWriteReport_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	cfg, res := sampleRun(t)

	require.NoError(t, WriteReport(New(buf, false), FormatJSON, cfg, res))

	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "wor.*", decoded["config"]["pattern"])
	assert.Equal(t, "run-1", decoded["result"]["run_id"])
	assert.EqualValues(t, 1, decoded["result"]["archived"])
}

func TestWriteReport_YAML(t *testing.T) {
	buf := &bytes.Buffer{}
	cfg, res := sampleRun(t)

	require.NoError(t, WriteReport(New(buf, false), FormatYAML, cfg, res))

	var decoded struct {
		Config struct {
			Root    string `yaml:"root"`
			Archive string `yaml:"archive"`
		} `yaml:"config"`
		Result struct {
			Matches  []string `yaml:"matches"`
			Duration string   `yaml:"duration"`
		} `yaml:"result"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "/data", decoded.Config.Root)
	assert.Equal(t, "/tmp/out.zip", decoded.Config.Archive)
	assert.Equal(t, []string{"/data/x.txt"}, decoded.Result.Matches)
	assert.Equal(t, "1.5s", decoded.Result.Duration)
}

func TestIsTTY_WithBuffer_ReturnsFalse(t *testing.T) {
	assert.False(t, IsTTY(&bytes.Buffer{}))
	assert.False(t, IsTTY(nil))
}

func TestColorEnabled(t *testing.T) {
	// Given: a non-terminal writer
	buf := &bytes.Buffer{}

	// Then: color is never enabled for it
	assert.False(t, ColorEnabled(buf, false))
	assert.False(t, ColorEnabled(buf, true))
}

func TestDetectNoColor_WithEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	assert.True(t, DetectNoColor())
	assert.False(t, ColorEnabled(os.Stdout, false))
}

func TestDetectCI_WithEnv(t *testing.T) {
	t.Setenv("CI", "true")

	assert.True(t, DetectCI())
}
