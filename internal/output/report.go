package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kennethwty/filesearch/internal/config"
	"github.com/kennethwty/filesearch/internal/search"
)

// Format selects how the closing report is rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json or yaml)", s)
	}
}

// Report is the machine-readable summary of a run.
type Report struct {
	Config *config.ScanConfig `json:"config" yaml:"config"`
	Result *search.Result     `json:"result" yaml:"result"`
}

// WriteReport renders the summary of result in the given format.
func WriteReport(w *Writer, format Format, cfg *config.ScanConfig, result *search.Result) error {
	rep := Report{Config: cfg, Result: result}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w.Out())
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("encode json report: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w.Out())
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("encode yaml report: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml report: %w", err)
		}
		return nil
	default:
		writeText(w, rep)
		return nil
	}
}

func writeText(w *Writer, rep Report) {
	res := rep.Result

	w.Newline()
	w.Header("Search summary")
	w.Field("Root", res.Root)
	if rep.Config != nil && rep.Config.HasPattern {
		w.Field("Pattern", rep.Config.Pattern)
	} else {
		w.Field("Pattern", "(none, every file matches)")
	}
	w.Field("Scanned", fmt.Sprintf("%d files", res.Scanned))
	w.Field("Skipped", fmt.Sprintf("%d directories and special files", res.Skipped))
	w.Field("Matched", len(res.Matches))
	w.Field("Duration", res.Duration.Round(time.Millisecond))

	if len(res.Failures) > 0 {
		w.Warningf("%d file(s) could not be processed", len(res.Failures))
	}
	if res.ArchivePath != "" {
		w.Successf("Archived %d file(s) to %s", res.Archived, res.ArchivePath)
	}
}
