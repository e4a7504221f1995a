// Package config builds the immutable settings for one search run.
//
// A ScanConfig comes from positional arguments plus flag-driven options.
// The line pattern is compiled while the config is built, so an invalid
// pattern is reported before any directory is touched.
package config

import (
	"fmt"
	"strings"

	serrors "github.com/kennethwty/filesearch/internal/errors"
	"github.com/kennethwty/filesearch/internal/gitignore"
	"github.com/kennethwty/filesearch/internal/matcher"
)

// Usage is the one-line synopsis printed when no arguments are given.
const Usage = "FileSearchApp path [regex] [zipfile]"

// ScanConfig holds the settings of a single run. Treat it as read-only once
// New or FromArgs returns it.
type ScanConfig struct {
	// RootPath is the directory (or single file) to scan.
	RootPath string `yaml:"root" json:"root"`

	// Pattern is the full-line regular expression. Only meaningful when
	// HasPattern is set; without a pattern every regular file matches.
	Pattern    string `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	HasPattern bool   `yaml:"has_pattern" json:"has_pattern"`

	// ArchivePath is the zip destination. Only meaningful when HasArchive
	// is set; an archive that was asked for must name a file.
	ArchivePath string `yaml:"archive,omitempty" json:"archive,omitempty"`
	HasArchive  bool   `yaml:"has_archive" json:"has_archive"`

	// Exclude holds gitignore-syntax patterns relative to RootPath.
	Exclude []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`

	// RespectGitignore honours .gitignore files found during the walk.
	RespectGitignore bool `yaml:"respect_gitignore" json:"respect_gitignore"`

	// MaxFileSize skips larger files with a per-file error. 0 = unlimited.
	MaxFileSize int64 `yaml:"max_file_size,omitempty" json:"max_file_size,omitempty"`

	matcher *matcher.Matcher
}

// Option configures a ScanConfig under construction.
type Option func(*ScanConfig)

// WithPattern enables content matching with the given full-line pattern.
func WithPattern(pattern string) Option {
	return func(c *ScanConfig) {
		c.Pattern = pattern
		c.HasPattern = true
	}
}

// WithArchive enables archiving of matched files to path.
func WithArchive(path string) Option {
	return func(c *ScanConfig) {
		c.ArchivePath = path
		c.HasArchive = true
	}
}

// WithExclude appends exclusion patterns.
func WithExclude(patterns ...string) Option {
	return func(c *ScanConfig) {
		c.Exclude = append(c.Exclude, patterns...)
	}
}

// WithGitignore toggles .gitignore handling.
func WithGitignore(enabled bool) Option {
	return func(c *ScanConfig) {
		c.RespectGitignore = enabled
	}
}

// WithMaxFileSize sets the per-file size limit in bytes.
func WithMaxFileSize(n int64) Option {
	return func(c *ScanConfig) {
		c.MaxFileSize = n
	}
}

// New builds and validates a config for root. The pattern, if any, is
// compiled here.
func New(root string, opts ...Option) (*ScanConfig, error) {
	cfg := &ScanConfig{RootPath: root}
	for _, opt := range opts {
		opt(cfg)
	}
	// Options may share a caller's slice.
	cfg.Exclude = append([]string(nil), cfg.Exclude...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m, err := matcher.Compile(cfg.Pattern, cfg.HasPattern)
	if err != nil {
		return nil, err
	}
	cfg.matcher = m

	return cfg, nil
}

// FromArgs maps positional arguments onto a config: root, then an optional
// pattern, then an optional archive path. Arguments past the third are
// ignored. Options are applied after the positional values.
func FromArgs(args []string, opts ...Option) (*ScanConfig, error) {
	if len(args) == 0 {
		return nil, serrors.ConfigError(serrors.ErrCodeRootMissing, "no search path given", nil).
			WithSuggestion("usage: " + Usage)
	}

	positional := make([]Option, 0, 2)
	if len(args) > 1 {
		positional = append(positional, WithPattern(args[1]))
	}
	if len(args) > 2 {
		positional = append(positional, WithArchive(args[2]))
	}

	return New(args[0], append(positional, opts...)...)
}

// Validate checks the config for values that cannot produce a run.
func (c *ScanConfig) Validate() error {
	if strings.TrimSpace(c.RootPath) == "" {
		return serrors.ConfigError(serrors.ErrCodeRootMissing, "search path must not be empty", nil).
			WithSuggestion("usage: " + Usage)
	}

	if c.HasArchive && strings.TrimSpace(c.ArchivePath) == "" {
		return serrors.ConfigError(serrors.ErrCodeOptionInvalid, "archive path must not be empty", nil).
			WithSuggestion("omit the archive argument to search without writing a zip file")
	}

	if c.MaxFileSize < 0 {
		return serrors.ConfigError(serrors.ErrCodeOptionInvalid,
			fmt.Sprintf("max file size must be non-negative, got %d", c.MaxFileSize), nil)
	}

	for _, p := range c.Exclude {
		if strings.TrimSpace(p) == "" {
			return serrors.ConfigError(serrors.ErrCodeOptionInvalid, "exclude pattern must not be empty", nil)
		}
	}
	if len(c.Exclude) > 0 && gitignore.FromPatterns(c.Exclude).Len() == 0 {
		return serrors.ConfigError(serrors.ErrCodeOptionInvalid,
			"exclude patterns contain no usable rules", nil).
			WithDetail("patterns", strings.Join(c.Exclude, ","))
	}

	return nil
}

// Matcher returns the compiled line matcher. A config that did not come from
// New matches every file.
func (c *ScanConfig) Matcher() *matcher.Matcher {
	if c.matcher == nil {
		return matcher.MatchAll()
	}
	return c.matcher
}

// Archiving reports whether matched files are written to an archive.
func (c *ScanConfig) Archiving() bool {
	return c.HasArchive
}
