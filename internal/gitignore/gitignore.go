package gitignore

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Ruleset is an ordered list of compiled gitignore rules.
// A Ruleset is not safe for concurrent Add/Load; matching is read-only.
type Ruleset struct {
	rules []rule
}

type rule struct {
	source  string
	re      *regexp.Regexp
	negate  bool
	dirOnly bool
	base    string
}

// New creates an empty Ruleset.
func New() *Ruleset {
	return &Ruleset{}
}

// FromPatterns builds a Ruleset from patterns rooted at the scan root.
func FromPatterns(patterns []string) *Ruleset {
	rs := New()
	for _, p := range patterns {
		rs.Add(p, "")
	}
	return rs
}

// Len returns the number of compiled rules.
func (rs *Ruleset) Len() int {
	return len(rs.rules)
}

// Add compiles one gitignore line. base is the slash-separated directory the
// line applies under ("" for the root). Blank lines and comments are ignored.
func (rs *Ruleset) Add(line, base string) {
	// "\ " at the end keeps a trailing space.
	keepSpace := strings.HasSuffix(line, `\ `)
	line = strings.TrimSpace(line)
	if keepSpace {
		line = strings.TrimSuffix(line, `\`) + " "
	}
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	r := rule{source: line, base: strings.Trim(base, "/")}

	switch {
	case strings.HasPrefix(line, "!"):
		r.negate = true
		line = line[1:]
	case strings.HasPrefix(line, `\!`), strings.HasPrefix(line, `\#`):
		line = line[1:]
	}

	if strings.HasSuffix(line, "/") {
		r.dirOnly = true
		line = strings.TrimRight(line, "/")
	}
	if line == "" {
		return
	}

	// A slash anywhere but the end anchors the pattern to its base.
	anchored := strings.Contains(line, "/")
	line = strings.TrimPrefix(line, "/")

	expr := globToRegexp(line)
	if !anchored {
		expr = `(?:.*/)?` + expr
	}

	re, err := regexp.Compile("^" + expr + "$")
	if err != nil {
		// Malformed classes such as "[z-a]" never match anything in git either.
		return
	}
	r.re = re

	rs.rules = append(rs.rules, r)
}

// Load adds every line of the gitignore file at path under base.
func (rs *Ruleset) Load(path, base string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open gitignore file: %w", err)
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		rs.Add(sc.Text(), base)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read gitignore file: %w", err)
	}
	return nil
}

// Ignored reports whether rel (slash-separated, relative to the scan root)
// is excluded. A path is excluded when the last rule matching it, or any of
// its parent directories, is not a negation.
func (rs *Ruleset) Ignored(rel string, isDir bool) bool {
	rel = strings.Trim(strings.ReplaceAll(rel, `\`, "/"), "/")
	if rel == "" || rel == "." {
		return false
	}

	ignored := false
	for _, r := range rs.rules {
		if r.match(rel, isDir) {
			ignored = !r.negate
		}
	}
	return ignored
}

func (r rule) match(rel string, isDir bool) bool {
	if r.base != "" {
		if !strings.HasPrefix(rel, r.base+"/") {
			return false
		}
		rel = rel[len(r.base)+1:]
	}

	// Test the path and each of its parent directories.
	for i := 0; i <= len(rel); i++ {
		if i < len(rel) && rel[i] != '/' {
			continue
		}
		candidateIsDir := i < len(rel) || isDir
		if r.dirOnly && !candidateIsDir {
			continue
		}
		if r.re.MatchString(rel[:i]) {
			return true
		}
	}
	return false
}

// globToRegexp translates the glob part of a gitignore pattern.
func globToRegexp(glob string) string {
	var sb strings.Builder

	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch c {
		case '*':
			if i+1 < len(glob) && glob[i+1] == '*' {
				switch {
				case i+2 < len(glob) && glob[i+2] == '/':
					sb.WriteString(`(?:.*/)?`)
					i += 2
				default:
					sb.WriteString(`.*`)
					i++
				}
				continue
			}
			sb.WriteString(`[^/]*`)
		case '?':
			sb.WriteString(`[^/]`)
		case '[':
			end := strings.IndexByte(glob[i+1:], ']')
			if end < 0 {
				sb.WriteString(regexp.QuoteMeta("["))
				continue
			}
			class := glob[i+1 : i+1+end]
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			sb.WriteString("[" + class + "]")
			i += end + 1
		case '\\':
			if i+1 < len(glob) {
				i++
				sb.WriteString(regexp.QuoteMeta(string(glob[i])))
			}
		default:
			sb.WriteString(regexp.QuoteMeta(string(c)))
		}
	}

	return sb.String()
}
