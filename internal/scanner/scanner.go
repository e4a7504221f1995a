package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	serrors "github.com/kennethwty/filesearch/internal/errors"
	"github.com/kennethwty/filesearch/internal/gitignore"
)

// gitignoreCacheSize bounds the number of per-directory .gitignore rulesets
// kept in memory.
const gitignoreCacheSize = 1000

// Scanner enumerates the entries under a root directory.
type Scanner struct {
	opts    Options
	exclude *gitignore.Ruleset
	skip    map[string]struct{}

	// gitignoreCache maps an absolute directory to its parsed .gitignore
	// (nil when the directory has none).
	gitignoreCache *lru.Cache[string, *gitignore.Ruleset]
}

// New creates a Scanner for opts.
func New(opts Options) (*Scanner, error) {
	cache, err := lru.New[string, *gitignore.Ruleset](gitignoreCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create gitignore cache: %w", err)
	}

	skip := make(map[string]struct{}, len(opts.SkipPaths))
	for _, p := range opts.SkipPaths {
		resolved, err := ResolvePath(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve skip path %s: %w", p, err)
		}
		skip[resolved] = struct{}{}
	}

	return &Scanner{
		opts:           opts,
		exclude:        gitignore.FromPatterns(opts.Exclude),
		skip:           skip,
		gitignoreCache: cache,
	}, nil
}

// Walk returns a lazy sequence over root and everything beneath it, root
// first, in lexical depth-first order. Both files and directories are
// yielded.
//
// Errors come in two flavours. A root that does not exist or cannot be read
// yields a single fatal ERR_203_ROOT_INACCESSIBLE and the sequence ends.
// A descendant that vanishes or cannot be read yields a per-file error with
// the entry's path set, and the walk continues. Cancelling ctx ends the
// sequence with ctx.Err().
//
// The sequence is single-use.
func (s *Scanner) Walk(ctx context.Context, root string) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			yield(Entry{Path: root}, rootError(root, err))
			return
		}

		info, err := os.Stat(absRoot)
		if err != nil {
			yield(Entry{Path: absRoot}, rootError(absRoot, err))
			return
		}

		// Skip paths are compared in resolved form.
		realRoot, err := filepath.EvalSymlinks(absRoot)
		if err != nil {
			realRoot = absRoot
		}

		// A trailing separator makes WalkDir resolve a symlinked root.
		walkRoot := absRoot
		if info.IsDir() {
			walkRoot = absRoot + string(filepath.Separator)
		}

		stopped := false
		walkErr := filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}

			path = filepath.Clean(path)
			isRoot := path == absRoot

			if err != nil {
				if isRoot {
					stopped = true
					yield(Entry{Path: absRoot}, rootError(absRoot, err))
					return filepath.SkipAll
				}
				if !yield(Entry{Path: path}, serrors.FileError(serrors.ErrCodeFileUnreadable, path, err)) {
					stopped = true
					return filepath.SkipAll
				}
				return nil
			}

			if !isRoot {
				if s.skipped(absRoot, realRoot, path) {
					if d.IsDir() {
						return filepath.SkipDir
					}
					return nil
				}
				if s.excluded(absRoot, path, d.IsDir()) {
					if d.IsDir() {
						return filepath.SkipDir
					}
					return nil
				}
			}

			entry, entryErr := classify(path, d)
			if !yield(entry, entryErr) {
				stopped = true
				return filepath.SkipAll
			}
			return nil
		})

		if walkErr != nil && !stopped {
			yield(Entry{}, walkErr)
		}
	}
}

// ResolvePath returns p as an absolute path with symlinks in its directory
// resolved. The final element is kept as is, so the path need not exist yet.
func ResolvePath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	dir, err := filepath.EvalSymlinks(filepath.Dir(abs))
	if err != nil {
		return abs, nil
	}
	return filepath.Join(dir, filepath.Base(abs)), nil
}

// skipped reports whether path, met below absRoot, is one of the skip paths.
// The walk does not follow nested symlinks, so resolving the root is enough.
func (s *Scanner) skipped(absRoot, realRoot, path string) bool {
	if len(s.skip) == 0 {
		return false
	}
	rel, err := filepath.Rel(absRoot, path)
	if err != nil {
		return false
	}
	_, ok := s.skip[filepath.Join(realRoot, rel)]
	return ok
}

// classify builds the Entry for path. Symlinks are resolved so a link to a
// file is read like a file; links to directories are reported but not
// followed.
func classify(path string, d fs.DirEntry) (Entry, error) {
	var (
		info fs.FileInfo
		err  error
	)
	if d.Type()&fs.ModeSymlink != 0 {
		info, err = os.Stat(path)
	} else {
		info, err = d.Info()
	}
	if err != nil {
		return Entry{Path: path}, serrors.FileError(serrors.ErrCodeFileUnreadable, path, err)
	}

	entry := Entry{
		Path:    path,
		ModTime: info.ModTime(),
	}

	switch {
	case info.IsDir():
		entry.Kind = KindDir
	case info.Mode().IsRegular():
		entry.Kind = KindFile
		entry.Size = info.Size()
	default:
		entry.Kind = KindOther
	}

	return entry, nil
}

// excluded applies --exclude patterns and, when enabled, .gitignore files.
func (s *Scanner) excluded(absRoot, path string, isDir bool) bool {
	if s.exclude.Len() == 0 && !s.opts.RespectGitignore {
		return false
	}

	rel, err := filepath.Rel(absRoot, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	if s.exclude.Ignored(rel, isDir) {
		return true
	}

	if !s.opts.RespectGitignore {
		return false
	}

	if isDir && filepath.Base(path) == ".git" {
		return true
	}

	return s.gitignored(absRoot, rel, isDir)
}

// gitignored checks rel against every .gitignore from the root down to the
// entry's parent directory.
func (s *Scanner) gitignored(absRoot, rel string, isDir bool) bool {
	parts := strings.Split(rel, "/")
	dir := absRoot
	base := ""

	for i := 0; i < len(parts); i++ {
		if rs := s.rulesetFor(dir, base); rs != nil && rs.Ignored(rel, isDir) {
			return true
		}
		if i == len(parts)-1 {
			break
		}
		dir = filepath.Join(dir, parts[i])
		if base == "" {
			base = parts[i]
		} else {
			base = base + "/" + parts[i]
		}
	}

	return false
}

// rulesetFor loads (or fetches from cache) the .gitignore in dir.
func (s *Scanner) rulesetFor(dir, base string) *gitignore.Ruleset {
	if rs, ok := s.gitignoreCache.Get(dir); ok {
		return rs
	}

	var rs *gitignore.Ruleset
	path := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(path); err == nil {
		rs = gitignore.New()
		if err := rs.Load(path, base); err != nil {
			rs = nil
		}
	}

	s.gitignoreCache.Add(dir, rs)
	return rs
}

// rootError reports a traversal root that cannot be walked.
func rootError(root string, cause error) error {
	msg := "cannot read traversal root"
	if errors.Is(cause, fs.ErrNotExist) {
		msg = "traversal root does not exist"
	}
	return serrors.SetupError(serrors.ErrCodeRootInaccessible, msg, root, cause).
		WithSuggestion("check the path and its permissions")
}
