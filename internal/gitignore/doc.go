// Package gitignore matches slash-separated relative paths against
// gitignore-syntax patterns.
//
// Supported syntax:
//   - Wildcards: *, ?, [abc], ** (any number of directories)
//   - Rooted patterns (/build) and patterns containing a slash (docs/tmp)
//   - Directory-only patterns (build/)
//   - Negation (!keep.log); the last matching rule wins
//   - Comments (#) and blank lines
//
// Usage:
//
//	rs := gitignore.New()
//	rs.Add("*.log", "")
//	rs.Add("!keep.log", "")
//	if rs.Ignored("logs/error.log", false) {
//	    // skip
//	}
//
// Rules read from a nested .gitignore apply under their base directory:
//
//	rs.Load("/proj/src/.gitignore", "src")
package gitignore
