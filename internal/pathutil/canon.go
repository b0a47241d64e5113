// Package pathutil provides the canonical-path equality primitive used
// across every cache and visited-set in the deploy engine. Canonical
// equality is the single correctness key spec §9 calls out: two
// distinct on-disk files must never collapse into one cache entry, and
// a failed canonicalization must fall back to the lexical string rather
// than silently merging with an unrelated path.
package pathutil

import "path/filepath"

// Canonical resolves symlinks and relative components in path. If
// resolution fails (the path does not exist, or permission is denied),
// Canonical falls back to filepath.Clean(path) so callers still get a
// stable, comparable key — just one that is lexical rather than
// filesystem-verified.
func Canonical(path string) string {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		abs, absErr := filepath.Abs(path)
		if absErr != nil {
			return filepath.Clean(path)
		}
		return filepath.Clean(abs)
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return filepath.Clean(resolved)
	}
	return filepath.Clean(abs)
}
