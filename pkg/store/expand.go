package store

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// ExpandPatterns resolves local file patterns to concrete paths. A
// pattern without wildcards passes through untouched; patterns are
// matched against the filesystem with `*` stopping at path separators
// and `**` crossing them. Duplicates are dropped, first occurrence
// wins.
func ExpandPatterns(patterns []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, pattern := range patterns {
		pattern = filepath.ToSlash(filepath.Clean(pattern))
		if !strings.ContainsAny(pattern, "*?[{") {
			add(pattern)
			continue
		}

		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}

		matched := false
		err = filepath.WalkDir(staticPrefix(pattern), func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if g.Match(filepath.ToSlash(path)) {
				matched = true
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to expand %q: %w", pattern, err)
		}
		if !matched {
			return nil, fmt.Errorf("no files match %q", pattern)
		}
	}
	return out, nil
}

// staticPrefix returns the wildcard-free leading directory of a
// pattern, the walk root for matching.
func staticPrefix(pattern string) string {
	dir := pattern
	for strings.ContainsAny(dir, "*?[{") {
		parent := filepath.ToSlash(filepath.Dir(dir))
		if parent == dir {
			break
		}
		dir = parent
	}
	if dir == "" {
		return "."
	}
	return dir
}
