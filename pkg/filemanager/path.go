package filemanager

import (
	"net/url"
	"strings"
)

// Paths are /-delimited directory identifiers; "" is the root. A path's
// ancestors are its proper prefixes split on /.

// parentPath returns the path with its last segment removed, or "" for
// a top-level segment or the root itself.
func parentPath(p string) string {
	idx := strings.LastIndex(p, "/")
	if idx < 0 {
		return ""
	}
	return p[:idx]
}

// isPathPrefix reports whether p is the path itself, an ancestor of it,
// or the root.
func isPathPrefix(p, of string) bool {
	if p == "" || p == of {
		return true
	}
	return strings.HasPrefix(of, p+"/")
}

// commonAncestor finds the longest prefix of target that is also a
// prefix of cursor, by progressively truncating target at its last
// slash. The root always qualifies, so the search terminates.
func commonAncestor(cursor, target string) string {
	p := target
	for {
		if isPathPrefix(p, cursor) {
			return p
		}
		p = parentPath(p)
	}
}

// openChain returns the ordered list of paths to open to get from
// ancestor (exclusive) down to target (inclusive). When target equals
// the ancestor the target itself still needs reopening so its listing
// is fetched again.
func openChain(ancestor, target string) []string {
	if target == ancestor {
		return []string{target}
	}
	var chain []string
	for p := target; p != ancestor; p = parentPath(p) {
		chain = append(chain, p)
	}
	// reverse into top-down order
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// payloadKey is the request body the remote widget sends when fetching
// the listing for a path. Duplicate and ancestor requests are told
// apart from the wanted one by exact comparison against this key.
func payloadKey(path string) string {
	return "directory=" + url.QueryEscape(path)
}

// leafName extracts the trailing name.extension component of a file
// reference, tolerating callers that pass a full local path.
func leafName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

// stemOf returns the file name with its extension removed; names
// without a dot are returned unchanged.
func stemOf(entry string) string {
	idx := strings.LastIndex(entry, ".")
	if idx <= 0 {
		return entry
	}
	return entry[:idx]
}

// matchesEntry reports whether a listing entry satisfies a lookup by
// name: the query must equal the full entry or its stem. A bare prefix
// is not a match.
func matchesEntry(entry, query string) bool {
	return entry == query || stemOf(entry) == query
}
