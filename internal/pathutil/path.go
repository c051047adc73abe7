// Package pathutil provides path manipulation for slash-separated
// archive paths.
package pathutil

import "strings"

// Normalize converts a user-provided path to canonical archive form.
//
// Leading and trailing slashes are stripped and consecutive slashes are
// collapsed. The empty string and "/" normalize to ".", the archive root.
// "." and ".." elements are preserved; callers that need traversal safety
// must validate separately.
func Normalize(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return "."
	}
	parts := strings.Split(p, "/")
	result := parts[:0]
	for _, part := range parts {
		if part != "" {
			result = append(result, part)
		}
	}
	if len(result) == 0 {
		return "."
	}
	return strings.Join(result, "/")
}

// Base returns the last element of a slash-separated path.
// Empty paths and "." return ".".
func Base(path string) string {
	if path == "" || path == "." {
		return "."
	}
	path = strings.TrimSuffix(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// DirPrefix converts a normalized path to its directory prefix form.
// The root "." becomes "" (matches everything); any other path gains a
// trailing "/" so only children match.
func DirPrefix(name string) string {
	if name == "." {
		return ""
	}
	return name + "/"
}

// Child extracts the immediate child segment of path relative to prefix,
// and reports whether further segments follow (i.e. the child is a
// subdirectory). The split happens after stripping prefix, never on the
// first separator of the full path.
func Child(path, prefix string) (name string, isSubDir bool) {
	rel := strings.TrimPrefix(path, prefix)
	if i := strings.Index(rel, "/"); i >= 0 {
		return rel[:i], true
	}
	return rel, false
}
