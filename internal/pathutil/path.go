// Package pathutil manipulates slash-separated archive paths.
package pathutil

import "strings"

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

// DirPrefix converts a directory name to the prefix its children share.
// The root "." maps to the empty prefix, which matches every path.
func DirPrefix(name string) string {
	if name == "." {
		return ""
	}
	return name + "/"
}

// Child returns the immediate child component of path under prefix, and
// whether that child is itself a directory (path has further components).
// path must start with prefix.
func Child(path, prefix string) (name string, isSubDir bool) {
	rel := strings.TrimPrefix(path, prefix)
	if head, _, ok := strings.Cut(rel, "/"); ok {
		return head, true
	}
	return rel, false
}
