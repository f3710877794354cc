package far

import "strings"

// NormalizeName converts a stored entry name to fs.ValidPath format.
//
// It performs the following transformations:
//   - Converts backslash separators to slashes: `Music\Modes` → "Music/Modes"
//   - Strips leading and trailing slashes
//   - Collapses consecutive slashes
//   - Converts empty string to root: "" → "."
//
// The containers shipped with the game use backslash separators; the
// format itself does not say which separator is canonical, so both are
// accepted.
//
// Note: This function does not resolve or validate path elements. Names
// containing "." or ".." elements are preserved and rejected later by
// fs.ValidPath at the lookup and extraction boundaries.
func NormalizeName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = strings.Trim(name, "/")
	if name == "" {
		return "."
	}

	parts := strings.Split(name, "/")
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
