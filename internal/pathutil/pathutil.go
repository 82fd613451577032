// Package pathutil provides path-component and affix helpers shared by the
// archive and verify packages.
package pathutil

import (
	"path/filepath"
	"strings"
)

// BaseName returns the final path segment of p with trailing separators
// stripped. Unlike filepath.Base it never returns "/" for paths like
// "/data/run42///" — those yield "run42". A path consisting only of
// separators yields "/", and an empty path yields ".".
func BaseName(p string) string {
	trimmed := strings.TrimRight(p, string(filepath.Separator))
	if trimmed == "" {
		if p == "" {
			return "."
		}
		return string(filepath.Separator)
	}
	return filepath.Base(trimmed)
}

// StripSuffix removes suffix from name if present. It handles multi-part
// suffixes like ".pod5.tar" as a single unit; filepath.Ext would only peel
// off ".tar". Returns name unchanged when the suffix doesn't match.
func StripSuffix(name, suffix string) string {
	return strings.TrimSuffix(name, suffix)
}

// HasSuffix reports whether name carries the given multi-part suffix.
func HasSuffix(name, suffix string) bool {
	return suffix != "" && strings.HasSuffix(name, suffix)
}
