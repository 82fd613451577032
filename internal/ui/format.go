// Package ui provides console formatting and colored status output for the
// podarc commands.
package ui

import (
	"fmt"
	"strings"
)

const mib = 1 << 20

// MBCeil converts a byte count to whole mebibytes, rounding up. This matches
// how `du -m` reports sizes, which is what operators eyeball when they
// sanity-check a flowcell directory against its archive.
func MBCeil(b int64) int64 {
	if b <= 0 {
		return 0
	}
	return (b + mib - 1) / mib
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

// FormatCount formats an integer with comma separators.
func FormatCount(n int64) string {
	if n < 0 {
		return "-" + FormatCount(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		b.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// YesNo renders a boolean the way the verification report expects it.
func YesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
