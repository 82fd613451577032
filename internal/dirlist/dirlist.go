// Package dirlist reads the newline-delimited directory lists that drive the
// archive and reconcile batches.
package dirlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/seqarchive/podarc/internal/pathutil"
)

// Entry is one candidate directory from a list file. Entries are never
// mutated; a directory may turn out to be missing at any stage, which is a
// warning, not an error.
type Entry struct {
	Path string
}

// Base returns the entry's base name with trailing separators stripped.
func (e Entry) Base() string {
	return pathutil.BaseName(e.Path)
}

// ReadFile reads a directory list from path, one directory per line.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dirlist: %w", err)
	}
	defer f.Close()

	entries, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("read dirlist %s: %w", path, err)
	}
	return entries, nil
}

// Parse reads entries from r. Blank lines and lines starting with '#' are
// skipped. Order is preserved.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, Entry{Path: line})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
