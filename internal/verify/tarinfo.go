package verify

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// TarInfo describes an archive's listing.
type TarInfo struct {
	FirstTopLevel string // first path component of the first member, no trailing slash
	Entries       int64
}

// Inspect lists the archive once, recording the first top-level entry name
// and the total header count.
func Inspect(path string) (TarInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return TarInfo{}, err
	}
	defer f.Close()

	var info TarInfo
	tr := tar.NewReader(f)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return info, fmt.Errorf("read tar: %w", err)
		}
		if info.Entries == 0 {
			info.FirstTopLevel = topLevel(hdr.Name)
		}
		info.Entries++
	}

	if info.Entries == 0 {
		return info, errors.New("empty archive")
	}
	return info, nil
}

// topLevel returns the first path component of a tar member name with
// trailing separators stripped.
func topLevel(name string) string {
	name = strings.TrimPrefix(name, "./")
	name = strings.TrimRight(name, "/")
	if i := strings.IndexByte(name, '/'); i >= 0 {
		return name[:i]
	}
	return name
}
