// Package verify implements read-only reconciliation of source directories
// against their archives or a flattened transfer destination. Nothing in
// this package mutates the filesystem.
package verify

import (
	"errors"
	"fmt"
	"os"

	"github.com/seqarchive/podarc/internal/archive"
	"github.com/seqarchive/podarc/internal/pathutil"
	"github.com/seqarchive/podarc/internal/probe"
	"github.com/seqarchive/podarc/internal/ui"
)

// DefaultToleranceMB is the absolute size-match allowance. Exact byte parity
// is unreasonable across filesystem and tar metadata overhead. The allowance
// is not scaled to archive size; a 2 TB flowcell gets the same band as a
// 20 MB one, which operators should keep in mind for very large runs.
const DefaultToleranceMB = 10

// Result is the per-directory verification record.
type Result struct {
	Dir     string
	Archive string

	DirBytes     int64
	ArchiveBytes int64

	DirFiles       int64 // regular files under Dir, recursive
	ArchiveEntries int64 // headers listed in the archive

	FirstEntry     string // first top-level entry, trailing separators stripped
	ArchiveMissing bool

	SizeMatch  bool
	PathsMatch bool
}

// SizesWithin reports whether two byte sizes agree within tolMB whole
// mebibytes. Sizes are compared after du-style ceiling conversion to MB,
// matching how the quantities are displayed to the operator.
func SizesWithin(a, b, tolMB int64) bool {
	diff := ui.MBCeil(a) - ui.MBCeil(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolMB
}

// Archive compares dir against its expected archive. A missing archive is
// not an error: the result records it and both match verdicts are false.
// Verification is idempotent; the same unchanged pair yields the same Result.
func Archive(dir, archivePath string, tolMB int64) (Result, error) {
	res := Result{Dir: dir, Archive: archivePath}

	dirBytes, err := probe.DirSize(dir)
	if err != nil {
		return res, err
	}
	res.DirBytes = dirBytes

	dirFiles, err := probe.CountFiles(dir)
	if err != nil {
		return res, err
	}
	res.DirFiles = dirFiles

	arcBytes, err := probe.FileSize(archivePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			res.ArchiveMissing = true
			return res, nil
		}
		return res, fmt.Errorf("archive %s: %w", archivePath, err)
	}
	res.ArchiveBytes = arcBytes

	info, err := Inspect(archivePath)
	if err != nil {
		return res, fmt.Errorf("inspect %s: %w", archivePath, err)
	}
	res.FirstEntry = info.FirstTopLevel
	res.ArchiveEntries = info.Entries

	base := pathutil.BaseName(dir)
	res.SizeMatch = SizesWithin(res.DirBytes, res.ArchiveBytes, tolMB)
	res.PathsMatch = res.FirstEntry == base && archive.StripName(archivePath) == base

	return res, nil
}
