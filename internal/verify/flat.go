package verify

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStatus classifies one source file against its flat-destination
// counterpart.
type FileStatus int

const (
	StatusOK      FileStatus = iota // present, byte sizes equal
	StatusDiff                      // present, size differs
	StatusMissing                   // absent at destination
)

func (s FileStatus) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusDiff:
		return "DIFF"
	case StatusMissing:
		return "MISSING"
	default:
		return "UNKNOWN"
	}
}

// FileDiff is one row of a file-granular comparison.
type FileDiff struct {
	RelPath  string // path relative to the source directory
	Status   FileStatus
	SrcBytes int64
	DstBytes int64
}

// Flat compares every regular file under dir against a same-named file
// directly under dest. The destination layout is assumed flattened, so
// lookups use the file's base name and never recurse into destination
// subdirectories. The aggregate destination size sums only the counterpart
// files that were found, which keeps the comparison meaningful when several
// runs share one flat destination.
func Flat(dir, dest string, tolMB int64) (Result, []FileDiff, error) {
	res := Result{Dir: dir, Archive: dest}

	var diffs []FileDiff
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		res.DirBytes += info.Size()
		res.DirFiles++

		fd := FileDiff{RelPath: rel, SrcBytes: info.Size()}
		dstInfo, statErr := os.Stat(filepath.Join(dest, filepath.Base(path)))
		switch {
		case statErr != nil:
			fd.Status = StatusMissing
		case dstInfo.Size() != info.Size():
			fd.Status = StatusDiff
			fd.DstBytes = dstInfo.Size()
		default:
			fd.Status = StatusOK
			fd.DstBytes = dstInfo.Size()
		}
		if fd.Status == StatusOK || fd.Status == StatusDiff {
			res.ArchiveBytes += fd.DstBytes
			res.ArchiveEntries++
		}

		diffs = append(diffs, fd)
		return nil
	})
	if err != nil {
		return res, nil, fmt.Errorf("compare %s: %w", dir, err)
	}

	res.SizeMatch = SizesWithin(res.DirBytes, res.ArchiveBytes, tolMB)
	// Flat destinations have no top-level entry to check; paths match when
	// every source file was found.
	res.PathsMatch = res.ArchiveEntries == res.DirFiles
	return res, diffs, nil
}
