// Package archive packages run directories into tar files and provides the
// bounded worker pool that drives batch archiving.
package archive

import (
	"path/filepath"

	"github.com/seqarchive/podarc/internal/pathutil"
)

// Suffix is the fixed archive filename suffix. It is a multi-part suffix and
// must be stripped as a unit, not with filepath.Ext.
const Suffix = ".pod5.tar"

// TargetPath derives the archive path for dir under destRoot:
// destRoot/<base>.pod5.tar, where <base> is dir's final path segment with
// trailing separators stripped.
func TargetPath(destRoot, dir string) string {
	return filepath.Join(destRoot, pathutil.BaseName(dir)+Suffix)
}

// StripName returns the archive file name with the Suffix removed. Names
// without the suffix come back unchanged, which makes the paths-match check
// fail loudly instead of accidentally passing.
func StripName(archivePath string) string {
	return pathutil.StripSuffix(filepath.Base(archivePath), Suffix)
}
