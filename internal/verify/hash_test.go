package verify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqarchive/podarc/internal/archive"
)

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(path, []byte("sequencing data"), 0644))

	h1, err := HashFile(path)
	require.NoError(t, err)
	h2, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64) // 256-bit hex digest

	require.NoError(t, os.WriteFile(path, []byte("different"), 0644))
	h3, err := HashFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestChecksumArchiveClean(t *testing.T) {
	tmp := t.TempDir()
	dir := makeRunDir(t, tmp, "run01")
	target := filepath.Join(tmp, "run01.pod5.tar")
	_, err := archive.Create(dir, target, nil)
	require.NoError(t, err)

	checked, mismatches, err := ChecksumArchive(dir, target)
	require.NoError(t, err)
	assert.Equal(t, int64(2), checked)
	assert.Empty(t, mismatches)
}

func TestChecksumArchiveDetectsSourceChange(t *testing.T) {
	tmp := t.TempDir()
	dir := makeRunDir(t, tmp, "run01")
	target := filepath.Join(tmp, "run01.pod5.tar")
	_, err := archive.Create(dir, target, nil)
	require.NoError(t, err)

	// Source changed after archiving: same size, different content.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.txt"), []byte("troper"), 0644))

	_, mismatches, err := ChecksumArchive(dir, target)
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.Equal(t, "run01/report.txt", mismatches[0].Member)
}

func TestChecksumFlat(t *testing.T) {
	tmp := t.TempDir()
	dir := makeRunDir(t, tmp, "run01")
	dest := filepath.Join(tmp, "flat")
	require.NoError(t, os.MkdirAll(dest, 0755))
	// Same size, different bytes — passes the size check, fails the hash.
	require.NoError(t, os.WriteFile(filepath.Join(dest, "report.txt"), []byte("troper"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "reads_0.pod5"), make([]byte, 4096), 0644))

	_, diffs, err := Flat(dir, dest, DefaultToleranceMB)
	require.NoError(t, err)

	mismatches, err := ChecksumFlat(dir, dest, diffs)
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.Equal(t, "report.txt", mismatches[0].Member)
}
