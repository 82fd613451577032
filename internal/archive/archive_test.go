package archive

import (
	"archive/tar"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqarchive/podarc/internal/dirlist"
)

func TestTargetPath(t *testing.T) {
	assert.Equal(t, "/dest/run42.pod5.tar", TargetPath("/dest", "/data/runs/run42"))
	assert.Equal(t, "/dest/run42.pod5.tar", TargetPath("/dest", "/data/runs/run42/"))
}

func TestStripName(t *testing.T) {
	assert.Equal(t, "run42", StripName("/dest/run42.pod5.tar"))
	assert.Equal(t, "run42.tar", StripName("/dest/run42.tar"))
}

// makeRunDir builds a small source tree resembling a sequencing run.
func makeRunDir(t *testing.T, parent, name string) string {
	t.Helper()
	dir := filepath.Join(parent, name)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pod5"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.txt"), []byte("report"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pod5", "reads_0.pod5"), make([]byte, 2048), 0644))
	return dir
}

// tarEntries lists header names in order.
func tarEntries(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var names []string
	tr := tar.NewReader(f)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, hdr.Name)
	}
	return names
}

func TestCreate(t *testing.T) {
	tmp := t.TempDir()
	dir := makeRunDir(t, tmp, "run01")
	target := filepath.Join(tmp, "run01.pod5.tar")

	result, err := Create(dir, target, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Files)
	assert.Equal(t, int64(2048+6), result.Bytes)

	names := tarEntries(t, target)
	require.NotEmpty(t, names)
	assert.Equal(t, "run01/", names[0])
	assert.Contains(t, names, "run01/pod5/reads_0.pod5")
	assert.Contains(t, names, "run01/report.txt")
	for _, n := range names {
		assert.False(t, filepath.IsAbs(n), "internal path must be relative: %s", n)
	}
}

func TestCreateExclude(t *testing.T) {
	tmp := t.TempDir()
	dir := makeRunDir(t, tmp, "run01")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scratch.tmp"), []byte("x"), 0644))
	target := filepath.Join(tmp, "run01.pod5.tar")

	excl, err := NewExcludeSet([]string{"*.tmp"})
	require.NoError(t, err)

	result, err := Create(dir, target, excl)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Files)
	assert.NotContains(t, tarEntries(t, target), "run01/scratch.tmp")
}

func TestCreateFailureLeavesNoPartialArchive(t *testing.T) {
	tmp := t.TempDir()
	dir := makeRunDir(t, tmp, "run01")

	// Target collides with an existing directory, so the final rename fails.
	target := filepath.Join(tmp, "run01.pod5.tar")
	require.NoError(t, os.MkdirAll(target, 0755))

	_, err := Create(dir, target, nil)
	require.Error(t, err)

	// No temp leftovers next to the target.
	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), "podarc-tmp")
	}
}

func TestExcludeSet(t *testing.T) {
	excl, err := NewExcludeSet([]string{"*.tmp", "fail/", "fastq_pass/skip*"})
	require.NoError(t, err)

	assert.True(t, excl.Match("a.tmp", false))
	assert.True(t, excl.Match("deep/nested/b.tmp", false))
	assert.True(t, excl.Match("fail", true))
	assert.False(t, excl.Match("fail", false)) // dir-only pattern
	assert.True(t, excl.Match("fastq_pass/skip_0.fastq", false))
	assert.False(t, excl.Match("other/skip_0.fastq", false))
	assert.False(t, excl.Match("reads.pod5", false))

	var nilSet *ExcludeSet
	assert.False(t, nilSet.Match("anything", false))
	assert.True(t, nilSet.Empty())
}

func TestPoolRun(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "runs")
	dest := filepath.Join(tmp, "archives")
	require.NoError(t, os.MkdirAll(dest, 0755))

	d1 := makeRunDir(t, src, "run01")
	d2 := makeRunDir(t, src, "run02")
	missing := filepath.Join(src, "run03")

	pool := NewPool(PoolConfig{DestRoot: dest, Workers: 2})
	results := pool.Run(context.Background(), []dirlist.Entry{
		{Path: d1}, {Path: missing}, {Path: d2},
	})

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.True(t, results[1].Skipped)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, 0, Failed(results))

	assert.FileExists(t, filepath.Join(dest, "run01.pod5.tar"))
	assert.FileExists(t, filepath.Join(dest, "run02.pod5.tar"))
	assert.NoFileExists(t, filepath.Join(dest, "run03.pod5.tar"))
}

func TestPoolIsolatedFailure(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "runs")
	dest := filepath.Join(tmp, "archives")
	require.NoError(t, os.MkdirAll(dest, 0755))

	good := makeRunDir(t, src, "run01")
	bad := makeRunDir(t, src, "run02")
	// Sabotage run02's target so its rename fails.
	require.NoError(t, os.MkdirAll(filepath.Join(dest, "run02.pod5.tar"), 0755))

	pool := NewPool(PoolConfig{DestRoot: dest, Workers: 2})
	results := pool.Run(context.Background(), []dirlist.Entry{{Path: good}, {Path: bad}})

	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.Equal(t, 1, Failed(results))
	assert.FileExists(t, filepath.Join(dest, "run01.pod5.tar"))
}

func TestPoolDryRun(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "runs")
	dest := filepath.Join(tmp, "archives")
	require.NoError(t, os.MkdirAll(dest, 0755))

	dir := makeRunDir(t, src, "run01")

	pool := NewPool(PoolConfig{DestRoot: dest, DryRun: true})
	results := pool.Run(context.Background(), []dirlist.Entry{{Path: dir}})

	require.Len(t, results, 1)
	assert.True(t, results[0].DryRun)
	assert.NoError(t, results[0].Err)

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	assert.Empty(t, entries, "dry run must not create files")
}
