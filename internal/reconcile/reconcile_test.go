package reconcile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqarchive/podarc/internal/archive"
	"github.com/seqarchive/podarc/internal/dirlist"
	"github.com/seqarchive/podarc/internal/ui"
)

func makeRunDir(t *testing.T, parent, name string) string {
	t.Helper()
	dir := filepath.Join(parent, name)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pod5"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.txt"), []byte("report"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pod5", "reads_0.pod5"), make([]byte, 2048), 0644))
	return dir
}

func archived(t *testing.T, tmp, name string) (dir, dest string) {
	t.Helper()
	dir = makeRunDir(t, filepath.Join(tmp, "runs"), name)
	dest = filepath.Join(tmp, "archives")
	require.NoError(t, os.MkdirAll(dest, 0755))
	_, err := archive.Create(dir, archive.TargetPath(dest, dir), nil)
	require.NoError(t, err)
	return dir, dest
}

func testConfig(dest string, answers ...string) (Config, *bytes.Buffer) {
	var buf bytes.Buffer
	return Config{
		DestRoot:  dest,
		Confirmer: &ScriptConfirmer{Answers: answers},
		Status:    ui.NewPlainStatus(&buf),
	}, &buf
}

func TestRunDeletesOnExactYes(t *testing.T) {
	tmp := t.TempDir()
	dir, dest := archived(t, tmp, "run01")

	cfg, _ := testConfig(dest, "yes")
	outcomes := Run(cfg, []dirlist.Entry{{Path: dir}})

	require.Len(t, outcomes, 1)
	assert.Equal(t, Deleted, outcomes[0].State)
	assert.NoDirExists(t, dir)
}

func TestRunNonExactAnswersSkip(t *testing.T) {
	for _, answer := range []string{"y", "Yes", "", "no", "YES"} {
		t.Run("answer_"+answer, func(t *testing.T) {
			tmp := t.TempDir()
			dir, dest := archived(t, tmp, "run01")

			cfg, _ := testConfig(dest, answer)
			outcomes := Run(cfg, []dirlist.Entry{{Path: dir}})

			require.Len(t, outcomes, 1)
			assert.Equal(t, Skipped, outcomes[0].State)
			assert.DirExists(t, dir, "answer %q must not delete", answer)
		})
	}
}

func TestRunDryRun(t *testing.T) {
	tmp := t.TempDir()
	dir, dest := archived(t, tmp, "run01")

	cfg, buf := testConfig(dest, "yes")
	cfg.DryRun = true
	outcomes := Run(cfg, []dirlist.Entry{{Path: dir}})

	require.Len(t, outcomes, 1)
	assert.Equal(t, DryRunSkipped, outcomes[0].State)
	assert.DirExists(t, dir)
	assert.Contains(t, buf.String(), "would delete")
}

func TestRunMissingDirSkipsAndContinues(t *testing.T) {
	tmp := t.TempDir()
	dir, dest := archived(t, tmp, "run01")
	missing := filepath.Join(tmp, "runs", "gone")

	cfg, buf := testConfig(dest, "yes")
	outcomes := Run(cfg, []dirlist.Entry{{Path: missing}, {Path: dir}})

	require.Len(t, outcomes, 2)
	assert.Equal(t, Skipped, outcomes[0].State)
	assert.Equal(t, Deleted, outcomes[1].State)
	assert.Contains(t, buf.String(), "does not exist")
}

func TestRunMissingArchiveStillPrompts(t *testing.T) {
	tmp := t.TempDir()
	dir := makeRunDir(t, filepath.Join(tmp, "runs"), "run01")
	dest := filepath.Join(tmp, "archives")
	require.NoError(t, os.MkdirAll(dest, 0755))

	cfg, buf := testConfig(dest, "no")
	outcomes := Run(cfg, []dirlist.Entry{{Path: dir}})

	require.Len(t, outcomes, 1)
	assert.Equal(t, Skipped, outcomes[0].State)
	assert.True(t, outcomes[0].Result.ArchiveMissing)
	assert.Contains(t, buf.String(), "missing")
	assert.DirExists(t, dir)
}

func TestRunFlatMode(t *testing.T) {
	tmp := t.TempDir()
	dir := makeRunDir(t, filepath.Join(tmp, "runs"), "run01")
	dest := filepath.Join(tmp, "flat")
	require.NoError(t, os.MkdirAll(dest, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "report.txt"), []byte("report"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "reads_0.pod5"), make([]byte, 2048), 0644))

	cfg, buf := testConfig(dest, "yes")
	cfg.Flat = true
	outcomes := Run(cfg, []dirlist.Entry{{Path: dir}})

	require.Len(t, outcomes, 1)
	assert.Equal(t, Deleted, outcomes[0].State)
	assert.Contains(t, buf.String(), "OK")
}

func TestRunVerificationShownBeforePrompt(t *testing.T) {
	tmp := t.TempDir()
	dir, dest := archived(t, tmp, "run01")

	cfg, buf := testConfig(dest, "no")
	Run(cfg, []dirlist.Entry{{Path: dir}})

	out := buf.String()
	assert.Contains(t, out, "size match: yes")
	assert.Contains(t, out, "paths match: yes")
}

func TestScriptConfirmer(t *testing.T) {
	c := &ScriptConfirmer{Answers: []string{"yes", "no"}}

	ok, err := c.Confirm("?")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Confirm("?")
	require.NoError(t, err)
	assert.False(t, ok)

	// Exhausted answers decline.
	ok, err = c.Confirm("?")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReadAnswers(t *testing.T) {
	answers, err := ReadAnswers(strings.NewReader("yes\nno\n\nyes"))
	require.NoError(t, err)
	assert.Equal(t, []string{"yes", "no", "", "yes"}, answers)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Pending", Pending.String())
	assert.Equal(t, "DryRunSkipped", DryRunSkipped.String())
}
