// Package reconcile drives the human-in-the-loop verify/confirm/delete loop.
// Deletion is irreversible, so the loop is deliberately sequential: one
// directory is verified, shown, confirmed and resolved before the next
// starts.
package reconcile

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/seqarchive/podarc/internal/archive"
	"github.com/seqarchive/podarc/internal/dirlist"
	"github.com/seqarchive/podarc/internal/probe"
	"github.com/seqarchive/podarc/internal/stats"
	"github.com/seqarchive/podarc/internal/ui"
	"github.com/seqarchive/podarc/internal/verify"
)

// State tracks a directory through the loop.
type State int

const (
	Pending       State = iota
	Verified            // verification computed and displayed
	Confirmed           // operator typed exactly "yes"
	Deleted             // source directory removed
	Skipped             // declined, missing, or verification failed
	DryRunSkipped       // confirmed, but dry-run suppressed the deletion
)

var stateNames = [...]string{
	Pending:       "Pending",
	Verified:      "Verified",
	Confirmed:     "Confirmed",
	Deleted:       "Deleted",
	Skipped:       "Skipped",
	DryRunSkipped: "DryRunSkipped",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

// Config controls a reconcile run.
type Config struct {
	DestRoot    string
	Flat        bool // file-granular comparison against a flat destination
	ToleranceMB int64
	Checksum    bool
	DryRun      bool
	Confirmer   Confirmer
	Status      *ui.Status
	Stats       *stats.Collector
}

// Outcome is the terminal record for one directory.
type Outcome struct {
	Dir    string
	State  State
	Result verify.Result
	Err    error
}

// Run processes every entry in order. One directory's skip or failure never
// halts the batch.
func Run(cfg Config, entries []dirlist.Entry) []Outcome {
	if cfg.ToleranceMB <= 0 {
		cfg.ToleranceMB = verify.DefaultToleranceMB
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}
	if cfg.Status == nil {
		cfg.Status = ui.NewPlainStatus(os.Stdout)
	}

	outcomes := make([]Outcome, 0, len(entries))
	for _, entry := range entries {
		outcomes = append(outcomes, processDir(cfg, entry))
	}
	return outcomes
}

func processDir(cfg Config, entry dirlist.Entry) Outcome {
	out := Outcome{Dir: entry.Path, State: Pending}
	cfg.Stats.AddDirsListed(1)

	if !probe.IsDir(entry.Path) {
		cfg.Status.Warn("%s does not exist, skipping", entry.Path)
		cfg.Stats.AddDirsMissing(1)
		out.State = Skipped
		return out
	}

	res, err := runVerify(cfg, entry)
	if err != nil {
		cfg.Status.Fail("%s: verification failed: %v", entry.Path, err)
		cfg.Stats.AddVerifyFailed(1)
		out.State = Skipped
		out.Err = err
		return out
	}
	out.Result = res
	out.State = Verified
	showResult(cfg.Status, res)

	if res.SizeMatch && res.PathsMatch {
		cfg.Stats.AddVerified(1)
	} else {
		cfg.Stats.AddVerifyFailed(1)
	}

	prompt := fmt.Sprintf("Delete %s? Type 'yes' to confirm: ", entry.Path)
	ok, err := cfg.Confirmer.Confirm(prompt)
	if err != nil || !ok {
		cfg.Status.Info("keeping %s", entry.Path)
		cfg.Stats.AddSkipped(1)
		out.State = Skipped
		out.Err = err
		return out
	}
	out.State = Confirmed

	if cfg.DryRun {
		cfg.Status.Info("dry run: would delete %s recursively", entry.Path)
		out.State = DryRunSkipped
		return out
	}

	if err := os.RemoveAll(entry.Path); err != nil {
		cfg.Status.Fail("delete %s: %v", entry.Path, err)
		out.State = Skipped
		out.Err = err
		return out
	}

	slog.Info("deleted", "dir", entry.Path)
	cfg.Status.OK("deleted %s", entry.Path)
	cfg.Stats.AddDeleted(1)
	out.State = Deleted
	return out
}

func runVerify(cfg Config, entry dirlist.Entry) (verify.Result, error) {
	if cfg.Flat {
		res, diffs, err := verify.Flat(entry.Path, cfg.DestRoot, cfg.ToleranceMB)
		if err != nil {
			return res, err
		}
		showDiffs(cfg.Status, diffs)
		if cfg.Checksum {
			mismatches, err := verify.ChecksumFlat(entry.Path, cfg.DestRoot, diffs)
			if err != nil {
				return res, err
			}
			if len(mismatches) > 0 {
				res.SizeMatch = false
				showMismatches(cfg.Status, mismatches)
			}
		}
		return res, nil
	}

	target := archive.TargetPath(cfg.DestRoot, entry.Path)
	res, err := verify.Archive(entry.Path, target, cfg.ToleranceMB)
	if err != nil {
		return res, err
	}
	if res.ArchiveMissing {
		cfg.Status.Warn("archive %s is missing", target)
		return res, nil
	}
	if cfg.Checksum {
		checked, mismatches, err := verify.ChecksumArchive(entry.Path, target)
		if err != nil {
			return res, err
		}
		cfg.Status.Info("checksummed %s members", ui.FormatCount(checked))
		if len(mismatches) > 0 {
			res.SizeMatch = false
			showMismatches(cfg.Status, mismatches)
		}
	}
	return res, nil
}

func showResult(st *ui.Status, res verify.Result) {
	st.Printf("%s\n", res.Dir)
	st.Printf("  source:  %s (%d MB), %s files\n",
		ui.FormatBytes(res.DirBytes), ui.MBCeil(res.DirBytes), ui.FormatCount(res.DirFiles))
	if res.ArchiveMissing {
		st.Printf("  archive: %s (missing)\n", res.Archive)
	} else {
		st.Printf("  archive: %s (%d MB), %s entries\n",
			res.Archive, ui.MBCeil(res.ArchiveBytes), ui.FormatCount(res.ArchiveEntries))
	}
	st.Printf("  size match: %s, paths match: %s\n",
		ui.YesNo(res.SizeMatch), ui.YesNo(res.PathsMatch))
}

func showDiffs(st *ui.Status, diffs []verify.FileDiff) {
	for _, d := range diffs {
		switch d.Status {
		case verify.StatusOK:
			st.OK("%-8s %s", d.Status, d.RelPath)
		case verify.StatusDiff:
			st.Fail("%-8s %s (%d != %d bytes)", d.Status, d.RelPath, d.SrcBytes, d.DstBytes)
		case verify.StatusMissing:
			st.Warn("%-8s %s", d.Status, d.RelPath)
		}
	}
}

func showMismatches(st *ui.Status, mismatches []verify.ChecksumMismatch) {
	for _, m := range mismatches {
		st.Fail("checksum mismatch: %s", m.Member)
	}
}
