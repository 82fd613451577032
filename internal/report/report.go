// Package report emits the batch verification CSV used for offline audits.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/seqarchive/podarc/internal/archive"
	"github.com/seqarchive/podarc/internal/ui"
	"github.com/seqarchive/podarc/internal/verify"
)

// Columns is the fixed CSV schema, in order.
var Columns = []string{
	"tarred_path",
	"tarred_size_mb",
	"tar_path",
	"tar_size_mb",
	"first_entry_in_tar",
	"size_match",
	"paths_match",
}

// Config controls report generation.
type Config struct {
	ParentRoot  string // root whose children contain candidate run directories
	DestRoot    string // where the .pod5.tar archives live
	OutPath     string // CSV destination, overwritten each run
	ToleranceMB int64
	Workers     int // concurrent measurements; sizes only, no mutation
}

// Row is one directory/archive pair.
type Row struct {
	Result verify.Result
}

// Generate discovers pairs, verifies them concurrently, and rewrites the
// CSV at cfg.OutPath. Returns the number of rows written.
func Generate(ctx context.Context, cfg Config) (int, error) {
	if cfg.ToleranceMB <= 0 {
		cfg.ToleranceMB = verify.DefaultToleranceMB
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}

	dirs, err := discover(cfg.ParentRoot)
	if err != nil {
		return 0, err
	}

	rows := make([]Row, len(dirs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i, dir := range dirs {
		i, dir := i, dir
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			target := archive.TargetPath(cfg.DestRoot, dir)
			res, err := verify.Archive(dir, target, cfg.ToleranceMB)
			if err != nil {
				return fmt.Errorf("verify %s: %w", dir, err)
			}
			if res.ArchiveMissing {
				slog.Warn("expected archive is missing", "dir", dir, "archive", target)
			}
			rows[i] = Row{Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	if err := write(cfg.OutPath, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// discover returns every immediate subdirectory of every immediate child of
// root, sorted by ReadDir's name ordering.
func discover(root string) ([]string, error) {
	children, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read parent root: %w", err)
	}

	var dirs []string
	for _, child := range children {
		if !child.IsDir() {
			continue
		}
		childPath := filepath.Join(root, child.Name())
		subs, err := os.ReadDir(childPath)
		if err != nil {
			slog.Warn("cannot list candidate group", "dir", childPath, "error", err)
			continue
		}
		for _, sub := range subs {
			if sub.IsDir() {
				dirs = append(dirs, filepath.Join(childPath, sub.Name()))
			}
		}
	}
	return dirs, nil
}

// write rewrites the CSV from scratch — the report is regenerated fully on
// every run, never appended to.
func write(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		f.Close()
		return err
	}
	for _, row := range rows {
		if err := w.Write(record(row.Result)); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func record(res verify.Result) []string {
	tarSize := ""
	firstEntry := ""
	if !res.ArchiveMissing {
		tarSize = strconv.FormatInt(ui.MBCeil(res.ArchiveBytes), 10)
		firstEntry = res.FirstEntry
	}
	return []string{
		res.Dir,
		strconv.FormatInt(ui.MBCeil(res.DirBytes), 10),
		res.Archive,
		tarSize,
		firstEntry,
		ui.YesNo(res.SizeMatch),
		ui.YesNo(res.PathsMatch),
	}
}
