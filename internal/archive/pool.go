package archive

import (
	"context"
	"log/slog"
	"sync"

	"github.com/seqarchive/podarc/internal/dirlist"
	"github.com/seqarchive/podarc/internal/pathutil"
	"github.com/seqarchive/podarc/internal/probe"
	"github.com/seqarchive/podarc/internal/stats"
)

// DefaultWorkers bounds simultaneous archive jobs. The limit exists to cap
// I/O contention on shared storage, not CPU.
const DefaultWorkers = 5

// PoolConfig controls the worker pool.
type PoolConfig struct {
	DestRoot string
	Workers  int
	DryRun   bool
	Exclude  *ExcludeSet
	Stats    *stats.Collector
}

// JobResult is the outcome of one directory's archive job. Exactly one of
// Skipped or Err is meaningful when the job did not produce an archive.
type JobResult struct {
	Dir     string
	Archive string
	Files   int64
	Bytes   int64
	Skipped bool // directory missing, warned and passed over
	DryRun  bool
	Err     error
}

// Pool archives directories with bounded concurrency. Each directory is an
// independent unit of work: one failure is reported and siblings continue.
type Pool struct {
	cfg PoolConfig
}

// NewPool creates a pool, applying defaults for unset fields.
func NewPool(cfg PoolConfig) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}
	return &Pool{cfg: cfg}
}

// Run archives every listed directory and blocks until all jobs finish or
// ctx is cancelled. Results are returned in input order.
func (p *Pool) Run(ctx context.Context, entries []dirlist.Entry) []JobResult {
	results := make([]JobResult, len(entries))

	jobs := make(chan int, p.cfg.Workers)
	var wg sync.WaitGroup
	for w := 0; w < p.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				results[i] = p.processDir(entries[i])
			}
		}()
	}

	for i := range entries {
		select {
		case <-ctx.Done():
		case jobs <- i:
			continue
		}
		break
	}
	close(jobs)
	wg.Wait()

	return results
}

func (p *Pool) processDir(entry dirlist.Entry) JobResult {
	res := JobResult{Dir: entry.Path}
	p.cfg.Stats.AddDirsListed(1)

	if !probe.IsDir(entry.Path) {
		slog.Warn("directory does not exist, skipping", "dir", entry.Path)
		p.cfg.Stats.AddDirsMissing(1)
		res.Skipped = true
		return res
	}

	res.Archive = TargetPath(p.cfg.DestRoot, entry.Path)

	if p.cfg.DryRun {
		slog.Info("dry run: would archive",
			"dir", entry.Path,
			"archive", res.Archive,
			"base", pathutil.BaseName(entry.Path),
		)
		res.DryRun = true
		return res
	}

	created, err := Create(entry.Path, res.Archive, p.cfg.Exclude)
	if err != nil {
		slog.Error("archive failed", "dir", entry.Path, "error", err)
		p.cfg.Stats.AddArchiveFailed(1)
		res.Err = err
		return res
	}

	res.Files = created.Files
	res.Bytes = created.Bytes
	p.cfg.Stats.AddArchived(1)
	p.cfg.Stats.AddFilesArchived(created.Files)
	p.cfg.Stats.AddBytesArchived(created.Bytes)
	slog.Info("archived", "dir", entry.Path, "archive", res.Archive, "files", created.Files)
	return res
}

// Failed counts results that ended in error.
func Failed(results []JobResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
