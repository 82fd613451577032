// Package stats tracks batch counters shared between the worker pool and the
// reconcile loop.
package stats

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Collector tracks batch statistics using lock-free atomic counters.
type Collector struct {
	dirsListed    atomic.Int64
	dirsMissing   atomic.Int64
	archived      atomic.Int64
	archiveFailed atomic.Int64
	bytesArchived atomic.Int64
	filesArchived atomic.Int64
	verified      atomic.Int64
	verifyFailed  atomic.Int64
	deleted       atomic.Int64
	skipped       atomic.Int64
	startTime     time.Time
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

func (c *Collector) AddDirsListed(n int64)    { c.dirsListed.Add(n) }
func (c *Collector) AddDirsMissing(n int64)   { c.dirsMissing.Add(n) }
func (c *Collector) AddArchived(n int64)      { c.archived.Add(n) }
func (c *Collector) AddArchiveFailed(n int64) { c.archiveFailed.Add(n) }
func (c *Collector) AddBytesArchived(n int64) { c.bytesArchived.Add(n) }
func (c *Collector) AddFilesArchived(n int64) { c.filesArchived.Add(n) }
func (c *Collector) AddVerified(n int64)      { c.verified.Add(n) }
func (c *Collector) AddVerifyFailed(n int64)  { c.verifyFailed.Add(n) }
func (c *Collector) AddDeleted(n int64)       { c.deleted.Add(n) }
func (c *Collector) AddSkipped(n int64)       { c.skipped.Add(n) }

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	DirsListed    int64
	DirsMissing   int64
	Archived      int64
	ArchiveFailed int64
	BytesArchived int64
	FilesArchived int64
	Verified      int64
	VerifyFailed  int64
	Deleted       int64
	Skipped       int64
	Elapsed       time.Duration
}

// Snapshot returns a consistent point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		DirsListed:    c.dirsListed.Load(),
		DirsMissing:   c.dirsMissing.Load(),
		Archived:      c.archived.Load(),
		ArchiveFailed: c.archiveFailed.Load(),
		BytesArchived: c.bytesArchived.Load(),
		FilesArchived: c.filesArchived.Load(),
		Verified:      c.verified.Load(),
		VerifyFailed:  c.verifyFailed.Load(),
		Deleted:       c.deleted.Load(),
		Skipped:       c.skipped.Load(),
		Elapsed:       time.Since(c.startTime),
	}
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"listed=%d missing=%d archived=%d failed=%d bytes=%d verified=%d deleted=%d skipped=%d",
		s.DirsListed, s.DirsMissing, s.Archived, s.ArchiveFailed,
		s.BytesArchived, s.Verified, s.Deleted, s.Skipped,
	)
}
