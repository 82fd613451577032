// Package planner implements the capacity gate that runs before any archive
// work starts.
package planner

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/seqarchive/podarc/internal/dirlist"
	"github.com/seqarchive/podarc/internal/probe"
	"github.com/seqarchive/podarc/internal/ui"
)

// Prober abstracts the filesystem measurements the planner needs, so tests
// can feed scripted sizes and free-space figures.
type Prober interface {
	DirSize(path string) (int64, error)
	FreeSpace(path string) (int64, error)
	IsDir(path string) bool
}

// FSProber is the default Prober backed by real filesystem measurements.
type FSProber struct{}

func (FSProber) DirSize(path string) (int64, error)   { return probe.DirSize(path) }
func (FSProber) FreeSpace(path string) (int64, error) { return probe.FreeSpace(path) }
func (FSProber) IsDir(path string) bool               { return probe.IsDir(path) }

// Budget is the outcome of a capacity plan.
type Budget struct {
	Required  int64    // sum of existing entries' sizes
	Available int64    // destination free bytes at plan time
	Reserve   int64    // headroom kept free on top of Required
	Counted   int      // entries that exist and were measured
	Missing   []string // listed entries that do not exist
}

// CapacityError reports that the destination cannot hold the batch. It is
// fatal before any archive is created.
type CapacityError struct {
	Required  int64
	Available int64
	Reserve   int64
}

func (e *CapacityError) Error() string {
	msg := fmt.Sprintf(
		"insufficient space: need %d bytes (%s), destination has %d bytes (%s)",
		e.Required, ui.FormatBytes(e.Required),
		e.Available, ui.FormatBytes(e.Available),
	)
	if e.Reserve > 0 {
		msg += fmt.Sprintf(" with %s reserved", ui.FormatBytes(e.Reserve))
	}
	return msg + "; split the directory list and retry"
}

// Plan measures every listed directory and the destination's free space, and
// fails with a CapacityError when the batch would not fit. Missing
// directories contribute zero and are warned about, not treated as errors.
// The check is best-effort: nothing stops other writers from consuming the
// same filesystem after the plan is made.
func Plan(entries []dirlist.Entry, dest string, reserve int64) (Budget, error) {
	return PlanWith(FSProber{}, entries, dest, reserve)
}

// PlanWith is Plan with an explicit Prober.
func PlanWith(p Prober, entries []dirlist.Entry, dest string, reserve int64) (Budget, error) {
	if reserve < 0 {
		return Budget{}, fmt.Errorf("reserve must be non-negative, got %d", reserve)
	}

	b := Budget{Reserve: reserve}
	for _, e := range entries {
		if !p.IsDir(e.Path) {
			slog.Warn("listed directory does not exist, skipping", "dir", e.Path)
			b.Missing = append(b.Missing, e.Path)
			continue
		}
		size, err := p.DirSize(e.Path)
		if err != nil {
			return Budget{}, fmt.Errorf("size of %s: %w", e.Path, err)
		}
		if size < 0 {
			return Budget{}, fmt.Errorf("size of %s: invalid measurement %d", e.Path, size)
		}
		b.Required += size
		b.Counted++
	}

	free, err := p.FreeSpace(dest)
	if err != nil {
		return Budget{}, fmt.Errorf("destination %s: %w", dest, err)
	}
	if free < 0 {
		return Budget{}, fmt.Errorf("destination %s: invalid free-space measurement %d", dest, free)
	}
	b.Available = free

	if b.Available < b.Required+b.Reserve {
		return b, &CapacityError{Required: b.Required, Available: b.Available, Reserve: b.Reserve}
	}

	slog.Debug("capacity plan ok",
		"required", b.Required,
		"available", b.Available,
		"reserve", b.Reserve,
		"dirs", b.Counted,
		"missing", len(b.Missing),
	)
	return b, nil
}

// EnsureDest creates the destination directory if absent. In dry-run mode it
// only logs what would be created.
func EnsureDest(dest string, dryRun bool) error {
	if probe.IsDir(dest) {
		return nil
	}
	if dryRun {
		slog.Info("dry run: would create destination", "dest", dest)
		return nil
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	return nil
}
