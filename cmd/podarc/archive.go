package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/seqarchive/podarc/internal/archive"
	"github.com/seqarchive/podarc/internal/dirlist"
	"github.com/seqarchive/podarc/internal/planner"
	"github.com/seqarchive/podarc/internal/stats"
	"github.com/seqarchive/podarc/internal/ui"
)

// excludeFlag is a custom pflag.Value that appends repeated --exclude
// patterns into a shared ExcludeSet.
type excludeFlag struct {
	set *archive.ExcludeSet
}

var _ pflag.Value = (*excludeFlag)(nil)

func (*excludeFlag) String() string { return "" }
func (*excludeFlag) Type() string   { return "pattern" }

func (f *excludeFlag) Set(val string) error {
	return f.set.Add(val)
}

func newArchiveCmd() *cobra.Command {
	var (
		dest       string
		dirlistArg string
		workers    int
		reserveStr string
		dryRun     bool
	)
	excludes := &archive.ExcludeSet{}

	cmd := &cobra.Command{
		Use:   "archive --dest DIR --dirlist FILE",
		Short: "Pack each listed directory into a .pod5.tar archive at the destination",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if !cmd.Flags().Changed("dest") && cfg.Defaults.Dest != nil {
				dest = *cfg.Defaults.Dest
			}
			if !cmd.Flags().Changed("workers") && cfg.Defaults.Workers != nil {
				workers = *cfg.Defaults.Workers
			}
			if !cmd.Flags().Changed("reserve") && cfg.Defaults.Reserve != nil {
				reserveStr = *cfg.Defaults.Reserve
			}
			if dest == "" {
				return errors.New("--dest is required")
			}

			var reserve int64
			if reserveStr != "" {
				var err error
				reserve, err = planner.ParseSize(reserveStr)
				if err != nil {
					return fmt.Errorf("invalid --reserve: %w", err)
				}
			}

			entries, err := dirlist.ReadFile(dirlistArg)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				slog.Warn("directory list is empty, nothing to do")
				return nil
			}

			if dryRun {
				slog.Info("dry run mode")
			}

			budget, err := planner.Plan(entries, dest, reserve)
			if err != nil {
				var capErr *planner.CapacityError
				if errors.As(err, &capErr) {
					fmt.Fprintln(os.Stderr, capErr.Error())
					return &exitError{code: 1}
				}
				return err
			}
			slog.Info("capacity check passed",
				"required", ui.FormatBytes(budget.Required),
				"available", ui.FormatBytes(budget.Available),
				"dirs", budget.Counted,
			)

			if err := planner.EnsureDest(dest, dryRun); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			collector := stats.NewCollector()
			pool := archive.NewPool(archive.PoolConfig{
				DestRoot: dest,
				Workers:  workers,
				DryRun:   dryRun,
				Exclude:  excludes,
				Stats:    collector,
			})
			results := pool.Run(ctx, entries)

			snap := collector.Snapshot()
			fmt.Fprintf(os.Stderr, "archived %d of %d directories (%s) in %s\n",
				snap.Archived, snap.DirsListed,
				ui.FormatBytes(snap.BytesArchived),
				snap.Elapsed.Round(time.Second),
			)

			if failed := archive.Failed(results); failed > 0 {
				slog.Error("some archive jobs failed", "failed", failed)
				return &exitError{code: 1}
			}
			if err := ctx.Err(); err != nil {
				return &exitError{code: 1}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dest, "dest", "", "archive destination root")
	cmd.Flags().StringVar(&dirlistArg, "dirlist", "", "file listing directories to archive, one per line")
	cmd.Flags().IntVar(&workers, "workers", 0, fmt.Sprintf("simultaneous archive jobs (default %d)", archive.DefaultWorkers))
	cmd.Flags().StringVar(&reserveStr, "reserve", "", "extra free space to keep on the destination (e.g. 50G)")
	cmd.Flags().BoolVar(&dryRun, "dryrun", false, "describe actions without creating any files")
	cmd.Flags().Var(&excludeFlag{set: excludes}, "exclude", "exclude paths matching PATTERN from archives (repeatable)")
	_ = cmd.MarkFlagRequired("dirlist")

	return cmd
}
