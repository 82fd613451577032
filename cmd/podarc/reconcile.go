package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/seqarchive/podarc/internal/dirlist"
	"github.com/seqarchive/podarc/internal/reconcile"
	"github.com/seqarchive/podarc/internal/stats"
	"github.com/seqarchive/podarc/internal/ui"
)

func newReconcileCmd() *cobra.Command {
	var (
		dest        string
		dirlistArg  string
		flat        bool
		toleranceMB int64
		checksum    bool
		dryRun      bool
		yesFrom     string
	)

	cmd := &cobra.Command{
		Use:   "reconcile --dest DIR --dirlist FILE",
		Short: "Verify each directory against its archive and delete it on confirmation",
		Long: `Reconcile verifies each listed directory against its archive (or against a
flat transfer destination with --flat), shows the comparison, and asks for
per-directory confirmation before deleting the source. Only the exact answer
"yes" deletes; anything else keeps the directory. The prompt reads from the
controlling terminal, so the directory list may be piped on stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if !cmd.Flags().Changed("dest") && cfg.Defaults.Dest != nil {
				dest = *cfg.Defaults.Dest
			}
			if !cmd.Flags().Changed("tolerance-mb") && cfg.Defaults.ToleranceMB != nil {
				toleranceMB = *cfg.Defaults.ToleranceMB
			}
			if dest == "" {
				return errors.New("--dest is required")
			}

			entries, err := dirlist.ReadFile(dirlistArg)
			if err != nil {
				return err
			}

			var confirmer reconcile.Confirmer
			if yesFrom != "" {
				f, err := os.Open(yesFrom)
				if err != nil {
					return fmt.Errorf("open answers file: %w", err)
				}
				answers, err := reconcile.ReadAnswers(f)
				f.Close()
				if err != nil {
					return fmt.Errorf("read answers file: %w", err)
				}
				confirmer = &reconcile.ScriptConfirmer{Answers: answers}
			} else {
				tty, err := reconcile.NewTTYConfirmer()
				if err != nil {
					return fmt.Errorf("reconcile needs a terminal for confirmation (or --yes-from): %w", err)
				}
				defer tty.Close()
				confirmer = tty
			}

			if dryRun {
				slog.Info("dry run mode")
			}

			collector := stats.NewCollector()
			outcomes := reconcile.Run(reconcile.Config{
				DestRoot:    dest,
				Flat:        flat,
				ToleranceMB: toleranceMB,
				Checksum:    checksum,
				DryRun:      dryRun,
				Confirmer:   confirmer,
				Status:      ui.NewStatus(os.Stdout),
				Stats:       collector,
			}, entries)

			snap := collector.Snapshot()
			fmt.Fprintf(os.Stderr, "reconciled %d directories: %d deleted, %d kept, %d missing\n",
				snap.DirsListed, snap.Deleted, snap.Skipped, snap.DirsMissing)

			for _, out := range outcomes {
				slog.Debug("outcome", "dir", out.Dir, "state", out.State.String())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dest, "dest", "", "archive or transfer destination root")
	cmd.Flags().StringVar(&dirlistArg, "dirlist", "", "file listing directories to reconcile, one per line")
	cmd.Flags().BoolVar(&flat, "flat", false, "compare file-by-file against a flattened destination instead of a tar")
	cmd.Flags().Int64Var(&toleranceMB, "tolerance-mb", 0, "absolute size-match allowance in MB (default 10)")
	cmd.Flags().BoolVar(&checksum, "checksum", false, "also verify member contents with BLAKE3")
	cmd.Flags().BoolVar(&dryRun, "dryrun", false, "describe deletions without performing them")
	cmd.Flags().StringVar(&yesFrom, "yes-from", "", "read scripted confirmation answers from FILE")
	_ = cmd.MarkFlagRequired("dirlist")

	return cmd
}
