package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seqarchive/podarc/internal/dirlist"
	"github.com/seqarchive/podarc/internal/probe"
	"github.com/seqarchive/podarc/internal/ui"
	"github.com/seqarchive/podarc/internal/verify"
)

func newCompareCmd() *cobra.Command {
	var (
		dest        string
		dirlistArg  string
		toleranceMB int64
		checksum    bool
	)

	cmd := &cobra.Command{
		Use:   "compare --dest DIR --dirlist FILE",
		Short: "Compare directories file-by-file against a flat destination, read-only",
		Args:  cobra.NoArgs,
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
			if toleranceMB <= 0 {
				toleranceMB = verify.DefaultToleranceMB
			}

			entries, err := dirlist.ReadFile(dirlistArg)
			if err != nil {
				return err
			}

			st := ui.NewStatus(os.Stdout)
			mismatched := 0
			for _, entry := range entries {
				if !probe.IsDir(entry.Path) {
					st.Warn("%s does not exist, skipping", entry.Path)
					continue
				}
				res, diffs, err := verify.Flat(entry.Path, dest, toleranceMB)
				if err != nil {
					st.Fail("%s: %v", entry.Path, err)
					mismatched++
					continue
				}
				st.Printf("%s: %s source vs %s found at destination\n",
					entry.Path, ui.FormatBytes(res.DirBytes), ui.FormatBytes(res.ArchiveBytes))
				for _, d := range diffs {
					if d.Status == verify.StatusOK {
						continue
					}
					st.Warn("%-8s %s", d.Status, d.RelPath)
				}
				if checksum {
					mismatches, err := verify.ChecksumFlat(entry.Path, dest, diffs)
					if err != nil {
						return err
					}
					for _, m := range mismatches {
						st.Fail("checksum mismatch: %s", m.Member)
					}
					if len(mismatches) > 0 {
						res.SizeMatch = false
					}
				}
				st.Printf("  size match: %s, all files present: %s\n",
					ui.YesNo(res.SizeMatch), ui.YesNo(res.PathsMatch))
				if !res.SizeMatch || !res.PathsMatch {
					mismatched++
				}
			}

			if mismatched > 0 {
				fmt.Fprintf(os.Stderr, "%d directories did not reconcile\n", mismatched)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dest, "dest", "", "flat transfer destination root")
	cmd.Flags().StringVar(&dirlistArg, "dirlist", "", "file listing directories to compare, one per line")
	cmd.Flags().Int64Var(&toleranceMB, "tolerance-mb", 0, "absolute size-match allowance in MB (default 10)")
	cmd.Flags().BoolVar(&checksum, "checksum", false, "also verify file contents with BLAKE3")
	_ = cmd.MarkFlagRequired("dirlist")

	return cmd
}
