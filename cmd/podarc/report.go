package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seqarchive/podarc/internal/report"
)

func newReportCmd() *cobra.Command {
	var (
		parent      string
		dest        string
		out         string
		toleranceMB int64
		workers     int
	)

	cmd := &cobra.Command{
		Use:   "report --parent DIR --dest DIR --out FILE",
		Short: "Write a CSV comparing every candidate directory with its archive",
		Long: `Report scans every immediate subdirectory of every immediate child of the
parent root, pairs each with <dest>/<name>.pod5.tar, and rewrites the CSV at
--out with one row per pair. Missing archives still produce a row with empty
size and first-entry fields.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if !cmd.Flags().Changed("dest") && cfg.Defaults.Dest != nil {
				dest = *cfg.Defaults.Dest
			}
			if !cmd.Flags().Changed("tolerance-mb") && cfg.Defaults.ToleranceMB != nil {
				toleranceMB = *cfg.Defaults.ToleranceMB
			}
			if !cmd.Flags().Changed("workers") && cfg.Defaults.Workers != nil {
				workers = *cfg.Defaults.Workers
			}
			if dest == "" {
				return errors.New("--dest is required")
			}

			rows, err := report.Generate(context.Background(), report.Config{
				ParentRoot:  parent,
				DestRoot:    dest,
				OutPath:     out,
				ToleranceMB: toleranceMB,
				Workers:     workers,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "wrote %d rows to %s\n", rows, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "root whose children contain candidate run directories")
	cmd.Flags().StringVar(&dest, "dest", "", "archive destination root")
	cmd.Flags().StringVar(&out, "out", "", "CSV output path (overwritten)")
	cmd.Flags().Int64Var(&toleranceMB, "tolerance-mb", 0, "absolute size-match allowance in MB (default 10)")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent size measurements (default 4)")
	_ = cmd.MarkFlagRequired("parent")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}
