// Command podarc manages the archival tail of the sequencing data
// lifecycle: packing run directories into tar archives, verifying archives
// against their sources, and deleting sources only after per-directory
// confirmation.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/seqarchive/podarc/internal/config"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var (
		verbose bool
		quiet   bool
		logFile string
	)

	rootCmd := &cobra.Command{
		Use:           "podarc",
		Short:         "Archive, verify and safely retire sequencing run directories",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logLevel := slog.LevelWarn
			if verbose {
				logLevel = slog.LevelDebug
			} else if !quiet {
				logLevel = slog.LevelInfo
			}
			textHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel,
			})
			var handler slog.Handler = textHandler
			if logFile != "" {
				lf, err := os.Create(logFile)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				handler = newMultiHandler(textHandler, slog.NewJSONHandler(lf, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				}))
			}
			slog.SetDefault(slog.New(handler))
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except warnings and errors")
	rootCmd.PersistentFlags().StringVar(&logFile, "log", "", "write structured JSON log to FILE")

	rootCmd.AddCommand(newArchiveCmd())
	rootCmd.AddCommand(newReconcileCmd())
	rootCmd.AddCommand(newCompareCmd())
	rootCmd.AddCommand(newReportCmd())

	return rootCmd
}

// loadConfig loads the optional config file, warning instead of failing: a
// broken config file should never block an archival batch.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		slog.Warn("failed to load config", "error", err)
	}
	return cfg
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
