package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sydlexius/bassline/internal/logging"
	"github.com/sydlexius/bassline/internal/runner"
)

func newDiscoverCommand(load configLoader) *cobra.Command {
	var (
		top        int
		output     string
		maxRecords int
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Run the discovery pipeline once and write the snapshot",
		Long: "Crawls MusicBrainz for artists in the configured area, matches them to Deezer,\n" +
			"writes the ranked snapshot and prints a summary. Nothing is written on failure.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if output != "" {
				cfg.Discovery.SnapshotPath = output
			}
			if cmd.Flags().Changed("max-records") {
				cfg.Discovery.MaxRecords = maxRecords
			}

			// Progress owns stdout; diagnostics go to stderr.
			logManager, logger := logging.NewManagerWithWriter(cfg.Logging, cmd.ErrOrStderr())
			defer logManager.Close() //nolint:errcheck

			out := cmd.OutOrStdout()
			a := newApp(cfg, logger)
			runID, res, err := a.runner.Run(cmd.Context(), func(line string) {
				fmt.Fprintln(out, line)
			})
			if err != nil {
				if errors.Is(err, runner.ErrRunInProgress) {
					return fmt.Errorf("%w (lock %s)", err, runner.LockPath(cfg.Discovery.SnapshotPath))
				}
				return fmt.Errorf("discovery run %s failed: %w", runID, err)
			}

			fmt.Fprintf(out, "\nWrote %s (run %s)\n", cfg.Discovery.SnapshotPath, runID)
			printSummary(out, res, top, isTerminal(out))
			return nil
		},
	}

	cmd.Flags().IntVarP(&top, "top", "n", 20, "Number of artists to list in the summary")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Snapshot path (overrides discovery.snapshot_path)")
	cmd.Flags().IntVar(&maxRecords, "max-records", 0, "Cap on performers matched per run (0 = no cap; default from discovery.max_records)")
	return cmd
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: fd fits in int
}
