package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"sessionprep/internal/journal"
	"sessionprep/internal/organizer"
	"sessionprep/internal/preflight"
)

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "organize",
		Short: "Read the trial log and place camera videos into the session tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			if failures := failedChecks(preflight.RunAll(cmd.Context(), cfg)); len(failures) > 0 {
				return fmt.Errorf("preflight failed: %s", strings.Join(failures, "; "))
			}

			lock := flock.New(filepath.Join(cfg.Paths.LogDir, "sessionprep.lock"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !locked {
				return errors.New("another sessionprep run is already in progress")
			}
			defer lock.Unlock()

			opts := []organizer.Option{organizer.WithDryRun(dryRun)}
			if cfg.Journal.Enabled && !dryRun {
				store, err := journal.Open(cfg.JournalPath())
				if err != nil {
					return fmt.Errorf("open journal: %w", err)
				}
				defer store.Close()
				opts = append(opts, organizer.WithJournal(store))
			}

			summary, err := organizer.New(cfg, logger, opts...).Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintln(out, renderPlan(summary.Plan))
			}
			fmt.Fprintf(out, "Processed %d rows: %d sessions, %d batches, %d trials, %d videos placed\n",
				summary.Entries, summary.Sessions, summary.Batches, summary.Trials, summary.Placed)
			if summary.SkippedRows > 0 {
				fmt.Fprintf(out, "Skipped %d rows with invalid timestamps\n", summary.SkippedRows)
			}
			if summary.MissedCameras > 0 {
				fmt.Fprintf(out, "Missed %d camera matches\n", summary.MissedCameras)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan the run without copying any files")
	return cmd
}

func failedChecks(results []preflight.Result) []string {
	var failures []string
	for _, result := range results {
		if !result.Passed {
			failures = append(failures, fmt.Sprintf("%s: %s", result.Name, result.Detail))
		}
	}
	return failures
}
