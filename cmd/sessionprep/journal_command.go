package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"sessionprep/internal/journal"
)

func newJournalCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recent video placements",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Journal.Enabled {
				return fmt.Errorf("journal is disabled in the configuration")
			}

			store, err := journal.Open(cfg.JournalPath())
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer store.Close()

			placements, err := store.RecentPlacements(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(placements) == 0 {
				fmt.Fprintln(out, "No placements recorded")
				return nil
			}

			rows := make([][]string, 0, len(placements))
			for _, p := range placements {
				rows = append(rows, []string{
					p.CreatedAt.Format("2006-01-02 15:04:05"),
					p.Session,
					p.Label,
					p.Camera,
					p.Dest,
					(time.Duration(p.DeltaSeconds * float64(time.Second))).Round(time.Millisecond).String(),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Recorded", "Session", "Label", "Camera", "Destination", "Delta"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of placements to show")
	return cmd
}
