package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"sessionprep/internal/organizer"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show which videos a run would place, without touching the filesystem",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			summary, err := organizer.New(cfg, logger, organizer.WithDryRun(true)).Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(summary.Plan) == 0 {
				fmt.Fprintln(out, "Nothing to place")
				return nil
			}
			fmt.Fprintln(out, renderPlan(summary.Plan))
			fmt.Fprintf(out, "%d videos across %d batches and %d trials\n",
				summary.Placed, summary.Batches, summary.Trials)
			return nil
		},
	}
}

func renderPlan(plan []organizer.PlannedCopy) string {
	rows := make([][]string, 0, len(plan))
	for _, planned := range plan {
		rows = append(rows, []string{
			fmt.Sprintf("%d", planned.Row),
			planned.Label,
			planned.Camera,
			planned.Source,
			planned.Dest,
			planned.Delta.Round(time.Millisecond).String(),
		})
	}
	return renderTable(
		[]string{"Row", "Label", "Camera", "Source", "Destination", "Delta"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	)
}
