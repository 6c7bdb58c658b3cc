package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"sessionprep/internal/media/ffprobe"
	"sessionprep/internal/timezone"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <file>",
		Short: "Inspect a video's embedded creation timestamp",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			result, err := ffprobe.Inspect(cmd.Context(), cfg.FFprobeBinary(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "File: %s\n", args[0])
			fmt.Fprintf(out, "Video streams: %d\n", result.VideoStreamCount())
			if seconds := result.DurationSeconds(); seconds > 0 {
				fmt.Fprintf(out, "Duration: %s\n", time.Duration(seconds*float64(time.Second)).Round(time.Millisecond))
			}

			creation, ok := result.CreationTime()
			if !ok {
				fmt.Fprintln(out, "Creation time: not present")
				return nil
			}
			fmt.Fprintf(out, "Creation time (UTC): %s\n", creation.Format(time.RFC3339))

			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			local, err := timezone.ToLocal(creation, loc, true)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Creation time (%s): %s\n", cfg.Time.Zone, local.Format(time.RFC3339))
			return nil
		},
	}
}
