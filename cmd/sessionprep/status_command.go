package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"sessionprep/internal/preflight"
)

const (
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check directories, the trial log, and external binaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			failed := 0
			rows := make([][]string, 0, 8)
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				state := "ok"
				if !result.Passed {
					state = "fail"
					failed++
				}
				if colorize {
					if result.Passed {
						state = ansiGreen + state + ansiReset
					} else {
						state = ansiRed + state + ansiReset
					}
				}
				rows = append(rows, []string{result.Name, state, result.Detail})
			}

			fmt.Fprintln(out, renderTable(
				[]string{"Check", "State", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			if failed > 0 {
				return fmt.Errorf("%d checks failed", failed)
			}
			return nil
		},
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
