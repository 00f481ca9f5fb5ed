package main

import (
	"github.com/spf13/cobra"

	"github.com/robby/sprintreport/internal/report"
	"github.com/robby/sprintreport/internal/store"
	"github.com/robby/sprintreport/internal/tui"
)

func viewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view <start-snapshot> [end-snapshot]",
		Short: "Browse a sprint report in the terminal",
		Long: `Browse a sprint report as an interactive board.

The columns are the end snapshot's lists plus the cards abandoned during the
sprint. Press ? for key bindings.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := loadSnapshots(cmd.Context(), args)
			if err != nil {
				return err
			}
			return tui.Run(store.New(report.New(start, end, nil)))
		},
	}
}
