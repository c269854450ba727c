package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/agentic-research/assetwalk/internal/report"
	"github.com/agentic-research/assetwalk/internal/walk"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var (
		runID int64
		all   bool
	)
	cmd := &cobra.Command{
		Use:   "report <report.db>",
		Short: "Show the failed references of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := report.LatestRun(args[0], runID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			status := "PASS"
			switch {
			case !run.Finished:
				status = "INCOMPLETE"
			case run.Failed:
				status = "FAIL"
			}
			_, _ = fmt.Fprintf(out, "run %d (%s): %s, %d roots, %d loaded, %d failed references\n",
				run.ID, run.StartedAt.Format("2006-01-02 15:04:05"), status,
				run.Result.Roots, run.Result.Loaded, run.Result.Failures())

			var outcomes []walk.Outcome
			if !all {
				outcomes = []walk.Outcome{walk.OutcomeDangling, walk.OutcomeLoadFailed}
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			err = report.StreamEvents(args[0], run.ID, outcomes, func(ev walk.Event) error {
				_, err := fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", ev.Outcome, ev.ID, ev.Depth, ev.Path, ev.Message+ev.Guard)
				return err
			})
			if err != nil {
				return err
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Int64Var(&runID, "run", 0, "run id (default: latest)")
	cmd.Flags().BoolVar(&all, "all", false, "list every event, not only failures")
	return cmd
}
