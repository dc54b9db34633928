package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"marquee/internal/boxoffice"
	"marquee/internal/config"
	"marquee/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var runLimit int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show checkpoint, store counts, and recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				cmdCtx := cmd.Context()
				out := cmd.OutOrStdout()

				cp, err := st.Checkpoint(cmdCtx)
				if err != nil {
					return err
				}
				days, err := st.CompletedDayCount(cmdCtx)
				if err != nil {
					return err
				}
				records, err := st.RecordCount(cmdCtx)
				if err != nil {
					return err
				}
				features, err := st.FeatureCount(cmdCtx)
				if err != nil {
					return err
				}

				checkpointLabel := "none"
				if !cp.LastCompletedDate.IsZero() {
					checkpointLabel = cp.LastCompletedDate.Format(boxoffice.DateLayout)
				}

				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("Marquee Status", colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintf(out, "Database:             %s\n", st.Path())
				fmt.Fprintf(out, "Checkpoint:           %s\n", checkpointLabel)
				fmt.Fprintf(out, "Consecutive failures: %s\n",
					highlightFailures(strconv.Itoa(cp.ConsecutiveFailures), cp.ConsecutiveFailures, colorize))
				fmt.Fprintf(out, "Completed dates:      %d\n", days)
				fmt.Fprintf(out, "Daily records:        %d\n", records)
				fmt.Fprintf(out, "Feature vectors:      %d\n", features)

				runs, err := st.RecentRuns(cmdCtx, runLimit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					return nil
				}

				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					finished := "-"
					if !run.FinishedAt.IsZero() {
						finished = run.FinishedAt.Format(time.RFC3339)
					}
					rows = append(rows, []string{
						run.ID,
						run.Strategy,
						run.Status,
						strconv.Itoa(run.DatesCompleted),
						strconv.Itoa(run.DatesFailed),
						finished,
					})
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderTable(
					[]string{"Run", "Strategy", "Status", "Completed", "Failed", "Finished"},
					rows,
					4, 5,
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&runLimit, "runs", 5, "Number of recent runs to display")

	return cmd
}
