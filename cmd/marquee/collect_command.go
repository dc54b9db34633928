package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"marquee/internal/boxoffice"
	"marquee/internal/collector"
	"marquee/internal/config"
	"marquee/internal/runerr"
	"marquee/internal/store"
)

func newCollectCommand(ctx *commandContext) *cobra.Command {
	var fromFlag string
	var toFlag string
	var skipAggregate bool

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect daily box-office pages over a date range",
		Long: `Collect fetches one page per planned date, stores the parsed records, and
advances the checkpoint after each completed date. Without --from the run
resumes at the day after the checkpoint. Interrupting with Ctrl-C stops
between dates; completed dates stay stored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseDateFlag("from", fromFlag)
			if err != nil {
				return err
			}
			to, err := parseDateFlag("to", toFlag)
			if err != nil {
				return err
			}
			if to.IsZero() {
				// Yesterday is the newest date the source has finalized.
				now := time.Now()
				to = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				fetcher := boxoffice.NewFetcher(cfg, logger)
				coll, err := collector.New(cfg, st, fetcher, logger)
				if err != nil {
					return err
				}

				summary, err := coll.Run(runCtx, from, to)
				if err != nil {
					if runerr.IsFatal(err) {
						return fmt.Errorf("%w\nprior dates remain stored; resume with --from once resolved", err)
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(),
					"run %s: %d planned, %d collected, %d skipped, %d failed\n",
					summary.RunID, summary.Planned, summary.Completed, summary.Skipped, summary.Failed)

				if skipAggregate {
					return nil
				}
				finalize, err := coll.Finalize(runCtx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(),
					"aggregated %d movies (%d matched, %d unmatched records)\n",
					finalize.Movies, finalize.Matched, finalize.Unmatched)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&fromFlag, "from", "", "First date to collect (YYYY-MM-DD); defaults to checkpoint + 1")
	cmd.Flags().StringVar(&toFlag, "to", "", "Last date to collect (YYYY-MM-DD); defaults to yesterday")
	cmd.Flags().BoolVar(&skipAggregate, "skip-aggregate", false, "Collect only; do not recompute feature vectors")

	return cmd
}
