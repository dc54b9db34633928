package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"marquee/internal/boxoffice"
	"marquee/internal/collector"
	"marquee/internal/config"
	"marquee/internal/store"
)

func newAggregateCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Recompute feature vectors from stored records",
		Long: `Aggregate matches every stored record against the current catalog and
rebuilds the per-movie feature table from scratch. Safe to run repeatedly:
matching is deterministic and each vector is fully replaced.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				fetcher := boxoffice.NewFetcher(cfg, logger)
				coll, err := collector.New(cfg, st, fetcher, logger)
				if err != nil {
					return err
				}
				summary, err := coll.Finalize(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(),
					"%d records: %d matched (%d ambiguous), %d unmatched, %d movies aggregated\n",
					summary.Records, summary.Matched, summary.Ambiguous, summary.Unmatched, summary.Movies)
				return nil
			})
		},
	}
	return cmd
}
