package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"marquee/internal/catalog"
	"marquee/internal/catalog/tmdb"
	"marquee/internal/config"
	"marquee/internal/store"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the movie identity catalog",
	}
	catalogCmd.AddCommand(newCatalogRefreshCommand(ctx))
	return catalogCmd
}

func newCatalogRefreshCommand(ctx *commandContext) *cobra.Command {
	var fromFlag string
	var toFlag string

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Pull movie identities for a release-date range from TMDB",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseDateFlag("from", fromFlag)
			if err != nil {
				return err
			}
			to, err := parseDateFlag("to", toFlag)
			if err != nil {
				return err
			}
			if from.IsZero() || to.IsZero() {
				return errors.New("--from and --to are required")
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language)
				if err != nil {
					return err
				}
				total, err := catalog.Refresh(cmd.Context(), client, st, from, to, logger)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "refreshed %d catalog entries\n", total)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&fromFlag, "from", "", "Earliest release date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toFlag, "to", "", "Latest release date (YYYY-MM-DD)")

	return cmd
}
