package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"marquee/internal/config"
	"marquee/internal/export"
	"marquee/internal/store"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string
	var printTable bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the feature table to CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				rows, err := st.Features(cmd.Context())
				if err != nil {
					return err
				}
				if len(rows) == 0 {
					return fmt.Errorf("no feature vectors stored; run `marquee aggregate` first")
				}

				target := outputFlag
				if target == "" {
					target = filepath.Join(cfg.Paths.ExportDir, "features.csv")
				}
				if err := export.WriteCSVFile(target, rows); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d movies to %s\n", len(rows), target)

				if !printTable {
					return nil
				}
				display := make([][]string, 0, len(rows))
				for _, row := range rows {
					v := row.Vector
					display = append(display, []string{
						row.MovieID,
						row.CanonicalTitle,
						fmt.Sprintf("%d", v.ObservedDays),
						moneyCell(v.OpeningDayGross),
						moneyCell(v.Week1MeanGross),
						moneyCell(v.FinalCumulativeGross),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Movie", "Title", "Days", "Opening", "Week1 Mean", "Cumulative"},
					display,
					3, 4, 5, 6,
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output CSV path (default: <export_dir>/features.csv)")
	cmd.Flags().BoolVar(&printTable, "table", false, "Also print a summary table")

	return cmd
}

func moneyCell(value *float64) string {
	if value == nil {
		return "-"
	}
	return fmt.Sprintf("$%.0f", *value)
}
