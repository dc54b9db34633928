package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"marquee/internal/store"
)

// Header lists the feature-table columns in output order.
func Header() []string {
	return []string{
		"movie_id", "canonical_title", "observed_days", "has_week2_data",
		"opening_theaters", "peak_theaters", "mean_theaters", "min_theaters", "expansion_ratio",
		"opening_day_gross", "peak_daily_gross", "mean_daily_gross", "std_daily_gross",
		"opening_per_theater", "peak_per_theater", "mean_per_theater", "per_theater_slope",
		"mean_yd_change", "std_yd_change", "mean_lw_change", "std_lw_change",
		"max_yd_gain", "max_yd_drop",
		"opening_3day_gross", "opening_3day_per_theater",
		"week1_mean_gross", "week2_mean_gross", "week2_week1_ratio",
		"front_loading_ratio", "final_cumulative_gross", "max_days_in_release",
	}
}

// Row flattens one feature row into strings matching Header order. Null
// fields render as empty cells so consumers can tell absence from zero.
func Row(row store.FeatureRow) []string {
	v := row.Vector
	return []string{
		row.MovieID,
		row.CanonicalTitle,
		strconv.Itoa(v.ObservedDays),
		strconv.FormatBool(v.HasWeek2Data),
		intCell(v.OpeningTheaters),
		intCell(v.PeakTheaters),
		floatCell(v.MeanTheaters),
		intCell(v.MinTheaters),
		floatCell(v.ExpansionRatio),
		floatCell(v.OpeningDayGross),
		floatCell(v.PeakDailyGross),
		floatCell(v.MeanDailyGross),
		floatCell(v.StdDailyGross),
		floatCell(v.OpeningPerTheater),
		floatCell(v.PeakPerTheater),
		floatCell(v.MeanPerTheater),
		floatCell(v.PerTheaterSlope),
		floatCell(v.MeanYDChange),
		floatCell(v.StdYDChange),
		floatCell(v.MeanLWChange),
		floatCell(v.StdLWChange),
		floatCell(v.MaxYDGain),
		floatCell(v.MaxYDDrop),
		floatCell(v.Opening3DayGross),
		floatCell(v.Opening3DayPerTheater),
		floatCell(v.Week1MeanGross),
		floatCell(v.Week2MeanGross),
		floatCell(v.Week2Week1Ratio),
		floatCell(v.FrontLoadingRatio),
		floatCell(v.FinalCumulativeGross),
		intCell(v.MaxDaysInRelease),
	}
}

// WriteCSV streams the feature table to w.
func WriteCSV(w io.Writer, rows []store.FeatureRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(Row(row)); err != nil {
			return fmt.Errorf("write csv row %s: %w", row.MovieID, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteCSVFile writes the feature table to path, creating parent directories.
func WriteCSVFile(path string, rows []store.FeatureRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer file.Close()

	if err := WriteCSV(file, rows); err != nil {
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}
	return nil
}

func floatCell(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}

func intCell(value *int) string {
	if value == nil {
		return ""
	}
	return strconv.Itoa(*value)
}
