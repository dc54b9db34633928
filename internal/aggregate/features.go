package aggregate

// FeatureVector describes one movie's early theatrical trajectory. Every
// field whose defining window was not fully observed is nil rather than
// fabricated, so downstream consumers must filter on ObservedDays and
// HasWeek2Data instead of treating nulls as zero.
type FeatureVector struct {
	// Theater distribution.
	OpeningTheaters *int     `json:"opening_theaters"`
	PeakTheaters    *int     `json:"peak_theaters"`
	MeanTheaters    *float64 `json:"mean_theaters"`
	MinTheaters     *int     `json:"min_theaters"`
	ExpansionRatio  *float64 `json:"expansion_ratio"`

	// Revenue momentum.
	OpeningDayGross *float64 `json:"opening_day_gross"`
	PeakDailyGross  *float64 `json:"peak_daily_gross"`
	MeanDailyGross  *float64 `json:"mean_daily_gross"`
	StdDailyGross   *float64 `json:"std_daily_gross"`

	// Per-theater performance.
	OpeningPerTheater *float64 `json:"opening_per_theater"`
	PeakPerTheater    *float64 `json:"peak_per_theater"`
	MeanPerTheater    *float64 `json:"mean_per_theater"`
	PerTheaterSlope   *float64 `json:"per_theater_slope"`

	// Day-to-day and week-to-week dynamics.
	MeanYDChange *float64 `json:"mean_yd_change"`
	StdYDChange  *float64 `json:"std_yd_change"`
	MeanLWChange *float64 `json:"mean_lw_change"`
	StdLWChange  *float64 `json:"std_lw_change"`
	MaxYDGain    *float64 `json:"max_yd_gain"`
	MaxYDDrop    *float64 `json:"max_yd_drop"`

	// Opening window (day offsets 0-2, all three required).
	Opening3DayGross      *float64 `json:"opening_3day_gross"`
	Opening3DayPerTheater *float64 `json:"opening_3day_per_theater"`

	// Weekly aggregates (complete 7-day windows required).
	Week1MeanGross  *float64 `json:"week1_mean_gross"`
	Week2MeanGross  *float64 `json:"week2_mean_gross"`
	Week2Week1Ratio *float64 `json:"week2_week1_ratio"`

	// Front-loading and totals.
	FrontLoadingRatio    *float64 `json:"front_loading_ratio"`
	FinalCumulativeGross *float64 `json:"final_cumulative_gross"`
	MaxDaysInRelease     *int     `json:"max_days_in_release"`

	// Completeness signals.
	ObservedDays int  `json:"observed_days"`
	HasWeek2Data bool `json:"has_week2_data"`
}
