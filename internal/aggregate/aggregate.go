package aggregate

import (
	"sort"
	"time"

	"marquee/internal/boxoffice"
)

// Aggregate reduces a movie's full matched record sequence to one feature
// vector. Records are re-indexed to day offsets since release (offset 0 =
// release day); when release is zero the first observed record anchors
// offset 0. The computation is a pure function of its inputs: aggregating
// the same record set twice yields identical vectors.
func Aggregate(release time.Time, records []boxoffice.DailyRecord) FeatureVector {
	var fv FeatureVector
	if len(records) == 0 {
		return fv
	}

	ordered := append([]boxoffice.DailyRecord(nil), records...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Date.Before(ordered[j].Date) })

	if release.IsZero() {
		release = ordered[0].Date
	}

	byOffset := make(map[int]boxoffice.DailyRecord, len(ordered))
	for _, rec := range ordered {
		offset := dayOffset(release, rec.Date)
		if _, exists := byOffset[offset]; !exists {
			byOffset[offset] = rec
		}
	}
	fv.ObservedDays = len(byOffset)

	fv.theaterDistribution(ordered, byOffset)
	fv.revenueMomentum(ordered, byOffset)
	fv.perTheaterPerformance(release, ordered, byOffset)
	fv.dailyDynamics(ordered)
	fv.openingWindow(byOffset)
	fv.weeklyAggregates(byOffset)
	fv.totals(ordered)
	fv.frontLoading()

	return fv
}

func dayOffset(release, date time.Time) int {
	return int(date.Sub(release).Hours() / 24)
}

func (fv *FeatureVector) theaterDistribution(ordered []boxoffice.DailyRecord, byOffset map[int]boxoffice.DailyRecord) {
	if opening, ok := byOffset[0]; ok && opening.Theaters != nil {
		v := *opening.Theaters
		fv.OpeningTheaters = &v
	}

	var observed []float64
	for _, rec := range ordered {
		if rec.Theaters != nil {
			observed = append(observed, float64(*rec.Theaters))
		}
	}
	if len(observed) == 0 {
		return
	}
	peak := int(*maxOf(observed))
	minimum := int(*minOf(observed))
	fv.PeakTheaters = &peak
	fv.MinTheaters = &minimum
	fv.MeanTheaters = mean(observed)

	if fv.OpeningTheaters != nil && *fv.OpeningTheaters > 0 {
		fv.ExpansionRatio = ratio(floatOf(float64(peak)), floatOf(float64(*fv.OpeningTheaters)))
	}
}

func (fv *FeatureVector) revenueMomentum(ordered []boxoffice.DailyRecord, byOffset map[int]boxoffice.DailyRecord) {
	if opening, ok := byOffset[0]; ok {
		v := opening.DailyGross
		fv.OpeningDayGross = &v
	}

	gross := make([]float64, 0, len(ordered))
	for _, rec := range ordered {
		gross = append(gross, rec.DailyGross)
	}
	fv.PeakDailyGross = maxOf(gross)
	fv.MeanDailyGross = mean(gross)
	fv.StdDailyGross = sampleStd(gross)
}

func (fv *FeatureVector) perTheaterPerformance(release time.Time, ordered []boxoffice.DailyRecord, byOffset map[int]boxoffice.DailyRecord) {
	if opening, ok := byOffset[0]; ok && opening.PerTheaterAvg != nil {
		v := *opening.PerTheaterAvg
		fv.OpeningPerTheater = &v
	}

	var (
		observed []float64
		points   []point
	)
	for _, rec := range ordered {
		if rec.PerTheaterAvg == nil {
			continue
		}
		observed = append(observed, *rec.PerTheaterAvg)
		points = append(points, point{x: float64(dayOffset(release, rec.Date)), y: *rec.PerTheaterAvg})
	}
	fv.PeakPerTheater = maxOf(observed)
	fv.MeanPerTheater = mean(observed)
	fv.PerTheaterSlope = regressionSlope(points)
}

func (fv *FeatureVector) dailyDynamics(ordered []boxoffice.DailyRecord) {
	var yd, lw []float64
	for _, rec := range ordered {
		if rec.YDChangePct != nil {
			yd = append(yd, *rec.YDChangePct)
		}
		if rec.LWChangePct != nil {
			lw = append(lw, *rec.LWChangePct)
		}
	}
	fv.MeanYDChange = mean(yd)
	fv.StdYDChange = sampleStd(yd)
	fv.MeanLWChange = mean(lw)
	fv.StdLWChange = sampleStd(lw)
	fv.MaxYDGain = maxOf(yd)
	fv.MaxYDDrop = minOf(yd)
}

// openingWindow computes 3-day opening features, requiring records at all of
// offsets 0-2. Missing days are never extrapolated.
func (fv *FeatureVector) openingWindow(byOffset map[int]boxoffice.DailyRecord) {
	window, complete := windowRecords(byOffset, 0, 2)
	if !complete {
		return
	}

	var sum float64
	var theaters []float64
	for _, rec := range window {
		sum += rec.DailyGross
		if rec.Theaters != nil {
			theaters = append(theaters, float64(*rec.Theaters))
		}
	}
	fv.Opening3DayGross = &sum
	fv.Opening3DayPerTheater = ratio(&sum, mean(theaters))
}

// weeklyAggregates computes week-level gross means over complete 7-day
// offset windows only.
func (fv *FeatureVector) weeklyAggregates(byOffset map[int]boxoffice.DailyRecord) {
	if week1, complete := windowRecords(byOffset, 0, 6); complete {
		fv.Week1MeanGross = mean(grossOf(week1))
	}
	if week2, complete := windowRecords(byOffset, 7, 13); complete {
		fv.Week2MeanGross = mean(grossOf(week2))
		fv.HasWeek2Data = true
	}
	if fv.Week1MeanGross != nil && *fv.Week1MeanGross != 0 && fv.Week2MeanGross != nil {
		fv.Week2Week1Ratio = ratio(fv.Week2MeanGross, fv.Week1MeanGross)
	}
}

func (fv *FeatureVector) totals(ordered []boxoffice.DailyRecord) {
	last := ordered[len(ordered)-1]
	if last.CumulativeGross != nil {
		v := *last.CumulativeGross
		fv.FinalCumulativeGross = &v
	}
	for _, rec := range ordered {
		if rec.DaysInRelease == nil {
			continue
		}
		if fv.MaxDaysInRelease == nil || *rec.DaysInRelease > *fv.MaxDaysInRelease {
			v := *rec.DaysInRelease
			fv.MaxDaysInRelease = &v
		}
	}
}

// frontLoading reports the share of observed revenue that arrived in the
// 3-day opening. A full first week must be observed before the proxy is
// meaningful, so it stays nil below seven observed opening-week days.
func (fv *FeatureVector) frontLoading() {
	if fv.Opening3DayGross == nil || fv.Week1MeanGross == nil {
		return
	}
	fv.FrontLoadingRatio = ratio(fv.Opening3DayGross, fv.FinalCumulativeGross)
}

func windowRecords(byOffset map[int]boxoffice.DailyRecord, from, to int) ([]boxoffice.DailyRecord, bool) {
	window := make([]boxoffice.DailyRecord, 0, to-from+1)
	for offset := from; offset <= to; offset++ {
		rec, ok := byOffset[offset]
		if !ok {
			return nil, false
		}
		window = append(window, rec)
	}
	return window, true
}

func grossOf(records []boxoffice.DailyRecord) []float64 {
	values := make([]float64, 0, len(records))
	for _, rec := range records {
		values = append(values, rec.DailyGross)
	}
	return values
}
