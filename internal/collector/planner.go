package collector

import (
	"fmt"
	"time"

	"marquee/internal/config"
)

// Planner produces the ordered list of dates a run should visit.
type Planner interface {
	// Name identifies the strategy in run records and logs.
	Name() string
	// Dates returns every date in [from, to] the strategy selects, ascending.
	Dates(from, to time.Time) []time.Time
}

// PlannerFor builds the planner named by the configuration.
func PlannerFor(cfg *config.Config) (Planner, error) {
	switch cfg.Collection.Strategy {
	case config.StrategyDaily:
		return Daily{}, nil
	case config.StrategyInterval:
		return Interval{Days: cfg.Collection.IntervalDays}, nil
	case config.StrategyCalendar:
		return Calendar{}, nil
	}
	return nil, fmt.Errorf("unknown collection strategy %q", cfg.Collection.Strategy)
}

// Daily visits every date in the range.
type Daily struct{}

func (Daily) Name() string { return config.StrategyDaily }

func (Daily) Dates(from, to time.Time) []time.Time {
	return stepDates(from, to, 1)
}

// Interval visits every Nth date.
type Interval struct {
	Days int
}

func (Interval) Name() string { return config.StrategyInterval }

func (p Interval) Dates(from, to time.Time) []time.Time {
	step := p.Days
	if step < 1 {
		step = 1
	}
	return stepDates(from, to, step)
}

// Calendar visits every Friday plus a fixed set of high-traffic holiday
// dates. Fridays carry most wide releases, so this covers opening days at a
// fraction of the fetch volume of a daily sweep.
type Calendar struct{}

func (Calendar) Name() string { return config.StrategyCalendar }

// Holiday month-days added on top of Fridays. Easter and Memorial Day drift
// year to year; these are the fixed approximations the sweep uses.
var calendarHolidays = [][2]int{
	{1, 1},   // New Year
	{2, 14},  // Valentine's Day
	{3, 29},  // Easter weekend
	{5, 24},  // Memorial Day weekend
	{7, 4},   // Independence Day
	{11, 28}, // Thanksgiving
	{12, 25}, // Christmas
}

func (Calendar) Dates(from, to time.Time) []time.Time {
	from = truncateDay(from)
	to = truncateDay(to)
	if to.Before(from) {
		return nil
	}

	selected := make(map[time.Time]struct{})
	cursor := from
	for cursor.Weekday() != time.Friday {
		cursor = cursor.AddDate(0, 0, 1)
	}
	for !cursor.After(to) {
		selected[cursor] = struct{}{}
		cursor = cursor.AddDate(0, 0, 7)
	}

	for year := from.Year(); year <= to.Year(); year++ {
		for _, md := range calendarHolidays {
			holiday := time.Date(year, time.Month(md[0]), md[1], 0, 0, 0, 0, from.Location())
			if !holiday.Before(from) && !holiday.After(to) {
				selected[holiday] = struct{}{}
			}
		}
	}

	dates := make([]time.Time, 0, len(selected))
	for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
		if _, ok := selected[date]; ok {
			dates = append(dates, date)
		}
	}
	return dates
}

func stepDates(from, to time.Time, step int) []time.Time {
	from = truncateDay(from)
	to = truncateDay(to)
	if to.Before(from) {
		return nil
	}
	var dates []time.Time
	for date := from; !date.After(to); date = date.AddDate(0, 0, step) {
		dates = append(dates, date)
	}
	return dates
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
