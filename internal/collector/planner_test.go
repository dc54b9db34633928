package collector

import (
	"testing"
	"time"

	"marquee/internal/boxoffice"
	"marquee/internal/config"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(boxoffice.DateLayout, value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return parsed
}

func TestDailyPlannerCoversEveryDate(t *testing.T) {
	dates := Daily{}.Dates(day(t, "2025-01-01"), day(t, "2025-01-05"))
	if len(dates) != 5 {
		t.Fatalf("got %d dates, want 5", len(dates))
	}
	for i, date := range dates {
		want := day(t, "2025-01-01").AddDate(0, 0, i)
		if !date.Equal(want) {
			t.Fatalf("dates[%d] = %s, want %s", i, date, want)
		}
	}
}

func TestIntervalPlannerSteps(t *testing.T) {
	dates := Interval{Days: 14}.Dates(day(t, "2025-01-01"), day(t, "2025-02-01"))
	want := []string{"2025-01-01", "2025-01-15", "2025-01-29"}
	if len(dates) != len(want) {
		t.Fatalf("got %d dates, want %d", len(dates), len(want))
	}
	for i, w := range want {
		if !dates[i].Equal(day(t, w)) {
			t.Fatalf("dates[%d] = %s, want %s", i, dates[i], w)
		}
	}
}

func TestCalendarPlannerFridaysAndHolidays(t *testing.T) {
	// January 2025: Fridays fall on the 3rd, 10th, 17th, 24th, and 31st.
	// New Year's Day (Wednesday) must be added on top.
	dates := Calendar{}.Dates(day(t, "2025-01-01"), day(t, "2025-01-31"))
	want := []string{
		"2025-01-01", "2025-01-03", "2025-01-10",
		"2025-01-17", "2025-01-24", "2025-01-31",
	}
	if len(dates) != len(want) {
		t.Fatalf("got %d dates %v, want %d", len(dates), dates, len(want))
	}
	for i, w := range want {
		if !dates[i].Equal(day(t, w)) {
			t.Fatalf("dates[%d] = %s, want %s", i, dates[i], w)
		}
	}
}

func TestCalendarPlannerDeduplicatesHolidayFriday(t *testing.T) {
	// July 4th 2025 is itself a Friday and must appear once.
	dates := Calendar{}.Dates(day(t, "2025-07-01"), day(t, "2025-07-07"))
	if len(dates) != 1 {
		t.Fatalf("got %d dates %v, want just July 4th", len(dates), dates)
	}
	if !dates[0].Equal(day(t, "2025-07-04")) {
		t.Fatalf("dates[0] = %s, want 2025-07-04", dates[0])
	}
}

func TestPlannerForRejectsUnknownStrategy(t *testing.T) {
	cfg := config.Default()
	cfg.Collection.Strategy = "hourly"
	if _, err := PlannerFor(&cfg); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestPlannersEmptyOnInvertedRange(t *testing.T) {
	from := day(t, "2025-02-01")
	to := day(t, "2025-01-01")
	if got := (Daily{}).Dates(from, to); len(got) != 0 {
		t.Fatalf("daily: got %d dates, want 0", len(got))
	}
	if got := (Calendar{}).Dates(from, to); len(got) != 0 {
		t.Fatalf("calendar: got %d dates, want 0", len(got))
	}
}
