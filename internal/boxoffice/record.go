package boxoffice

import (
	"time"

	"marquee/internal/textutil"
)

// DateLayout is the canonical calendar-date layout used across the pipeline.
const DateLayout = "2006-01-02"

// DailyRecord is one movie's reported metrics for a single calendar date.
// Optional columns that were absent from the source page stay nil rather
// than being coerced to zero, so aggregation math stays honest. A record is
// immutable once stored.
type DailyRecord struct {
	Date        time.Time
	Rank        *int
	Title       string
	SourceURL   string
	Distributor string

	DailyGross      float64
	YDChangePct     *float64
	LWChangePct     *float64
	Theaters        *int
	PerTheaterAvg   *float64
	CumulativeGross *float64
	DaysInRelease   *int
}

// Key uniquely identifies a record within its date: the source URL when the
// page linked the title, otherwise the normalized title.
func (r DailyRecord) Key() string {
	if r.SourceURL != "" {
		return r.SourceURL
	}
	return "title:" + textutil.NormalizeTitle(r.Title)
}

// EstimatedRelease derives the movie's release date from the record date and
// the reported days-in-release count (day 1 = release day). Falls back to the
// record date when the column was absent.
func (r DailyRecord) EstimatedRelease() time.Time {
	if r.DaysInRelease == nil || *r.DaysInRelease < 1 {
		return r.Date
	}
	return r.Date.AddDate(0, 0, -(*r.DaysInRelease - 1))
}
