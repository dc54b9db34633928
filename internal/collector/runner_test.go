package collector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"marquee/internal/boxoffice"
	"marquee/internal/catalog"
	"marquee/internal/logging"
	"marquee/internal/runerr"
	"marquee/internal/store"
	"marquee/internal/testsupport"
)

// stubFetcher serves canned per-date results without touching the network.
type stubFetcher struct {
	mu      sync.Mutex
	records map[string][]boxoffice.DailyRecord
	fail    map[string]bool
	onFetch func(date time.Time)
	calls   []string
}

func (s *stubFetcher) FetchDay(ctx context.Context, date time.Time) ([]boxoffice.DailyRecord, []boxoffice.RowDrop, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	key := date.Format(boxoffice.DateLayout)

	s.mu.Lock()
	s.calls = append(s.calls, key)
	onFetch := s.onFetch
	failed := s.fail[key]
	records := s.records[key]
	s.mu.Unlock()

	if onFetch != nil {
		onFetch(date)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if failed {
		return nil, nil, runerr.Wrap(runerr.ErrFetch, "fetcher", key, errors.New("status 503"))
	}
	return records, nil, nil
}

func (s *stubFetcher) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func newCollector(t *testing.T, opts ...testsupport.ConfigOption) (*Collector, *store.Store, *stubFetcher) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	st := testsupport.MustOpenStore(t, cfg)
	fetcher := &stubFetcher{
		records: make(map[string][]boxoffice.DailyRecord),
		fail:    make(map[string]bool),
	}
	c, err := New(cfg, st, fetcher, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, st, fetcher
}

func seedDay(t *testing.T, fetcher *stubFetcher, dateStr, title string) {
	t.Helper()
	date, err := time.Parse(boxoffice.DateLayout, dateStr)
	if err != nil {
		t.Fatalf("parse %q: %v", dateStr, err)
	}
	fetcher.records[dateStr] = []boxoffice.DailyRecord{{
		Date:       date,
		Title:      title,
		DailyGross: 1_000_000,
	}}
}

func TestRunCollectsRange(t *testing.T) {
	c, st, fetcher := newCollector(t)
	for _, d := range []string{"2025-01-01", "2025-01-02", "2025-01-03"} {
		seedDay(t, fetcher, d, "Alpha")
	}
	ctx := context.Background()

	summary, err := c.Run(ctx, day(t, "2025-01-01"), day(t, "2025-01-03"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Planned != 3 || summary.Completed != 3 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}

	count, err := st.RecordCount(ctx)
	if err != nil {
		t.Fatalf("RecordCount: %v", err)
	}
	if count != 3 {
		t.Fatalf("RecordCount = %d, want 3", count)
	}

	cp, err := st.Checkpoint(ctx)
	if err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}
	if !cp.LastCompletedDate.Equal(day(t, "2025-01-03")) {
		t.Fatalf("LastCompletedDate = %s, want 2025-01-03", cp.LastCompletedDate)
	}

	runs, err := st.RecentRuns(ctx, 1)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != store.RunStatusCompleted {
		t.Fatalf("runs = %+v, want one completed run", runs)
	}
}

func TestRunSkipsCompletedDates(t *testing.T) {
	c, st, fetcher := newCollector(t)
	for _, d := range []string{"2025-01-01", "2025-01-02"} {
		seedDay(t, fetcher, d, "Alpha")
	}
	ctx := context.Background()

	date := day(t, "2025-01-01")
	if _, err := st.AppendDay(ctx, date, fetcher.records["2025-01-01"]); err != nil {
		t.Fatalf("seed AppendDay: %v", err)
	}

	summary, err := c.Run(ctx, date, day(t, "2025-01-02"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Skipped != 1 || summary.Completed != 1 {
		t.Fatalf("summary = %+v, want 1 skipped 1 completed", summary)
	}
	if fetcher.callCount() != 1 {
		t.Fatalf("fetcher called %d times, want 1", fetcher.callCount())
	}
}

func TestRunResumesAfterCheckpoint(t *testing.T) {
	c, st, fetcher := newCollector(t)
	seedDay(t, fetcher, "2025-01-02", "Alpha")
	seedDay(t, fetcher, "2025-01-03", "Alpha")
	ctx := context.Background()

	first := day(t, "2025-01-01")
	if _, err := st.AppendDay(ctx, first, []boxoffice.DailyRecord{{Date: first, Title: "Alpha", DailyGross: 1}}); err != nil {
		t.Fatalf("seed AppendDay: %v", err)
	}

	summary, err := c.Run(ctx, time.Time{}, day(t, "2025-01-03"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Completed != 2 || summary.Skipped != 0 {
		t.Fatalf("summary = %+v, want the two post-checkpoint dates", summary)
	}
}

func TestRunRequiresStartWithoutCheckpoint(t *testing.T) {
	c, _, _ := newCollector(t)
	if _, err := c.Run(context.Background(), time.Time{}, day(t, "2025-01-03")); err == nil {
		t.Fatal("expected error when resuming with no checkpoint")
	}
}

func TestRunCircuitBreakerTrips(t *testing.T) {
	c, st, fetcher := newCollector(t, testsupport.WithFailureThreshold(2))
	for _, d := range []string{"2025-01-01", "2025-01-02", "2025-01-03", "2025-01-04"} {
		fetcher.fail[d] = true
	}
	ctx := context.Background()

	_, err := c.Run(ctx, day(t, "2025-01-01"), day(t, "2025-01-04"))
	if !errors.Is(err, runerr.ErrSystemicBlock) {
		t.Fatalf("Run err = %v, want ErrSystemicBlock", err)
	}
	// Threshold 2 means the third consecutive failure trips.
	if fetcher.callCount() != 3 {
		t.Fatalf("fetcher called %d times, want 3", fetcher.callCount())
	}

	// Completed dates before the halt stay resumable.
	cp, cpErr := st.Checkpoint(ctx)
	if cpErr != nil {
		t.Fatalf("Checkpoint: %v", cpErr)
	}
	if cp.ConsecutiveFailures != 3 {
		t.Fatalf("ConsecutiveFailures = %d, want 3", cp.ConsecutiveFailures)
	}
}

func TestRunSuccessResetsBreakerStreak(t *testing.T) {
	c, _, fetcher := newCollector(t, testsupport.WithFailureThreshold(2))
	fetcher.fail["2025-01-01"] = true
	fetcher.fail["2025-01-02"] = true
	seedDay(t, fetcher, "2025-01-03", "Alpha")
	fetcher.fail["2025-01-04"] = true
	fetcher.fail["2025-01-05"] = true
	seedDay(t, fetcher, "2025-01-06", "Alpha")

	summary, err := c.Run(context.Background(), day(t, "2025-01-01"), day(t, "2025-01-06"))
	if err != nil {
		t.Fatalf("Run: %v, interleaved successes must keep the breaker closed", err)
	}
	if summary.Completed != 2 || summary.Failed != 4 {
		t.Fatalf("summary = %+v, want 2 completed 4 failed", summary)
	}
}

func TestRunCancelledBetweenDates(t *testing.T) {
	c, st, fetcher := newCollector(t)
	seedDay(t, fetcher, "2025-01-01", "Alpha")
	seedDay(t, fetcher, "2025-01-02", "Alpha")
	seedDay(t, fetcher, "2025-01-03", "Alpha")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fetcher.onFetch = func(date time.Time) {
		if date.Equal(day(t, "2025-01-02")) {
			cancel()
		}
	}

	_, err := c.Run(ctx, day(t, "2025-01-01"), day(t, "2025-01-03"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run err = %v, want context.Canceled", err)
	}

	// The first date completed before cancellation and must stay stored.
	background := context.Background()
	has, hasErr := st.HasDay(background, day(t, "2025-01-01"))
	if hasErr != nil {
		t.Fatalf("HasDay: %v", hasErr)
	}
	if !has {
		t.Fatal("completed date lost after cancellation")
	}
	has, hasErr = st.HasDay(background, day(t, "2025-01-03"))
	if hasErr != nil {
		t.Fatalf("HasDay: %v", hasErr)
	}
	if has {
		t.Fatal("uncollected date marked complete after cancellation")
	}

	runs, runsErr := st.RecentRuns(background, 1)
	if runsErr != nil {
		t.Fatalf("RecentRuns: %v", runsErr)
	}
	if len(runs) != 1 || runs[0].Status != store.RunStatusAborted {
		t.Fatalf("runs = %+v, want one aborted run", runs)
	}
}

func TestFinalizeAggregatesMatchedMovies(t *testing.T) {
	c, st, _ := newCollector(t)
	ctx := context.Background()

	release := day(t, "2025-01-03")
	if err := st.ReplaceCatalog(ctx, []catalog.MovieIdentity{
		{MovieID: "tt0100", CanonicalTitle: "Alpha", SourceURL: "https://example.com/rl1/", ReleaseDate: release},
	}); err != nil {
		t.Fatalf("ReplaceCatalog: %v", err)
	}

	for offset := 0; offset < 3; offset++ {
		date := release.AddDate(0, 0, offset)
		records := []boxoffice.DailyRecord{
			{Date: date, Title: "Alpha", SourceURL: "https://example.com/rl1/", DailyGross: 1_000_000},
			{Date: date, Title: "Nowhere Man", DailyGross: 50_000},
		}
		if _, err := st.AppendDay(ctx, date, records); err != nil {
			t.Fatalf("AppendDay: %v", err)
		}
	}

	summary, err := c.Finalize(ctx)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if summary.Matched != 3 || summary.Unmatched != 3 {
		t.Fatalf("summary = %+v, want 3 matched 3 unmatched", summary)
	}
	if summary.Movies != 1 {
		t.Fatalf("Movies = %d, want 1", summary.Movies)
	}

	features, err := st.Features(ctx)
	if err != nil {
		t.Fatalf("Features: %v", err)
	}
	if len(features) != 1 {
		t.Fatalf("features = %d rows, want 1", len(features))
	}
	vector := features[0].Vector
	if vector.ObservedDays != 3 {
		t.Fatalf("ObservedDays = %d, want 3", vector.ObservedDays)
	}
	if vector.Opening3DayGross == nil || *vector.Opening3DayGross != 3_000_000 {
		t.Fatalf("Opening3DayGross = %v, want 3000000", vector.Opening3DayGross)
	}
	if vector.Week1MeanGross != nil {
		t.Fatal("incomplete week must stay null")
	}
}
