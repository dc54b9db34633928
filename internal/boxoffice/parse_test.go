package boxoffice_test

import (
	"strings"
	"testing"
	"time"

	"marquee/internal/boxoffice"
)

const datePageHTML = `<html><body>
<table>
<tr><th>TD</th><th>YD</th><th>Release</th><th>Daily</th><th>%± YD</th><th>%± LW</th><th>Theaters</th><th>Avg</th><th>To Date</th><th>Days</th><th>Distributor</th></tr>
<tr>
<td>1</td><td>1</td><td><a href="/release/rl100/">Midnight Signal</a></td>
<td>$10,000,000</td><td>+12.5%</td><td>-40.2%</td><td>3,000</td><td>$3,333</td><td>$54,000,000</td><td>8</td><td>Apex Films</td>
</tr>
<tr>
<td>2</td><td>3</td><td>Orchard Lane</td>
<td>$425,118</td><td>-</td><td>n/a</td><td>-</td><td>-</td><td>$1,204,330</td><td>3</td><td></td>
</tr>
<tr>
<td>3</td><td>2</td><td><a href="/release/rl200/">Hollow Crown</a></td>
<td>-</td><td>-</td><td>-</td><td>120</td><td>-</td><td>$9,300,100</td><td>45</td><td>Meridian</td>
</tr>
<tr>
<td>4</td><td>4</td><td></td>
<td>$5,000</td><td>-</td><td>-</td><td>10</td><td>$500</td><td>$80,000</td><td>12</td><td></td>
</tr>
</table>
</body></html>`

func TestParseDatePage(t *testing.T) {
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	records, drops, err := boxoffice.ParseDatePage(date, "https://example.com", strings.NewReader(datePageHTML))
	if err != nil {
		t.Fatalf("ParseDatePage failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.Title != "Midnight Signal" {
		t.Fatalf("unexpected title %q", first.Title)
	}
	if first.SourceURL != "https://example.com/release/rl100/" {
		t.Fatalf("unexpected source url %q", first.SourceURL)
	}
	if first.DailyGross != 10_000_000 {
		t.Fatalf("unexpected daily gross %f", first.DailyGross)
	}
	if first.YDChangePct == nil || *first.YDChangePct != 12.5 {
		t.Fatalf("unexpected yd change %v", first.YDChangePct)
	}
	if first.LWChangePct == nil || *first.LWChangePct != -40.2 {
		t.Fatalf("unexpected lw change %v", first.LWChangePct)
	}
	if first.Theaters == nil || *first.Theaters != 3000 {
		t.Fatalf("unexpected theaters %v", first.Theaters)
	}
	if first.DaysInRelease == nil || *first.DaysInRelease != 8 {
		t.Fatalf("unexpected days in release %v", first.DaysInRelease)
	}
	if first.Distributor != "Apex Films" {
		t.Fatalf("unexpected distributor %q", first.Distributor)
	}

	// Row with dashes keeps mandatory fields and nils the rest.
	second := records[1]
	if second.SourceURL != "" {
		t.Fatalf("expected empty source url, got %q", second.SourceURL)
	}
	if second.YDChangePct != nil || second.LWChangePct != nil || second.Theaters != nil || second.PerTheaterAvg != nil {
		t.Fatal("expected optional fields to be nil")
	}
	if second.CumulativeGross == nil || *second.CumulativeGross != 1_204_330 {
		t.Fatalf("unexpected cumulative gross %v", second.CumulativeGross)
	}

	if len(drops) != 2 {
		t.Fatalf("expected 2 dropped rows, got %d", len(drops))
	}
	reasons := map[string]bool{}
	for _, d := range drops {
		reasons[d.Reason] = true
	}
	if !reasons[boxoffice.DropMissingGross] || !reasons[boxoffice.DropMissingTitle] {
		t.Fatalf("unexpected drop reasons: %#v", drops)
	}
}

func TestParseDatePageResolvesRelativeHrefs(t *testing.T) {
	page := `<html><body><table>
<tr><th>TD</th><th>YD</th><th>Release</th><th>Daily</th><th>%± YD</th><th>%± LW</th><th>Theaters</th><th>Avg</th><th>To Date</th></tr>
<tr><td>1</td><td>1</td><td><a href="release/rl300/">Harbor Lights</a></td>
<td>$250,000</td><td>-</td><td>-</td><td>400</td><td>$625</td><td>$900,000</td></tr>
</table></body></html>`

	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	records, _, err := boxoffice.ParseDatePage(date, "https://example.com", strings.NewReader(page))
	if err != nil {
		t.Fatalf("ParseDatePage failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if got := records[0].SourceURL; got != "https://example.com/release/rl300/" {
		t.Fatalf("unexpected source url %q", got)
	}
}

func TestParseDatePageNoTable(t *testing.T) {
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	_, _, err := boxoffice.ParseDatePage(date, "https://example.com", strings.NewReader("<html><body></body></html>"))
	if err == nil {
		t.Fatal("expected error for page without table")
	}
}

func TestRecordKey(t *testing.T) {
	rec := boxoffice.DailyRecord{Title: "The Batman", SourceURL: "https://example.com/release/rl1/"}
	if rec.Key() != "https://example.com/release/rl1/" {
		t.Fatalf("expected url key, got %q", rec.Key())
	}
	rec.SourceURL = ""
	if rec.Key() != "title:thebatman" {
		t.Fatalf("expected normalized title key, got %q", rec.Key())
	}
}

func TestEstimatedRelease(t *testing.T) {
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	days := 8
	rec := boxoffice.DailyRecord{Date: date, DaysInRelease: &days}
	want := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	if got := rec.EstimatedRelease(); !got.Equal(want) {
		t.Fatalf("EstimatedRelease = %s, want %s", got, want)
	}

	rec.DaysInRelease = nil
	if got := rec.EstimatedRelease(); !got.Equal(date) {
		t.Fatalf("expected fallback to record date, got %s", got)
	}
}
