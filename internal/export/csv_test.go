package export_test

import (
	"encoding/csv"
	"strings"
	"testing"

	"marquee/internal/aggregate"
	"marquee/internal/export"
	"marquee/internal/store"
)

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func TestWriteCSVNullsStayEmpty(t *testing.T) {
	vector := aggregate.FeatureVector{
		ObservedDays:    3,
		OpeningTheaters: intPtr(3000),
		OpeningDayGross: floatPtr(10_000_000),
	}
	rows := []store.FeatureRow{
		{MovieID: "tmdb-1", CanonicalTitle: "Alpha, The", Vector: vector},
	}

	var buf strings.Builder
	if err := export.WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	parsed, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("read back csv: %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("got %d lines, want header + 1 row", len(parsed))
	}

	header := parsed[0]
	record := parsed[1]
	if len(header) != len(record) {
		t.Fatalf("header has %d columns, row has %d", len(header), len(record))
	}

	byName := make(map[string]string, len(header))
	for i, name := range header {
		byName[name] = record[i]
	}
	if byName["movie_id"] != "tmdb-1" {
		t.Fatalf("movie_id = %q", byName["movie_id"])
	}
	if byName["canonical_title"] != "Alpha, The" {
		t.Fatalf("canonical_title = %q, commas must survive quoting", byName["canonical_title"])
	}
	if byName["opening_day_gross"] != "10000000" {
		t.Fatalf("opening_day_gross = %q", byName["opening_day_gross"])
	}
	if byName["week1_mean_gross"] != "" {
		t.Fatalf("week1_mean_gross = %q, want empty for null", byName["week1_mean_gross"])
	}
	if byName["has_week2_data"] != "false" {
		t.Fatalf("has_week2_data = %q", byName["has_week2_data"])
	}
}

func TestHeaderAndRowStayAligned(t *testing.T) {
	row := export.Row(store.FeatureRow{MovieID: "tmdb-1"})
	if len(row) != len(export.Header()) {
		t.Fatalf("row has %d cells, header has %d", len(row), len(export.Header()))
	}
}
