package boxoffice_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"marquee/internal/boxoffice"
	"marquee/internal/config"
	"marquee/internal/logging"
	"marquee/internal/runerr"
)

func newTestFetcher(baseURL string) *boxoffice.Fetcher {
	cfg := config.Default()
	cfg.Source.BaseURL = baseURL
	cfg.Source.RequestDelaySeconds = 0
	cfg.Source.MaxAttempts = 3
	cfg.Source.TimeoutSeconds = 5
	return boxoffice.NewFetcher(&cfg, logging.NewNop(), boxoffice.WithBackoff(time.Millisecond, 10*time.Millisecond))
}

func TestFetchDaySuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/date/2025-01-10/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(datePageHTML))
	}))
	defer server.Close()

	fetcher := newTestFetcher(server.URL)
	records, drops, err := fetcher.FetchDay(context.Background(), time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("FetchDay failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if len(drops) != 2 {
		t.Fatalf("expected 2 drops, got %d", len(drops))
	}
}

func TestFetchDayRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(datePageHTML))
	}))
	defer server.Close()

	fetcher := newTestFetcher(server.URL)
	records, _, err := fetcher.FetchDay(context.Background(), time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("FetchDay failed after retries: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestFetchDayRetriesClientErrorStatuses(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(datePageHTML))
	}))
	defer server.Close()

	fetcher := newTestFetcher(server.URL)
	records, _, err := fetcher.FetchDay(context.Background(), time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("FetchDay failed after retries: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestFetchDayExhaustedRetriesReturnsFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	fetcher := newTestFetcher(server.URL)
	_, _, err := fetcher.FetchDay(context.Background(), time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if !errors.Is(err, runerr.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
}

func TestFetchDayHonorsCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := newTestFetcher(server.URL)
	_, _, err := fetcher.FetchDay(ctx, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
