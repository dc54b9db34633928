package boxoffice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"marquee/internal/config"
	"marquee/internal/logging"
	"marquee/internal/runerr"
)

// Backoff bounds for retried date fetches.
const (
	initialBackoff = 2 * time.Second
	maxBackoff     = 30 * time.Second
)

// Fetcher performs one rate-limited retrieval per calendar date. The external
// source is blocking-sensitive, so requests are strictly sequential: a
// minimum inter-request delay is enforced regardless of outcome and the
// Fetcher is not safe for concurrent use.
type Fetcher struct {
	client      *http.Client
	baseURL     string
	userAgent   string
	minInterval time.Duration
	maxAttempts int
	logger      *slog.Logger

	backoff    time.Duration
	maxBackoff time.Duration

	lastRequest time.Time
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithBackoff overrides the retry backoff bounds.
func WithBackoff(initial, max time.Duration) Option {
	return func(f *Fetcher) {
		f.backoff = initial
		f.maxBackoff = max
	}
}

// NewFetcher builds a Fetcher from source configuration.
func NewFetcher(cfg *config.Config, logger *slog.Logger, opts ...Option) *Fetcher {
	fetcher := &Fetcher{
		client:      &http.Client{Timeout: time.Duration(cfg.Source.TimeoutSeconds) * time.Second},
		baseURL:     cfg.Source.BaseURL,
		userAgent:   cfg.Source.UserAgent,
		minInterval: time.Duration(cfg.Source.RequestDelaySeconds) * time.Second,
		maxAttempts: cfg.Source.MaxAttempts,
		backoff:     initialBackoff,
		maxBackoff:  maxBackoff,
		logger:      logging.NewComponentLogger(logger, "fetcher"),
	}
	for _, opt := range opts {
		opt(fetcher)
	}
	return fetcher
}

// BaseURL returns the configured source base URL.
func (f *Fetcher) BaseURL() string { return f.baseURL }

// FetchDay retrieves and parses the date page for one calendar date. On
// transient failure it retries with exponential backoff up to the configured
// attempt bound, then returns an error tagged runerr.ErrFetch. A failed date
// is never fatal to the overall run.
func (f *Fetcher) FetchDay(ctx context.Context, date time.Time) ([]DailyRecord, []RowDrop, error) {
	url := fmt.Sprintf("%s/date/%s/", f.baseURL, date.Format(DateLayout))

	backoff := f.backoff
	var lastErr error
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		if err := f.pace(ctx); err != nil {
			return nil, nil, err
		}

		records, drops, err := f.fetchOnce(ctx, date, url)
		if err == nil {
			return records, drops, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		if !isRetriable(err) {
			break
		}
		f.logger.Warn("date fetch failed, retrying",
			logging.Date(date),
			logging.Int(logging.FieldAttempt, attempt),
			logging.Duration("backoff", backoff),
			logging.Error(err),
		)
		if err := sleepWithContext(ctx, backoff); err != nil {
			return nil, nil, err
		}
		backoff *= 2
		if backoff > f.maxBackoff {
			backoff = f.maxBackoff
		}
	}

	return nil, nil, runerr.Wrap(runerr.ErrFetch, "fetcher", date.Format(DateLayout), lastErr)
}

func (f *Fetcher) fetchOnce(ctx context.Context, date time.Time, url string) ([]DailyRecord, []RowDrop, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	f.lastRequest = time.Now()
	if err != nil {
		return nil, nil, fmt.Errorf("request date page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused across retries.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, nil, &httpStatusError{status: resp.Status}
	}

	return ParseDatePage(date, f.baseURL, resp.Body)
}

// pace blocks until the minimum inter-request interval has elapsed since the
// previous request, bounding total request rate against the source.
func (f *Fetcher) pace(ctx context.Context) error {
	if f.lastRequest.IsZero() {
		return nil
	}
	remaining := f.minInterval - time.Since(f.lastRequest)
	return sleepWithContext(ctx, remaining)
}

// sleepWithContext blocks for the given duration, returning early if the
// context is cancelled.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// httpStatusError marks a non-2xx response from the source. All non-2xx
// responses are treated as transient and retried within the attempt budget.
type httpStatusError struct {
	status string
}

func (e *httpStatusError) Error() string {
	return "source returned " + e.status
}

// isRetriable reports whether err represents a transient condition that
// warrants an automatic retry (rate limits, timeouts, connection errors,
// non-2xx responses, malformed pages).
func isRetriable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	message := strings.ToLower(err.Error())
	if strings.Contains(message, "429") || strings.Contains(message, "rate limit") {
		return true
	}
	for _, token := range []string{
		"500", "502", "503", "504",
		"timeout",
		"deadline exceeded",
		"connection reset",
		"connection refused",
		"temporary failure",
		"no table",
	} {
		if strings.Contains(message, token) {
			return true
		}
	}
	return false
}
