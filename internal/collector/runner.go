package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"marquee/internal/boxoffice"
	"marquee/internal/config"
	"marquee/internal/logging"
	"marquee/internal/runerr"
	"marquee/internal/store"
)

// DayFetcher retrieves and parses one date page.
type DayFetcher interface {
	FetchDay(ctx context.Context, date time.Time) ([]boxoffice.DailyRecord, []boxoffice.RowDrop, error)
}

// Collector drives the sequential fetch loop over a planned date range.
type Collector struct {
	cfg     *config.Config
	store   *store.Store
	fetcher DayFetcher
	logger  *slog.Logger
	lock    *flock.Flock
}

// Summary reports what a run accomplished.
type Summary struct {
	RunID     string
	Strategy  string
	Planned   int
	Completed int
	Skipped   int // already complete before this run
	Failed    int
}

// New constructs a collector. The lock file lives next to the database so two
// processes never interleave writes.
func New(cfg *config.Config, st *store.Store, fetcher DayFetcher, logger *slog.Logger) (*Collector, error) {
	if cfg == nil || st == nil || fetcher == nil {
		return nil, errors.New("collector requires config, store, and fetcher")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Collector{
		cfg:     cfg,
		store:   st,
		fetcher: fetcher,
		logger:  logging.NewComponentLogger(logger, "collector"),
		lock:    flock.New(filepath.Join(cfg.Paths.DataDir, "collect.lock")),
	}, nil
}

// Run collects every planned date in [from, to]. A zero from resumes at the
// day after the checkpoint. Dates that already completed a cycle are skipped.
// The loop checks cancellation between dates only, so an interrupted run
// always leaves whole-date state behind.
func (c *Collector) Run(ctx context.Context, from, to time.Time) (Summary, error) {
	var summary Summary

	ok, err := c.lock.TryLock()
	if err != nil {
		return summary, fmt.Errorf("acquire collect lock: %w", err)
	}
	if !ok {
		return summary, errors.New("another collection run is already in progress")
	}
	defer func() { _ = c.lock.Unlock() }()

	planner, err := PlannerFor(c.cfg)
	if err != nil {
		return summary, err
	}
	summary.Strategy = planner.Name()

	cp, err := c.store.Checkpoint(ctx)
	if err != nil {
		return summary, err
	}
	if from.IsZero() {
		if cp.LastCompletedDate.IsZero() {
			return summary, errors.New("no checkpoint to resume from: pass an explicit start date")
		}
		from = cp.LastCompletedDate.AddDate(0, 0, 1)
	}
	if to.IsZero() || to.Before(from) {
		return summary, fmt.Errorf("invalid date range %s..%s",
			from.Format(boxoffice.DateLayout), to.Format(boxoffice.DateLayout))
	}

	dates := planner.Dates(from, to)
	summary.Planned = len(dates)

	runID, err := c.store.CreateRun(ctx, planner.Name())
	if err != nil {
		return summary, err
	}
	summary.RunID = runID

	c.logger.Info("collection run started",
		logging.String("run_id", runID),
		logging.String("strategy", planner.Name()),
		logging.Int("planned_dates", len(dates)),
		logging.String("from", from.Format(boxoffice.DateLayout)),
		logging.String("to", to.Format(boxoffice.DateLayout)))

	for _, date := range dates {
		if ctx.Err() != nil {
			c.finishRun(runID, store.RunStatusAborted, summary)
			return summary, ctx.Err()
		}

		done, err := c.store.HasDay(ctx, date)
		if err != nil {
			c.finishRun(runID, store.RunStatusFailed, summary)
			return summary, err
		}
		if done {
			summary.Skipped++
			continue
		}

		failures, err := c.collectDate(ctx, date, &summary)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.finishRun(runID, store.RunStatusAborted, summary)
				return summary, err
			}
			if failures == 0 {
				c.finishRun(runID, store.RunStatusFailed, summary)
				return summary, err
			}
			if failures > c.cfg.Collection.FailureThreshold {
				c.finishRun(runID, store.RunStatusFailed, summary)
				return summary, runerr.Wrap(runerr.ErrSystemicBlock, "collector",
					fmt.Sprintf("%d consecutive date failures", failures), err)
			}
		}
	}

	c.finishRun(runID, store.RunStatusCompleted, summary)
	c.logger.Info("collection run finished",
		logging.String("run_id", runID),
		logging.Int("completed", summary.Completed),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed))
	return summary, nil
}

// collectDate runs one full fetch→parse→append cycle. A fetch failure marks
// the date skipped so resume never revisits it; the skip bumps the persisted
// failure streak, which is returned alongside the error for breaker
// evaluation. A zero streak with a non-nil error means the store itself
// failed and the run cannot continue.
func (c *Collector) collectDate(ctx context.Context, date time.Time, summary *Summary) (int, error) {
	records, drops, err := c.fetcher.FetchDay(ctx, date)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return 0, err
		}
		c.logger.Warn("date fetch failed",
			logging.Date(date),
			logging.Error(err))
		failures, skipErr := c.store.MarkSkipped(ctx, date, err.Error())
		if skipErr != nil {
			return 0, skipErr
		}
		summary.Failed++
		return failures, err
	}

	for _, drop := range drops {
		c.logger.Warn("row dropped",
			logging.Date(date),
			logging.Int("row", drop.Index),
			logging.String(logging.FieldReason, drop.Reason))
	}

	result, err := c.store.AppendDay(ctx, date, records)
	if err != nil {
		return 0, err
	}
	for _, key := range result.Duplicates {
		c.logger.Warn("duplicate record key skipped",
			logging.Date(date),
			logging.String("record_key", key))
	}
	c.logger.Info("date stored",
		logging.Date(date),
		logging.Int("records", result.Inserted))
	summary.Completed++
	return 0, nil
}

func (c *Collector) finishRun(runID, status string, summary Summary) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.store.FinishRun(ctx, runID, status, summary.Completed, summary.Failed); err != nil {
		c.logger.Warn("failed to record run outcome",
			logging.String("run_id", runID),
			logging.Error(err))
	}
}
