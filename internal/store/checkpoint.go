package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"marquee/internal/boxoffice"
	"marquee/internal/runerr"
)

// Checkpoint captures collection progress: the newest fully completed date
// and the current consecutive-failure streak. LastCompletedDate is zero when
// no date has completed yet.
type Checkpoint struct {
	LastCompletedDate   time.Time
	ConsecutiveFailures int
}

// Checkpoint reads the persisted collection checkpoint. An unreadable row is
// classified runerr.ErrCheckpointCorrupt: the operator must pass an explicit
// resume date or restart the range.
func (s *Store) Checkpoint(ctx context.Context) (Checkpoint, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT last_completed_date, consecutive_failures FROM checkpoint WHERE id = 1`,
	)

	var (
		dateStr  sql.NullString
		failures int
	)
	if err := row.Scan(&dateStr, &failures); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Checkpoint{}, nil
		}
		return Checkpoint{}, runerr.Wrap(runerr.ErrCheckpointCorrupt, "store", "read checkpoint", err)
	}

	cp := Checkpoint{ConsecutiveFailures: failures}
	if dateStr.Valid && dateStr.String != "" {
		parsed, err := time.Parse(boxoffice.DateLayout, dateStr.String)
		if err != nil {
			return Checkpoint{}, runerr.Wrap(runerr.ErrCheckpointCorrupt, "store", "parse checkpoint date", err)
		}
		cp.LastCompletedDate = parsed
	}
	if failures < 0 {
		return Checkpoint{}, runerr.Wrap(runerr.ErrCheckpointCorrupt, "store", "negative failure count", nil)
	}
	return cp, nil
}

// SaveFailureCount persists the consecutive-failure streak without touching
// the completed-date watermark.
func (s *Store) SaveFailureCount(ctx context.Context, failures int) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO checkpoint (id, last_completed_date, consecutive_failures, updated_at)
         VALUES (1, NULL, ?, ?)
         ON CONFLICT (id) DO UPDATE SET
             consecutive_failures = excluded.consecutive_failures,
             updated_at = excluded.updated_at`,
		failures,
		time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("save failure count: %w", err)
	}
	return nil
}

// failureMode selects how a completed date affects the consecutive-failure
// streak when the checkpoint advances.
type failureMode int

const (
	// resetFailureStreak zeroes the streak: the date stored successfully.
	resetFailureStreak failureMode = iota
	// bumpFailureStreak increments the streak: the date was skipped after
	// exhausted retries.
	bumpFailureStreak
)

// advanceCheckpoint moves the completed-date watermark forward within the
// caller's transaction and applies the failure-streak mutation in the same
// statement. The watermark only ever advances: appending an older date
// (backfill) leaves it untouched.
func advanceCheckpoint(ctx context.Context, tx *sql.Tx, dateStr string, mode failureMode) error {
	insertFailures := 0
	failureClause := "0"
	if mode == bumpFailureStreak {
		insertFailures = 1
		failureClause = "checkpoint.consecutive_failures + 1"
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO checkpoint (id, last_completed_date, consecutive_failures, updated_at)
         VALUES (1, ?, ?, ?)
         ON CONFLICT (id) DO UPDATE SET
             last_completed_date = CASE
                 WHEN checkpoint.last_completed_date IS NULL OR excluded.last_completed_date > checkpoint.last_completed_date
                 THEN excluded.last_completed_date
                 ELSE checkpoint.last_completed_date
             END,
             consecutive_failures = `+failureClause+`,
             updated_at = excluded.updated_at`,
		dateStr,
		insertFailures,
		time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("advance checkpoint: %w", err)
	}
	return nil
}
