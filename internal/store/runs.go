package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run statuses recorded in collection_runs.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
	RunStatusAborted   = "aborted"
)

// Run is one collector invocation, kept for operational history.
type Run struct {
	ID             string
	StartedAt      time.Time
	FinishedAt     time.Time // zero while the run is live
	Strategy       string
	DatesCompleted int
	DatesFailed    int
	Status         string
}

// CreateRun registers a new collection run and returns its identifier.
func (s *Store) CreateRun(ctx context.Context, strategy string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collection_runs (id, started_at, strategy, status)
		VALUES (?, ?, ?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339), strategy, RunStatusRunning)
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}
	return id, nil
}

// FinishRun records the outcome of a run.
func (s *Store) FinishRun(ctx context.Context, id, status string, completed, failed int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE collection_runs
		SET finished_at = ?, status = ?, dates_completed = ?, dates_failed = ?
		WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), status, completed, failed, id)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("finish run %s: run not found", id)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, strategy, dates_completed, dates_failed, status
		FROM collection_runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			startedAt  string
			finishedAt sql.NullString
		)
		if err := rows.Scan(&run.ID, &startedAt, &finishedAt, &run.Strategy,
			&run.DatesCompleted, &run.DatesFailed, &run.Status); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if stamp, parseErr := time.Parse(time.RFC3339, startedAt); parseErr == nil {
			run.StartedAt = stamp
		}
		if finishedAt.Valid {
			if stamp, parseErr := time.Parse(time.RFC3339, finishedAt.String); parseErr == nil {
				run.FinishedAt = stamp
			}
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
