package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"marquee/internal/boxoffice"
)

// AppendResult summarizes a per-date append.
type AppendResult struct {
	Inserted   int
	Duplicates []string
}

// AppendDay durably stores all records for one date and marks the date
// completed in a single transaction, advancing the checkpoint when the date
// is newer than the current one. Either everything commits or nothing does.
// Duplicate keys within the batch are skipped, first occurrence wins, and the
// skipped keys are reported so the caller can log them.
func (s *Store) AppendDay(ctx context.Context, date time.Time, records []boxoffice.DailyRecord) (AppendResult, error) {
	var result AppendResult

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin append tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	dateStr := date.Format(boxoffice.DateLayout)
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		key := rec.Key()
		if _, dup := seen[key]; dup {
			result.Duplicates = append(result.Duplicates, key)
			continue
		}
		seen[key] = struct{}{}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO daily_records (
                date, record_key, rank, title, source_url, distributor,
                daily_gross, yd_change_pct, lw_change_pct, theaters,
                per_theater_avg, cumulative_gross, days_in_release
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			dateStr,
			key,
			nullableInt(rec.Rank),
			rec.Title,
			nullableString(rec.SourceURL),
			nullableString(rec.Distributor),
			rec.DailyGross,
			nullableFloat(rec.YDChangePct),
			nullableFloat(rec.LWChangePct),
			nullableInt(rec.Theaters),
			nullableFloat(rec.PerTheaterAvg),
			nullableFloat(rec.CumulativeGross),
			nullableInt(rec.DaysInRelease),
		); err != nil {
			return AppendResult{}, fmt.Errorf("insert record %s/%s: %w", dateStr, key, err)
		}
		result.Inserted++
	}

	if err := markCompleted(ctx, tx, dateStr, result.Inserted, "", false); err != nil {
		return AppendResult{}, err
	}
	if err := advanceCheckpoint(ctx, tx, dateStr, resetFailureStreak); err != nil {
		return AppendResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return AppendResult{}, fmt.Errorf("commit append: %w", err)
	}
	return result, nil
}

// MarkSkipped records a date whose retrieval was abandoned after retries so
// that resume does not re-fetch it. The checkpoint still advances and the
// consecutive-failure streak increments in the same transaction; the new
// streak is returned for circuit-breaker evaluation.
func (s *Store) MarkSkipped(ctx context.Context, date time.Time, reason string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin skip tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	dateStr := date.Format(boxoffice.DateLayout)
	if err := markCompleted(ctx, tx, dateStr, 0, reason, true); err != nil {
		return 0, err
	}
	if err := advanceCheckpoint(ctx, tx, dateStr, bumpFailureStreak); err != nil {
		return 0, err
	}

	var failures int
	if err := tx.QueryRowContext(ctx,
		`SELECT consecutive_failures FROM checkpoint WHERE id = 1`,
	).Scan(&failures); err != nil {
		return 0, fmt.Errorf("read failure streak: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit skip: %w", err)
	}
	return failures, nil
}

// HasDay reports whether a date has already completed its collection cycle
// (stored or explicitly skipped).
func (s *Store) HasDay(ctx context.Context, date time.Time) (bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM completed_dates WHERE date = ?`,
		date.Format(boxoffice.DateLayout),
	)
	var count int
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("check completed date: %w", err)
	}
	return count > 0, nil
}

// RecordsForDay returns the stored records for one date ordered by rank.
func (s *Store) RecordsForDay(ctx context.Context, date time.Time) ([]boxoffice.DailyRecord, error) {
	return s.queryRecords(ctx,
		`SELECT `+recordColumns+` FROM daily_records WHERE date = ? ORDER BY rank, id`,
		date.Format(boxoffice.DateLayout),
	)
}

// AllRecords returns every stored record ordered by date then rank.
func (s *Store) AllRecords(ctx context.Context) ([]boxoffice.DailyRecord, error) {
	return s.queryRecords(ctx,
		`SELECT ` + recordColumns + ` FROM daily_records ORDER BY date, rank, id`,
	)
}

// CompletedDayCount returns how many dates have finished their cycle.
func (s *Store) CompletedDayCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM completed_dates`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count completed dates: %w", err)
	}
	return count, nil
}

// RecordCount returns the number of stored daily records.
func (s *Store) RecordCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM daily_records`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

func markCompleted(ctx context.Context, tx *sql.Tx, dateStr string, recordCount int, reason string, skipped bool) error {
	skippedInt := 0
	if skipped {
		skippedInt = 1
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO completed_dates (date, completed_at, record_count, skipped, skip_reason)
         VALUES (?, ?, ?, ?, ?)`,
		dateStr,
		time.Now().UTC().Format(time.RFC3339Nano),
		recordCount,
		skippedInt,
		nullableString(reason),
	); err != nil {
		return fmt.Errorf("mark date completed: %w", err)
	}
	return nil
}

const recordColumns = "date, rank, title, source_url, distributor, daily_gross, yd_change_pct, lw_change_pct, theaters, per_theater_avg, cumulative_gross, days_in_release"

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]boxoffice.DailyRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []boxoffice.DailyRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (boxoffice.DailyRecord, error) {
	var (
		dateStr     string
		rank        sql.NullInt64
		title       string
		sourceURL   sql.NullString
		distributor sql.NullString
		dailyGross  float64
		ydChange    sql.NullFloat64
		lwChange    sql.NullFloat64
		theaters    sql.NullInt64
		perTheater  sql.NullFloat64
		cumulative  sql.NullFloat64
		daysInRel   sql.NullInt64
	)
	if err := scanner.Scan(
		&dateStr, &rank, &title, &sourceURL, &distributor,
		&dailyGross, &ydChange, &lwChange, &theaters, &perTheater,
		&cumulative, &daysInRel,
	); err != nil {
		return boxoffice.DailyRecord{}, fmt.Errorf("scan record: %w", err)
	}

	date, err := time.Parse(boxoffice.DateLayout, dateStr)
	if err != nil {
		return boxoffice.DailyRecord{}, fmt.Errorf("parse record date %q: %w", dateStr, err)
	}

	return boxoffice.DailyRecord{
		Date:            date,
		Rank:            intPtr(rank),
		Title:           title,
		SourceURL:       sourceURL.String,
		Distributor:     distributor.String,
		DailyGross:      dailyGross,
		YDChangePct:     floatPtr(ydChange),
		LWChangePct:     floatPtr(lwChange),
		Theaters:        intPtr(theaters),
		PerTheaterAvg:   floatPtr(perTheater),
		CumulativeGross: floatPtr(cumulative),
		DaysInRelease:   intPtr(daysInRel),
	}, nil
}
