package store

import "context"

// CorruptCheckpointForTest writes an arbitrary string into the checkpoint date
// column so tests can exercise corruption classification.
func (s *Store) CorruptCheckpointForTest(ctx context.Context, raw string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO checkpoint (id, last_completed_date, consecutive_failures, updated_at)
         VALUES (1, ?, 0, '')
         ON CONFLICT (id) DO UPDATE SET last_completed_date = excluded.last_completed_date`,
		raw)
	return err
}
