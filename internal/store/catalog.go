package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"marquee/internal/boxoffice"
	"marquee/internal/catalog"
)

// ReplaceCatalog swaps the stored catalog entries for the provided set in one
// transaction.
func (s *Store) ReplaceCatalog(ctx context.Context, entries []catalog.MovieIdentity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin catalog tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_entries`); err != nil {
		return fmt.Errorf("clear catalog: %w", err)
	}
	for _, entry := range entries {
		if err := upsertCatalogEntry(ctx, tx, entry); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog: %w", err)
	}
	return nil
}

// UpsertCatalogEntries merges identities into the stored catalog, replacing
// rows that share a movie ID.
func (s *Store) UpsertCatalogEntries(ctx context.Context, entries []catalog.MovieIdentity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin catalog tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, entry := range entries {
		if err := upsertCatalogEntry(ctx, tx, entry); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog: %w", err)
	}
	return nil
}

// CatalogEntries returns every stored identity ordered by movie ID.
func (s *Store) CatalogEntries(ctx context.Context) ([]catalog.MovieIdentity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT movie_id, canonical_title, source_url, release_date
         FROM catalog_entries ORDER BY movie_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	var entries []catalog.MovieIdentity
	for rows.Next() {
		var (
			movieID    string
			title      string
			sourceURL  sql.NullString
			releaseRaw sql.NullString
		)
		if err := rows.Scan(&movieID, &title, &sourceURL, &releaseRaw); err != nil {
			return nil, fmt.Errorf("scan catalog entry: %w", err)
		}
		entry := catalog.MovieIdentity{
			MovieID:        movieID,
			CanonicalTitle: title,
			SourceURL:      sourceURL.String,
		}
		if releaseRaw.Valid && releaseRaw.String != "" {
			if parsed, err := time.Parse(boxoffice.DateLayout, releaseRaw.String); err == nil {
				entry.ReleaseDate = parsed
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// CatalogSnapshot loads the stored catalog into an indexed snapshot.
func (s *Store) CatalogSnapshot(ctx context.Context) (*catalog.Snapshot, error) {
	entries, err := s.CatalogEntries(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.NewSnapshot(entries), nil
}

func upsertCatalogEntry(ctx context.Context, tx *sql.Tx, entry catalog.MovieIdentity) error {
	var releaseDate any
	if !entry.ReleaseDate.IsZero() {
		releaseDate = entry.ReleaseDate.Format(boxoffice.DateLayout)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO catalog_entries (movie_id, canonical_title, source_url, release_date)
         VALUES (?, ?, ?, ?)
         ON CONFLICT (movie_id) DO UPDATE SET
             canonical_title = excluded.canonical_title,
             source_url = excluded.source_url,
             release_date = excluded.release_date`,
		entry.MovieID,
		entry.CanonicalTitle,
		nullableString(entry.SourceURL),
		releaseDate,
	); err != nil {
		return fmt.Errorf("upsert catalog entry %s: %w", entry.MovieID, err)
	}
	return nil
}
