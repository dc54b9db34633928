// Package store persists the pipeline's durable state in SQLite: raw daily
// records, per-date completion markers, the resume checkpoint, catalog
// identities, computed feature vectors, and collection run history. Per-date
// writes are transactional so a crash never leaves a date half ingested.
package store
