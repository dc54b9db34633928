// Package boxoffice fetches and parses per-day box-office report pages from
// the external reporting source. Fetching is strictly sequential and
// rate-limited; parsing is tolerant of missing optional columns.
package boxoffice
