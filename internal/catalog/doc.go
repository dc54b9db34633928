// Package catalog holds canonical movie identities and point-in-time
// snapshots of them for deterministic matching. The tmdb subpackage refreshes
// identities from The Movie Database.
package catalog
