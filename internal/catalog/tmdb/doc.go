// Package tmdb wraps the TMDB HTTP API endpoints used to refresh the local
// movie catalog.
package tmdb
