// Package collector orchestrates collection runs: planning the date range,
// driving the sequential fetch loop with checkpoint resume and a
// consecutive-failure circuit breaker, and running the parallel
// match-and-aggregate pass once raw records are in place. A flock guard
// keeps concurrent runs from interleaving writes.
package collector
