// Package match resolves raw daily records to canonical catalog identities.
// Matching is a pure function over a catalog snapshot: given the same record
// and the same snapshot it always returns the same result, which keeps
// aggregation replayable without persisting join decisions.
package match
