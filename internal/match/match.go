package match

import (
	"time"

	"marquee/internal/boxoffice"
	"marquee/internal/catalog"
	"marquee/internal/textutil"
)

// Confidence grades how a record was resolved to a catalog identity.
type Confidence string

const (
	ConfidenceExact     Confidence = "exact"
	ConfidenceFuzzy     Confidence = "fuzzy"
	ConfidenceUnmatched Confidence = "unmatched"
)

// Method names for audit logging.
const (
	MethodSourceURL   = "source_url"
	MethodTitleWindow = "title_window"
	MethodTieBreak    = "title_window_tiebreak"
	MethodNone        = "none"
)

// Options configures fuzzy resolution.
type Options struct {
	// ReleaseWindowDays bounds how far a candidate's release date may sit
	// from the record's estimated release date.
	ReleaseWindowDays int
}

// Result is the outcome of resolving one record against a catalog snapshot.
// Results are recomputed on demand and never persisted: they are a pure
// function of (record, snapshot), so replay stays safe as the catalog grows.
type Result struct {
	RecordKey  string
	MovieID    string
	Confidence Confidence
	Method     string
	// Ambiguous marks a fuzzy result that was tie-broken between several
	// window candidates.
	Ambiguous bool
}

// Match resolves a record to a canonical movie identity. Resolution order:
// exact source-URL match, then unique fuzzy title match inside the release
// window, then deterministic tie-break among multiple window candidates by
// closest release date (movie ID breaks residual ties). Records that resolve
// to nothing stay in the raw store for audit but are excluded from
// aggregation.
func Match(rec boxoffice.DailyRecord, snap *catalog.Snapshot, opts Options) Result {
	result := Result{
		RecordKey:  rec.Key(),
		Confidence: ConfidenceUnmatched,
		Method:     MethodNone,
	}

	if rec.SourceURL != "" {
		if identity, ok := snap.ByURL(rec.SourceURL); ok {
			result.MovieID = identity.MovieID
			result.Confidence = ConfidenceExact
			result.Method = MethodSourceURL
			return result
		}
	}

	estimated := rec.EstimatedRelease()
	window := time.Duration(opts.ReleaseWindowDays) * 24 * time.Hour

	var inWindow []catalog.MovieIdentity
	for _, candidate := range snap.ListCandidates(textutil.NormalizeTitle(rec.Title)) {
		if candidate.ReleaseDate.IsZero() {
			continue
		}
		if absDuration(candidate.ReleaseDate.Sub(estimated)) <= window {
			inWindow = append(inWindow, candidate)
		}
	}

	switch len(inWindow) {
	case 0:
		return result
	case 1:
		result.MovieID = inWindow[0].MovieID
		result.Confidence = ConfidenceFuzzy
		result.Method = MethodTitleWindow
		return result
	}

	// Candidate lists arrive ordered by movie ID, so equal distances always
	// break the same way.
	best := inWindow[0]
	bestDistance := absDuration(best.ReleaseDate.Sub(estimated))
	for _, candidate := range inWindow[1:] {
		distance := absDuration(candidate.ReleaseDate.Sub(estimated))
		if distance < bestDistance {
			best = candidate
			bestDistance = distance
		}
	}

	result.MovieID = best.MovieID
	result.Confidence = ConfidenceFuzzy
	result.Method = MethodTieBreak
	result.Ambiguous = true
	return result
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
