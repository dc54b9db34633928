package catalog

import (
	"sort"
	"time"

	"marquee/internal/textutil"
)

// MovieIdentity is the catalog's authoritative record for a movie, used as
// the join target for raw daily records. The pipeline only reads identities;
// the catalog collaborator owns them.
type MovieIdentity struct {
	MovieID        string
	CanonicalTitle string
	SourceURL      string
	ReleaseDate    time.Time // zero when unknown
}

// Snapshot is an immutable point-in-time view of the catalog. Matching runs
// against a snapshot rather than a live lookup so that replaying the same
// inputs always resolves identically, even as the catalog grows between runs.
type Snapshot struct {
	entries     []MovieIdentity
	byNormTitle map[string][]MovieIdentity
	byURL       map[string]MovieIdentity
	byID        map[string]MovieIdentity
}

// NewSnapshot indexes the provided identities. Candidate lists are ordered by
// movie ID so lookups are deterministic regardless of input order.
func NewSnapshot(entries []MovieIdentity) *Snapshot {
	snap := &Snapshot{
		entries:     append([]MovieIdentity(nil), entries...),
		byNormTitle: make(map[string][]MovieIdentity, len(entries)),
		byURL:       make(map[string]MovieIdentity, len(entries)),
		byID:        make(map[string]MovieIdentity, len(entries)),
	}
	for _, entry := range snap.entries {
		if _, exists := snap.byID[entry.MovieID]; !exists {
			snap.byID[entry.MovieID] = entry
		}
		norm := textutil.NormalizeTitle(entry.CanonicalTitle)
		if norm != "" {
			snap.byNormTitle[norm] = append(snap.byNormTitle[norm], entry)
		}
		if entry.SourceURL != "" {
			if _, exists := snap.byURL[entry.SourceURL]; !exists {
				snap.byURL[entry.SourceURL] = entry
			}
		}
	}
	for _, candidates := range snap.byNormTitle {
		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].MovieID < candidates[j].MovieID
		})
	}
	return snap
}

// ListCandidates returns the identities whose normalized canonical title
// equals normalizedTitle, ordered by movie ID.
func (s *Snapshot) ListCandidates(normalizedTitle string) []MovieIdentity {
	if s == nil || normalizedTitle == "" {
		return nil
	}
	return s.byNormTitle[normalizedTitle]
}

// ByURL returns the identity registered under the given source URL.
func (s *Snapshot) ByURL(url string) (MovieIdentity, bool) {
	if s == nil || url == "" {
		return MovieIdentity{}, false
	}
	identity, ok := s.byURL[url]
	return identity, ok
}

// ByID returns the identity with the given movie ID.
func (s *Snapshot) ByID(movieID string) (MovieIdentity, bool) {
	if s == nil || movieID == "" {
		return MovieIdentity{}, false
	}
	identity, ok := s.byID[movieID]
	return identity, ok
}

// Len returns the number of identities in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}
