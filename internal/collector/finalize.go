package collector

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"marquee/internal/aggregate"
	"marquee/internal/boxoffice"
	"marquee/internal/logging"
	"marquee/internal/match"
)

// FinalizeSummary reports the aggregation pass outcome.
type FinalizeSummary struct {
	Records   int
	Matched   int
	Unmatched int
	Ambiguous int
	Movies    int
}

// Finalize resolves every stored record against the current catalog snapshot
// and recomputes the feature vector for each matched movie. Grouping is
// single-threaded; the per-movie aggregate+store work fans out across a
// worker pool since movies share no mutable state.
func (c *Collector) Finalize(ctx context.Context) (FinalizeSummary, error) {
	var summary FinalizeSummary

	snap, err := c.store.CatalogSnapshot(ctx)
	if err != nil {
		return summary, err
	}
	records, err := c.store.AllRecords(ctx)
	if err != nil {
		return summary, err
	}
	summary.Records = len(records)

	opts := match.Options{ReleaseWindowDays: c.cfg.Matching.ReleaseWindowDays}
	byMovie := make(map[string][]boxoffice.DailyRecord)
	for _, rec := range records {
		result := match.Match(rec, snap, opts)
		if result.Confidence == match.ConfidenceUnmatched {
			summary.Unmatched++
			c.logger.Debug("record unmatched",
				logging.Date(rec.Date),
				logging.String("record_key", result.RecordKey))
			continue
		}
		if result.Ambiguous {
			summary.Ambiguous++
			c.logger.Warn("ambiguous match tie-broken",
				logging.Date(rec.Date),
				logging.String("record_key", result.RecordKey),
				logging.String(logging.FieldMovieID, result.MovieID))
		}
		summary.Matched++
		byMovie[result.MovieID] = append(byMovie[result.MovieID], rec)
	}
	summary.Movies = len(byMovie)

	movieIDs := make([]string, 0, len(byMovie))
	for id := range byMovie {
		movieIDs = append(movieIDs, id)
	}
	sort.Strings(movieIDs)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.cfg.Collection.Workers)
	for _, movieID := range movieIDs {
		movieID := movieID
		group.Go(func() error {
			identity, _ := snap.ByID(movieID)
			vector := aggregate.Aggregate(identity.ReleaseDate, byMovie[movieID])
			if err := c.store.ReplaceFeatures(groupCtx, movieID, identity.CanonicalTitle, vector); err != nil {
				return err
			}
			c.logger.Debug("features stored",
				logging.String(logging.FieldMovieID, movieID),
				logging.Int("observed_days", vector.ObservedDays))
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return summary, err
	}

	c.logger.Info("aggregation pass finished",
		logging.Int("records", summary.Records),
		logging.Int("matched", summary.Matched),
		logging.Int("unmatched", summary.Unmatched),
		logging.Int("movies", summary.Movies))
	return summary, nil
}
