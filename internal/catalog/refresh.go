package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"marquee/internal/catalog/tmdb"
	"marquee/internal/logging"
)

// Writer persists catalog identities.
type Writer interface {
	UpsertCatalogEntries(ctx context.Context, entries []MovieIdentity) error
}

// TMDB caps discover pagination at 500 pages.
const maxDiscoverPages = 500

// Refresh pulls every movie released in [from, to] from TMDB and upserts the
// resulting identities. Existing entries keep their movie ID, so matches made
// against earlier snapshots stay reproducible.
func Refresh(ctx context.Context, client tmdb.Searcher, writer Writer, from, to time.Time, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "catalog")

	total := 0
	for page := 1; page <= maxDiscoverPages; page++ {
		result, err := client.DiscoverMovies(ctx, from, to, page)
		if err != nil {
			return total, fmt.Errorf("discover page %d: %w", page, err)
		}

		entries := make([]MovieIdentity, 0, len(result.Results))
		for _, movie := range result.Results {
			entries = append(entries, identityFromMovie(movie))
		}
		if len(entries) > 0 {
			if err := writer.UpsertCatalogEntries(ctx, entries); err != nil {
				return total, fmt.Errorf("upsert page %d: %w", page, err)
			}
			total += len(entries)
		}

		if page >= result.TotalPages {
			break
		}
	}

	logger.Info("catalog refreshed",
		logging.String("from", from.Format("2006-01-02")),
		logging.String("to", to.Format("2006-01-02")),
		logging.Int("entries", total))
	return total, nil
}

func identityFromMovie(movie tmdb.Movie) MovieIdentity {
	identity := MovieIdentity{
		MovieID:        "tmdb-" + strconv.FormatInt(movie.ID, 10),
		CanonicalTitle: movie.Title,
	}
	if movie.ReleaseDate != "" {
		if parsed, err := time.Parse("2006-01-02", movie.ReleaseDate); err == nil {
			identity.ReleaseDate = parsed
		}
	}
	return identity
}
