// Package aggregator runs all source adapters for a query, ranks the merged
// offers by a composite desirability score, and returns a bounded result.
package aggregator

import (
	"context"
	"sort"
	"sync"
	"time"

	"ofertas-bot/filter"
	"ofertas-bot/models"
	"ofertas-bot/sources"
)

// Scoring policy. These are the audit points for how offers are ranked;
// change them here, nowhere else.
const (
	// DefaultRating is assumed for listings without rating data. Unknown is
	// treated as "decent" rather than zero so such listings are not buried.
	DefaultRating = 4.0
	// DefaultReviews is assumed for listings without a review count.
	DefaultReviews = 0

	ratingWeight   = 10.0
	reviewWeight   = 0.05
	priceDivisor   = 1000.0
	discountWeight = 0.1
)

// MaxResults bounds the listing count of every result envelope.
const MaxResults = 15

const resultNote = "Ranking gerado via IA Bot"

// Score computes the composite desirability of a listing: rating and review
// volume push it up, price pushes it down, discounts add a bonus.
func Score(l models.Listing) float64 {
	rating := DefaultRating
	if l.Rating != nil {
		rating = *l.Rating
	}
	reviews := float64(DefaultReviews)
	if l.Reviews != nil {
		reviews = float64(*l.Reviews)
	}

	return rating*ratingWeight +
		reviews*reviewWeight -
		l.CurrentPrice/priceDivisor +
		float64(l.DiscountPercent)*discountWeight
}

// Aggregator fans a query out to every source and assembles the ranked
// result envelope.
type Aggregator struct {
	sources []sources.Source
	filter  *filter.Filter // optional, nil skips filtering
}

// New creates an Aggregator over the given sources. filter may be nil.
func New(srcs []sources.Source, f *filter.Filter) *Aggregator {
	return &Aggregator{sources: srcs, filter: f}
}

// Aggregate runs all sources concurrently, waits for every one of them
// (a slow but successful source still contributes), merges and scores the
// listings, and returns the top results sorted by descending score.
//
// Sources never fail by contract, so Aggregate always returns a well-formed
// result; when every source comes back empty the envelope simply carries
// zero listings.
func (a *Aggregator) Aggregate(ctx context.Context, term string) models.SearchResult {
	results := make([][]models.Listing, len(a.sources))

	var wg sync.WaitGroup
	for i, src := range a.sources {
		wg.Add(1)
		go func(i int, src sources.Source) {
			defer wg.Done()
			results[i] = src.Search(ctx, term)
		}(i, src)
	}
	wg.Wait()

	merged := make([]models.Listing, 0)
	for _, listings := range results {
		merged = append(merged, listings...)
	}

	if a.filter != nil {
		merged = a.filter.Apply(merged)
	}

	total := len(merged)

	// Stable sort: listings with equal scores keep their merge order.
	sort.SliceStable(merged, func(i, j int) bool {
		return Score(merged[i]) > Score(merged[j])
	})

	if len(merged) > MaxResults {
		merged = merged[:MaxResults]
	}

	return models.SearchResult{
		Metadata: models.Metadata{
			SearchedAt: time.Now().Format(models.TimeLayout),
			Total:      total,
			QueryTerm:  term,
			Note:       resultNote,
		},
		Listings: merged,
	}
}
