package aggregator

import (
	"context"
	"fmt"
	"testing"
	"time"

	"ofertas-bot/config"
	"ofertas-bot/filter"
	"ofertas-bot/models"
	"ofertas-bot/sources"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource is a Source test double with a controllable result and delay.
type stubSource struct {
	name     string
	listings []models.Listing
	delay    time.Duration
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Search(ctx context.Context, term string) []models.Listing {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil
		}
	}
	return s.listings
}

var _ sources.Source = (*stubSource)(nil)

func ratingOf(v float64) *float64 { return &v }
func reviewsOf(v int) *int        { return &v }

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		listing  models.Listing
		expected float64
	}{
		{
			"full data",
			models.Listing{Rating: ratingOf(4.5), Reviews: reviewsOf(200), CurrentPrice: 1000, DiscountPercent: 10},
			55.0, // 45 + 10 - 1 + 1
		},
		{
			"missing rating defaults optimistically",
			models.Listing{Reviews: reviewsOf(0), CurrentPrice: 500},
			39.5, // 40 + 0 - 0.5 + 0
		},
		{
			"zero rating is not unknown",
			models.Listing{Rating: ratingOf(0), CurrentPrice: 0},
			0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Score(tt.listing), 1e-9)
		})
	}
}

func TestScoreMonotonicity(t *testing.T) {
	base := models.Listing{Rating: ratingOf(4.0), Reviews: reviewsOf(100), CurrentPrice: 500, DiscountPercent: 10}

	higherRating := base
	higherRating.Rating = ratingOf(4.5)
	assert.Greater(t, Score(higherRating), Score(base), "score grows with rating")

	moreReviews := base
	moreReviews.Reviews = reviewsOf(500)
	assert.Greater(t, Score(moreReviews), Score(base), "score grows with review count")

	pricier := base
	pricier.CurrentPrice = 900
	assert.Less(t, Score(pricier), Score(base), "score shrinks as price grows")

	bigger := base
	bigger.DiscountPercent = 30
	assert.Greater(t, Score(bigger), Score(base), "score grows with discount")
}

func TestAggregateRanksAcrossSources(t *testing.T) {
	a := models.Listing{Title: "A", Rating: ratingOf(4.5), Reviews: reviewsOf(200), CurrentPrice: 1000, DiscountPercent: 10}
	b := models.Listing{Title: "B", Reviews: reviewsOf(0), CurrentPrice: 500}

	agg := New([]sources.Source{
		&stubSource{name: "one", listings: []models.Listing{b}},
		&stubSource{name: "two", listings: []models.Listing{a}, delay: 20 * time.Millisecond},
	}, nil)

	result := agg.Aggregate(context.Background(), "notebook")

	require.Len(t, result.Listings, 2)
	assert.Equal(t, "A", result.Listings[0].Title, "score 55 ranks above 39.5")
	assert.Equal(t, "B", result.Listings[1].Title)
	assert.Equal(t, 2, result.Metadata.Total)
	assert.Equal(t, "notebook", result.Metadata.QueryTerm)
	assert.NotEmpty(t, result.Metadata.SearchedAt)
	assert.NotEmpty(t, result.Metadata.Note)
}

func TestAggregateStableOnEqualScores(t *testing.T) {
	// Identical listings score identically; merge order must survive the sort.
	var listings []models.Listing
	for i := 0; i < 5; i++ {
		listings = append(listings, models.Listing{
			Title:        fmt.Sprintf("tie-%d", i),
			CurrentPrice: 100,
		})
	}

	agg := New([]sources.Source{&stubSource{name: "one", listings: listings}}, nil)
	result := agg.Aggregate(context.Background(), "tv")

	require.Len(t, result.Listings, 5)
	for i, l := range result.Listings {
		assert.Equal(t, fmt.Sprintf("tie-%d", i), l.Title)
	}
}

func TestAggregateTruncatesToMaxResults(t *testing.T) {
	var listings []models.Listing
	for i := 0; i < 25; i++ {
		listings = append(listings, models.Listing{
			Title:        fmt.Sprintf("item-%d", i),
			CurrentPrice: float64(i),
		})
	}

	agg := New([]sources.Source{&stubSource{name: "one", listings: listings}}, nil)
	result := agg.Aggregate(context.Background(), "tv")

	assert.Len(t, result.Listings, MaxResults)
	assert.Equal(t, 25, result.Metadata.Total, "total counts merged listings before truncation")
}

func TestAggregateSortedDescending(t *testing.T) {
	var listings []models.Listing
	for i := 0; i < 10; i++ {
		listings = append(listings, models.Listing{
			Title:        fmt.Sprintf("item-%d", i),
			CurrentPrice: float64((i * 7919) % 1000),
			Rating:       ratingOf(float64(i%5) + 0.5),
		})
	}

	agg := New([]sources.Source{&stubSource{name: "one", listings: listings}}, nil)
	result := agg.Aggregate(context.Background(), "tv")

	for i := 1; i < len(result.Listings); i++ {
		assert.GreaterOrEqual(t, Score(result.Listings[i-1]), Score(result.Listings[i]))
	}
}

func TestAggregateSurvivesSourceFailure(t *testing.T) {
	// A failed adapter surfaces as an empty slice per the Source contract.
	ok := models.Listing{Title: "ok", CurrentPrice: 100}

	agg := New([]sources.Source{
		&stubSource{name: "broken", listings: nil},
		&stubSource{name: "healthy", listings: []models.Listing{ok}},
	}, nil)

	result := agg.Aggregate(context.Background(), "tv")
	require.Len(t, result.Listings, 1)
	assert.Equal(t, "ok", result.Listings[0].Title)
}

func TestAggregateEmptyIsNotAnError(t *testing.T) {
	agg := New([]sources.Source{
		&stubSource{name: "one"},
		&stubSource{name: "two"},
	}, nil)

	result := agg.Aggregate(context.Background(), "nada")
	assert.NotNil(t, result.Listings, "empty result keeps a non-nil slice for the JSON artifact")
	assert.Empty(t, result.Listings)
	assert.Equal(t, 0, result.Metadata.Total)
}

func TestAggregateWaitsForSlowSource(t *testing.T) {
	slow := models.Listing{Title: "slow", CurrentPrice: 10}

	agg := New([]sources.Source{
		&stubSource{name: "fast", listings: []models.Listing{{Title: "fast", CurrentPrice: 10}}},
		&stubSource{name: "slow", listings: []models.Listing{slow}, delay: 50 * time.Millisecond},
	}, nil)

	result := agg.Aggregate(context.Background(), "tv")
	assert.Len(t, result.Listings, 2, "partial results from a slow source are still wanted")
}

func TestAggregateAppliesFilter(t *testing.T) {
	listings := []models.Listing{
		{Title: "cheap", CurrentPrice: 30},
		{Title: "fits", CurrentPrice: 150},
		{Title: "expensive", CurrentPrice: 900},
	}

	f := filter.NewFilter(config.FilterConfig{MinPrice: 100, MaxPrice: 500})
	agg := New([]sources.Source{&stubSource{name: "one", listings: listings}}, f)

	result := agg.Aggregate(context.Background(), "tv")
	require.Len(t, result.Listings, 1)
	assert.Equal(t, "fits", result.Listings[0].Title)
	assert.Equal(t, 1, result.Metadata.Total)
}
