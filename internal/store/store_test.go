package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"reviewscope-backend/internal/components/chrono"
	"reviewscope-backend/internal/components/fault"
	"reviewscope-backend/internal/extract"
	"reviewscope-backend/internal/sentiment"
	"reviewscope-backend/internal/store/storetest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (Store, *chrono.FakeTime) {
	t.Helper()

	sqlite := storetest.OpenDB(t, "")
	clock := chrono.NewFakeTime(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	return NewStore(sqlite, clock), clock
}

func TestAddProductIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.AddProduct(ctx, "https://shop.example/p/widget")
	require.NoError(t, err)
	second, err := store.AddProduct(ctx, "https://shop.example/p/widget")
	require.NoError(t, err)
	require.Equal(t, first, second)

	other, err := store.AddProduct(ctx, "https://shop.example/p/gadget")
	require.NoError(t, err)
	require.NotEqual(t, first, other)

	_, err = store.AddProduct(ctx, "")
	require.ErrorIs(t, err, fault.PersistenceError)
}

func TestAddReviews(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	productID, err := store.AddProduct(ctx, "https://shop.example/p/widget")
	require.NoError(t, err)

	clock.Advance(time.Hour)
	rating := 4
	err = store.AddReviews(ctx, productID, []extract.RawReview{
		{Text: "Great widget"},
		{Text: "Broke after a week", Rating: &rating},
	})
	require.NoError(t, err)

	reviews, err := store.GetReviews(ctx, productID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	require.Equal(t, "Great widget", reviews[0].Text)
	require.Nil(t, reviews[0].Rating)
	require.Equal(t, "Broke after a week", reviews[1].Text)
	require.Equal(t, 4, *reviews[1].Rating)

	product, err := store.GetProduct(ctx, "https://shop.example/p/widget")
	require.NoError(t, err)
	require.True(t, product.LastScrapedAt.Equal(clock.Now()), "last scraped at %v", product.LastScrapedAt)

	clock.Advance(time.Hour)
	err = store.AddReviews(ctx, productID, nil)
	require.NoError(t, err)
	product, err = store.GetProduct(ctx, "https://shop.example/p/widget")
	require.NoError(t, err)
	require.True(t, product.LastScrapedAt.Equal(clock.Now()))
}

func TestAddReviewsRejectsBadInput(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	err := store.AddReviews(ctx, 42, []extract.RawReview{{Text: "orphan"}})
	require.ErrorIs(t, err, fault.PersistenceError)

	productID, err := store.AddProduct(ctx, "https://shop.example/p/widget")
	require.NoError(t, err)
	err = store.AddReviews(ctx, productID, []extract.RawReview{
		{Text: "fine"},
		{Text: "   "},
	})
	require.ErrorIs(t, err, fault.PersistenceError)

	// the whole batch is rolled back
	reviews, err := store.GetReviews(ctx, productID)
	require.NoError(t, err)
	require.Empty(t, reviews)
}

func TestGetProductNotFound(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.GetProduct(context.Background(), "https://shop.example/missing")
	require.ErrorIs(t, err, fault.NotFound)
}

func sampleAnalysis(name string) AnalysisRecord {
	return AnalysisRecord{
		ProductName: name,
		SentimentDistribution: map[sentiment.Label]float64{
			sentiment.OneStar:    100.0 / 3,
			sentiment.ThreeStars: 100.0 / 3,
			sentiment.FiveStars:  100.0 / 3,
		},
		AverageScore: 3,
		ReviewCount:  3,
		Reviews: []ReviewSentiment{
			{Text: "terrible", Sentiment: sentiment.OneStar},
			{Text: "it is fine, does what the box says and nothing more than that", Sentiment: sentiment.ThreeStars, Highlight: true},
			{Text: "love it", Sentiment: sentiment.FiveStars},
		},
	}
}

func TestAnalysisRoundTrip(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	record := sampleAnalysis("widget")
	id, err := store.AddAnalysis(ctx, "https://shop.example/p/widget", record)
	require.NoError(t, err)

	stored, err := store.GetAnalysis(ctx, id)
	require.NoError(t, err)

	expected := record
	expected.ID = id
	expected.URL = "https://shop.example/p/widget"
	expected.MostCommon = sentiment.OneStar
	expected.Timestamp = time.UnixMilli(clock.Now().UnixMilli())

	diff := cmp.Diff(expected, stored)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestAnalysisKeepsUnknownSentiment(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	record := AnalysisRecord{
		ProductName:           "widget",
		SentimentDistribution: map[sentiment.Label]float64{sentiment.FourStars: 100},
		AverageScore:          4,
		ReviewCount:           2,
		Reviews: []ReviewSentiment{
			{Text: "nice", Sentiment: sentiment.FourStars},
			{Text: "???", Sentiment: sentiment.Unknown},
		},
	}
	id, err := store.AddAnalysis(ctx, "https://shop.example/p/widget", record)
	require.NoError(t, err)

	stored, err := store.GetAnalysis(ctx, id)
	require.NoError(t, err)
	require.Equal(t, sentiment.Unknown, stored.Reviews[1].Sentiment)
	require.Equal(t, sentiment.FourStars, stored.MostCommon)
}

func TestAddAnalysisValidation(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		url    string
		mutate func(r *AnalysisRecord)
	}{
		{name: "missing url", url: ""},
		{name: "missing name", url: "https://x", mutate: func(r *AnalysisRecord) { r.ProductName = "" }},
		{name: "count mismatch", url: "https://x", mutate: func(r *AnalysisRecord) { r.ReviewCount = 7 }},
		{name: "nil distribution", url: "https://x", mutate: func(r *AnalysisRecord) { r.SentimentDistribution = nil }},
		{name: "average out of range", url: "https://x", mutate: func(r *AnalysisRecord) { r.AverageScore = 9 }},
		{name: "unknown in distribution", url: "https://x", mutate: func(r *AnalysisRecord) {
			r.SentimentDistribution[sentiment.Unknown] = 1
		}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			record := sampleAnalysis("widget")
			if c.mutate != nil {
				c.mutate(&record)
			}
			_, err := store.AddAnalysis(ctx, c.url, record)
			require.ErrorIs(t, err, fault.PersistenceError)
		})
	}
}

func TestPagination(t *testing.T) {
	store, clock := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 25; i++ {
		clock.Advance(time.Minute)
		_, err := store.AddAnalysis(ctx, fmt.Sprintf("https://shop.example/p/%d", i), sampleAnalysis(fmt.Sprint(i)))
		require.NoError(t, err)
	}

	total, err := store.GetTotalPages(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 3, total)

	page, err := store.GetAnalyses(ctx, 2, 10)
	require.NoError(t, err)
	require.Len(t, page, 10)
	// most recent first: page 2 holds the 11th through 20th newest
	for i, record := range page {
		require.Equal(t, fmt.Sprint(15-i), record.ProductName)
	}

	last, err := store.GetAnalyses(ctx, 3, 10)
	require.NoError(t, err)
	require.Len(t, last, 5)

	beyond, err := store.GetAnalyses(ctx, 4, 10)
	require.NoError(t, err)
	require.Empty(t, beyond)

	first, err := store.GetAnalyses(ctx, 0, 10)
	require.NoError(t, err)
	require.Equal(t, "25", first[0].ProductName)

	_, err = store.GetAnalyses(ctx, 1, 0)
	require.ErrorIs(t, err, fault.InvalidInput)
	_, err = store.GetTotalPages(ctx, 0)
	require.ErrorIs(t, err, fault.InvalidInput)
}

func TestTotalPagesEmpty(t *testing.T) {
	store, _ := newTestStore(t)
	total, err := store.GetTotalPages(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, 0, total)
}

func TestDeleteAnalysis(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	id, err := store.AddAnalysis(ctx, "https://shop.example/p/widget", sampleAnalysis("widget"))
	require.NoError(t, err)

	require.NoError(t, store.DeleteAnalysis(ctx, id))
	_, err = store.GetAnalysis(ctx, id)
	require.ErrorIs(t, err, fault.NotFound)

	require.NoError(t, store.DeleteAnalysis(ctx, id))
}
