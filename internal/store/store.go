// Package store persists products, their reviews and the history of
// completed analyses.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"reviewscope-backend/internal/aggregate"
	"reviewscope-backend/internal/components/assert"
	"reviewscope-backend/internal/components/chrono"
	"reviewscope-backend/internal/components/fault"
	"reviewscope-backend/internal/extract"
	"reviewscope-backend/internal/sentiment"
	"reviewscope-backend/internal/store/db"
)

type Product struct {
	ID            int64
	URL           string
	LastScrapedAt time.Time
}

type Review struct {
	ID        int64
	ProductID int64
	Text      string
	Rating    *int
	Timestamp time.Time
}

// ReviewSentiment is one entry of an analysis' review snapshot.
type ReviewSentiment struct {
	Text      string          `json:"text"`
	Sentiment sentiment.Label `json:"sentiment"`
	// Highlight marks reviews long enough to be featured.
	Highlight bool `json:"highlight"`
}

// AnalysisRecord is an immutable snapshot of one completed run.
type AnalysisRecord struct {
	ID                    int64
	URL                   string
	ProductName           string
	SentimentDistribution map[sentiment.Label]float64
	AverageScore          float64
	ReviewCount           int
	// MostCommon is derived from SentimentDistribution when read.
	MostCommon sentiment.Label
	Reviews    []ReviewSentiment
	Timestamp  time.Time
}

type Store struct {
	db   *sql.DB
	qry  *db.Queries
	time chrono.TimeAPI
}

func NewStore(database *sql.DB, time chrono.TimeAPI) Store {
	assert.NotNil(database)
	assert.NotNil(time)
	return Store{
		db:   database,
		qry:  db.New(database),
		time: time,
	}
}

func persistence(op string, err error) error {
	return fault.New(fault.PersistenceError, op, err)
}

func (s Store) now() int64 {
	return s.time.Now().UnixMilli()
}

// AddProduct returns the id of the product with the given url, creating
// it if it does not exist yet.
func (s Store) AddProduct(ctx context.Context, url string) (int64, error) {
	if url == "" {
		return 0, fault.Newf(fault.PersistenceError, "store.add-product", "url is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, persistence("store.add-product", err)
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	err = txqry.CreateProduct(ctx, db.CreateProductParams{
		Url:           url,
		LastScrapedAt: s.now(),
	})
	if err != nil {
		return 0, persistence("store.add-product", err)
	}
	product, err := txqry.GetProductByURL(ctx, url)
	if err != nil {
		return 0, persistence("store.add-product", err)
	}

	err = tx.Commit()
	if err != nil {
		return 0, persistence("store.add-product", err)
	}
	return product.ID, nil
}

// GetProduct returns the product with the given url.
func (s Store) GetProduct(ctx context.Context, url string) (Product, error) {
	row, err := s.qry.GetProductByURL(ctx, url)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, fault.Newf(fault.NotFound, "store.get-product", "no product with url %s", url)
	}
	if err != nil {
		return Product{}, persistence("store.get-product", err)
	}
	return Product{
		ID:            row.ID,
		URL:           row.Url,
		LastScrapedAt: time.UnixMilli(row.LastScrapedAt),
	}, nil
}

// AddReviews appends reviews to a product and marks it as scraped, all in
// one transaction.
func (s Store) AddReviews(ctx context.Context, productID int64, reviews []extract.RawReview) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persistence("store.add-reviews", err)
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	now := s.now()
	affected, err := txqry.TouchProduct(ctx, db.TouchProductParams{
		LastScrapedAt: now,
		ID:            productID,
	})
	if err != nil {
		return persistence("store.add-reviews", err)
	}
	if affected == 0 {
		return fault.Newf(fault.PersistenceError, "store.add-reviews", "product %d does not exist", productID)
	}

	for _, r := range reviews {
		if strings.TrimSpace(r.Text) == "" {
			return fault.Newf(fault.PersistenceError, "store.add-reviews", "review text is required")
		}
		var rating sql.NullInt64
		if r.Rating != nil {
			rating = sql.NullInt64{Int64: int64(*r.Rating), Valid: true}
		}
		err = txqry.CreateReview(ctx, db.CreateReviewParams{
			ProductID:  productID,
			ReviewText: r.Text,
			Rating:     rating,
			CreatedAt:  now,
		})
		if err != nil {
			return persistence("store.add-reviews", err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return persistence("store.add-reviews", err)
	}
	return nil
}

// GetReviews returns the reviews of a product in insertion order.
func (s Store) GetReviews(ctx context.Context, productID int64) ([]Review, error) {
	rows, err := s.qry.GetReviews(ctx, productID)
	if err != nil {
		return nil, persistence("store.get-reviews", err)
	}
	out := make([]Review, len(rows))
	for i, row := range rows {
		var rating *int
		if row.Rating.Valid {
			value := int(row.Rating.Int64)
			rating = &value
		}
		out[i] = Review{
			ID:        row.ID,
			ProductID: row.ProductID,
			Text:      row.ReviewText,
			Rating:    rating,
			Timestamp: time.UnixMilli(row.CreatedAt),
		}
	}
	return out, nil
}

func validateAnalysis(url string, record AnalysisRecord) error {
	if url == "" {
		return errors.New("url is required")
	}
	if record.ProductName == "" {
		return errors.New("product name is required")
	}
	if record.SentimentDistribution == nil {
		return errors.New("sentiment distribution is required")
	}
	if record.ReviewCount != len(record.Reviews) {
		return fmt.Errorf("review count %d does not match %d reviews", record.ReviewCount, len(record.Reviews))
	}
	for l := range record.SentimentDistribution {
		if !l.Valid() {
			return fmt.Errorf("invalid distribution label %s", l)
		}
	}
	if len(record.SentimentDistribution) > 0 && (record.AverageScore < 1 || record.AverageScore > 5) {
		return fmt.Errorf("average score %f is out of range", record.AverageScore)
	}
	return nil
}

// AddAnalysis stores a completed analysis of url and returns its id. The
// record's ID and Timestamp are assigned by the store.
func (s Store) AddAnalysis(ctx context.Context, url string, record AnalysisRecord) (int64, error) {
	err := validateAnalysis(url, record)
	if err != nil {
		return 0, persistence("store.add-analysis", err)
	}

	distribution, err := json.Marshal(record.SentimentDistribution)
	if err != nil {
		return 0, persistence("store.add-analysis", err)
	}
	reviews := record.Reviews
	if reviews == nil {
		reviews = []ReviewSentiment{}
	}
	serializedReviews, err := json.Marshal(reviews)
	if err != nil {
		return 0, persistence("store.add-analysis", err)
	}

	id, err := s.qry.CreateAnalysis(ctx, db.CreateAnalysisParams{
		Url:                   url,
		ProductName:           record.ProductName,
		SentimentDistribution: string(distribution),
		AverageRating:         record.AverageScore,
		ReviewCount:           int64(record.ReviewCount),
		Reviews:               string(serializedReviews),
		CreatedAt:             s.now(),
	})
	if err != nil {
		return 0, persistence("store.add-analysis", err)
	}
	return id, nil
}

func decodeAnalysis(row db.AnalysisHistory) (AnalysisRecord, error) {
	var distribution map[sentiment.Label]float64
	err := json.Unmarshal([]byte(row.SentimentDistribution), &distribution)
	if err != nil {
		return AnalysisRecord{}, fmt.Errorf("decode distribution of analysis %d: %w", row.ID, err)
	}
	var reviews []ReviewSentiment
	err = json.Unmarshal([]byte(row.Reviews), &reviews)
	if err != nil {
		return AnalysisRecord{}, fmt.Errorf("decode reviews of analysis %d: %w", row.ID, err)
	}
	return AnalysisRecord{
		ID:                    row.ID,
		URL:                   row.Url,
		ProductName:           row.ProductName,
		SentimentDistribution: distribution,
		AverageScore:          row.AverageRating,
		ReviewCount:           int(row.ReviewCount),
		MostCommon:            aggregate.MostCommonOf(distribution),
		Reviews:               reviews,
		Timestamp:             time.UnixMilli(row.CreatedAt),
	}, nil
}

// GetAnalysis returns a single analysis.
func (s Store) GetAnalysis(ctx context.Context, id int64) (AnalysisRecord, error) {
	row, err := s.qry.GetAnalysis(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return AnalysisRecord{}, fault.Newf(fault.NotFound, "store.get-analysis", "no analysis with id %d", id)
	}
	if err != nil {
		return AnalysisRecord{}, persistence("store.get-analysis", err)
	}
	record, err := decodeAnalysis(row)
	if err != nil {
		return AnalysisRecord{}, persistence("store.get-analysis", err)
	}
	return record, nil
}

// GetAnalyses returns one page of analyses, most recent first. Pages start
// at 1, a page below 1 is treated as the first page.
func (s Store) GetAnalyses(ctx context.Context, page, perPage int) ([]AnalysisRecord, error) {
	if perPage < 1 {
		return nil, fault.Newf(fault.InvalidInput, "store.get-analyses", "per page must be positive, got %d", perPage)
	}
	if page < 1 {
		page = 1
	}

	rows, err := s.qry.GetAnalyses(ctx, db.GetAnalysesParams{
		Limit:  int64(perPage),
		Offset: int64(page-1) * int64(perPage),
	})
	if err != nil {
		return nil, persistence("store.get-analyses", err)
	}

	out := make([]AnalysisRecord, len(rows))
	for i, row := range rows {
		out[i], err = decodeAnalysis(row)
		if err != nil {
			return nil, persistence("store.get-analyses", err)
		}
	}
	return out, nil
}

// GetTotalPages returns how many pages of perPage analyses exist.
func (s Store) GetTotalPages(ctx context.Context, perPage int) (int, error) {
	if perPage < 1 {
		return 0, fault.Newf(fault.InvalidInput, "store.get-total-pages", "per page must be positive, got %d", perPage)
	}
	count, err := s.qry.CountAnalyses(ctx)
	if err != nil {
		return 0, persistence("store.get-total-pages", err)
	}
	return int(math.Ceil(float64(count) / float64(perPage))), nil
}

// DeleteAnalysis removes an analysis, deleting a missing id is a no-op.
func (s Store) DeleteAnalysis(ctx context.Context, id int64) error {
	err := s.qry.DeleteAnalysis(ctx, id)
	if err != nil {
		return persistence("store.delete-analysis", err)
	}
	return nil
}
