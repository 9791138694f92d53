package service

import (
	"time"

	"reviewscope-backend/internal/pipeline"
	"reviewscope-backend/internal/sentiment"
	"reviewscope-backend/internal/store"
)

type ProcessRequest struct {
	URL string `json:"url"`
}

type ProcessResponse struct {
	// Result is nil when the page had no reviews.
	Result    *Result `json:"result,omitempty"`
	NoReviews bool    `json:"no_reviews"`
	Message   string  `json:"message,omitempty"`
}

type Result struct {
	RunID           string                      `json:"run_id"`
	URL             string                      `json:"url"`
	ProductName     string                      `json:"product_name"`
	AnalysisID      int64                       `json:"analysis_id"`
	AverageScore    float64                     `json:"average_score"`
	Distribution    map[sentiment.Label]float64 `json:"distribution"`
	MostCommon      sentiment.Label             `json:"most_common"`
	Reviews         []store.ReviewSentiment     `json:"reviews"`
	ReviewCount     int                         `json:"review_count"`
	ClassifiedCount int                         `json:"classified_count"`
}

type Analysis struct {
	ID                    int64                       `json:"id"`
	URL                   string                      `json:"url"`
	ProductName           string                      `json:"product_name"`
	SentimentDistribution map[sentiment.Label]float64 `json:"sentiment_distribution"`
	AverageScore          float64                     `json:"average_score"`
	ReviewCount           int                         `json:"review_count"`
	MostCommon            sentiment.Label             `json:"most_common"`
	Reviews               []store.ReviewSentiment     `json:"reviews,omitempty"`
	Timestamp             time.Time                   `json:"timestamp"`
}

type ListAnalysesRequest struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	// IncludeReviews adds the review snapshot of each analysis.
	IncludeReviews bool `json:"include_reviews"`
}

type ListAnalysesResponse struct {
	Analyses   []Analysis `json:"analyses"`
	Page       int        `json:"page"`
	TotalPages int        `json:"total_pages"`
}

type GetAnalysisRequest struct {
	ID int64 `json:"id"`
}

type GetAnalysisResponse struct {
	Analysis Analysis `json:"analysis"`
}

type DeleteAnalysisRequest struct {
	ID int64 `json:"id"`
}

type DeleteAnalysisResponse struct{}

type ListReviewsRequest struct {
	URL string `json:"url"`
}

type Review struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Rating    *int      `json:"rating,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ListReviewsResponse struct {
	ProductID     int64     `json:"product_id"`
	LastScrapedAt time.Time `json:"last_scraped_at"`
	Reviews       []Review  `json:"reviews"`
}

func resultMessage(r pipeline.Result) *Result {
	return &Result{
		RunID:           r.RunID,
		URL:             r.URL,
		ProductName:     r.ProductName,
		AnalysisID:      r.AnalysisID,
		AverageScore:    r.AverageScore,
		Distribution:    r.Distribution,
		MostCommon:      r.MostCommon,
		Reviews:         r.Reviews,
		ReviewCount:     r.ReviewCount,
		ClassifiedCount: r.ClassifiedCount,
	}
}

func analysisMessage(r store.AnalysisRecord, withReviews bool) Analysis {
	a := Analysis{
		ID:                    r.ID,
		URL:                   r.URL,
		ProductName:           r.ProductName,
		SentimentDistribution: r.SentimentDistribution,
		AverageScore:          r.AverageScore,
		ReviewCount:           r.ReviewCount,
		MostCommon:            r.MostCommon,
		Timestamp:             r.Timestamp,
	}
	if withReviews {
		a.Reviews = r.Reviews
	}
	return a
}
