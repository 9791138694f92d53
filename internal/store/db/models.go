package db

import (
	"database/sql"
)

type AnalysisHistory struct {
	ID                    int64
	Url                   string
	ProductName           string
	SentimentDistribution string
	AverageRating         float64
	ReviewCount           int64
	Reviews               string
	CreatedAt             int64
}

type Product struct {
	ID            int64
	Url           string
	LastScrapedAt int64
}

type Review struct {
	ID         int64
	ProductID  int64
	ReviewText string
	Rating     sql.NullInt64
	CreatedAt  int64
}
