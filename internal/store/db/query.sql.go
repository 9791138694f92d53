// source: query.sql

package db

import (
	"context"
	"database/sql"
)

const countAnalyses = `-- name: CountAnalyses :one
select count(*) from analysis_history
`

func (q *Queries) CountAnalyses(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countAnalyses)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createAnalysis = `-- name: CreateAnalysis :one
insert into analysis_history(
    url, product_name, sentiment_distribution, average_rating, review_count, reviews, created_at
) values (?, ?, ?, ?, ?, ?, ?)
returning id
`

type CreateAnalysisParams struct {
	Url                   string
	ProductName           string
	SentimentDistribution string
	AverageRating         float64
	ReviewCount           int64
	Reviews               string
	CreatedAt             int64
}

func (q *Queries) CreateAnalysis(ctx context.Context, arg CreateAnalysisParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createAnalysis,
		arg.Url,
		arg.ProductName,
		arg.SentimentDistribution,
		arg.AverageRating,
		arg.ReviewCount,
		arg.Reviews,
		arg.CreatedAt,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const createProduct = `-- name: CreateProduct :exec
insert into product(url, last_scraped_at) values (?, ?)
on conflict(url) do nothing
`

type CreateProductParams struct {
	Url           string
	LastScrapedAt int64
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) error {
	_, err := q.db.ExecContext(ctx, createProduct, arg.Url, arg.LastScrapedAt)
	return err
}

const createReview = `-- name: CreateReview :exec
insert into review(product_id, review_text, rating, created_at) values (?, ?, ?, ?)
`

type CreateReviewParams struct {
	ProductID  int64
	ReviewText string
	Rating     sql.NullInt64
	CreatedAt  int64
}

func (q *Queries) CreateReview(ctx context.Context, arg CreateReviewParams) error {
	_, err := q.db.ExecContext(ctx, createReview,
		arg.ProductID,
		arg.ReviewText,
		arg.Rating,
		arg.CreatedAt,
	)
	return err
}

const deleteAnalysis = `-- name: DeleteAnalysis :exec
delete from analysis_history where id = ?
`

func (q *Queries) DeleteAnalysis(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteAnalysis, id)
	return err
}

const getAnalyses = `-- name: GetAnalyses :many
select id, url, product_name, sentiment_distribution, average_rating, review_count, reviews, created_at from analysis_history
order by created_at desc, id desc
limit ? offset ?
`

type GetAnalysesParams struct {
	Limit  int64
	Offset int64
}

func (q *Queries) GetAnalyses(ctx context.Context, arg GetAnalysesParams) ([]AnalysisHistory, error) {
	rows, err := q.db.QueryContext(ctx, getAnalyses, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AnalysisHistory
	for rows.Next() {
		var i AnalysisHistory
		if err := rows.Scan(
			&i.ID,
			&i.Url,
			&i.ProductName,
			&i.SentimentDistribution,
			&i.AverageRating,
			&i.ReviewCount,
			&i.Reviews,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getAnalysis = `-- name: GetAnalysis :one
select id, url, product_name, sentiment_distribution, average_rating, review_count, reviews, created_at from analysis_history where id = ?
`

func (q *Queries) GetAnalysis(ctx context.Context, id int64) (AnalysisHistory, error) {
	row := q.db.QueryRowContext(ctx, getAnalysis, id)
	var i AnalysisHistory
	err := row.Scan(
		&i.ID,
		&i.Url,
		&i.ProductName,
		&i.SentimentDistribution,
		&i.AverageRating,
		&i.ReviewCount,
		&i.Reviews,
		&i.CreatedAt,
	)
	return i, err
}

const getProduct = `-- name: GetProduct :one
select id, url, last_scraped_at from product where id = ?
`

func (q *Queries) GetProduct(ctx context.Context, id int64) (Product, error) {
	row := q.db.QueryRowContext(ctx, getProduct, id)
	var i Product
	err := row.Scan(&i.ID, &i.Url, &i.LastScrapedAt)
	return i, err
}

const getProductByURL = `-- name: GetProductByURL :one
select id, url, last_scraped_at from product where url = ?
`

func (q *Queries) GetProductByURL(ctx context.Context, url string) (Product, error) {
	row := q.db.QueryRowContext(ctx, getProductByURL, url)
	var i Product
	err := row.Scan(&i.ID, &i.Url, &i.LastScrapedAt)
	return i, err
}

const getReviews = `-- name: GetReviews :many
select id, product_id, review_text, rating, created_at from review where product_id = ? order by id asc
`

func (q *Queries) GetReviews(ctx context.Context, productID int64) ([]Review, error) {
	rows, err := q.db.QueryContext(ctx, getReviews, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Review
	for rows.Next() {
		var i Review
		if err := rows.Scan(
			&i.ID,
			&i.ProductID,
			&i.ReviewText,
			&i.Rating,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const touchProduct = `-- name: TouchProduct :execrows
update product set last_scraped_at = ? where id = ?
`

type TouchProductParams struct {
	LastScrapedAt int64
	ID            int64
}

func (q *Queries) TouchProduct(ctx context.Context, arg TouchProductParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, touchProduct, arg.LastScrapedAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
