// Package pipeline runs one review processing job: load a product page,
// extract its reviews, classify them, summarize and persist the analysis.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"reviewscope-backend/internal/aggregate"
	"reviewscope-backend/internal/automation"
	"reviewscope-backend/internal/components/assert"
	"reviewscope-backend/internal/components/fault"
	"reviewscope-backend/internal/components/telemetry"
	"reviewscope-backend/internal/extract"
	"reviewscope-backend/internal/pageload"
	"reviewscope-backend/internal/sentiment"
	"reviewscope-backend/internal/session"
	"reviewscope-backend/internal/store"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("internal/pipeline")

const (
	report_pipeline_classify   = "pipeline.classify"
	report_pipeline_reviews    = "pipeline.reviews"
	report_pipeline_classified = "pipeline.classified"
	report_pipeline_runs       = "pipeline.runs"
)

// NoReviewsMessage is the message of a run that found nothing to analyze.
const NoReviewsMessage = "no reviews found"

// HighlightLength is the text length above which a review is highlighted.
const HighlightLength = 50

type Result struct {
	RunID string
	URL   string
	// NoReviews is set when the page had no reviews, nothing else but
	// Message is filled in that case.
	NoReviews bool
	Message   string

	ProductName     string
	AnalysisID      int64
	AverageScore    float64
	Distribution    map[sentiment.Label]float64
	MostCommon      sentiment.Label
	Reviews         []store.ReviewSentiment
	ReviewCount     int
	ClassifiedCount int
}

type Dependencies struct {
	Sessions   *session.Manager
	Loader     pageload.Loader
	Extractor  extract.Extractor
	Classifier sentiment.Classifier
	Store      store.Store
}

type Pipeline struct {
	deps        Dependencies
	concurrency int
	tel         telemetry.API
}

// NewPipeline creates a pipeline that classifies up to concurrency reviews
// at once, values below 1 mean one at a time.
func NewPipeline(deps Dependencies, concurrency int, tel telemetry.API) Pipeline {
	assert.NotNil(deps.Sessions)
	assert.NotNil(deps.Classifier)
	assert.NotNil(tel)
	if concurrency < 1 {
		concurrency = 1
	}
	return Pipeline{
		deps:        deps,
		concurrency: concurrency,
		tel:         telemetry.NewScopedAPI("pipeline", tel),
	}
}

// ValidateURL checks that target is an absolute http(s) url.
func ValidateURL(target string) (*url.URL, error) {
	parsed, err := url.Parse(strings.TrimSpace(target))
	if err != nil {
		return nil, fault.New(fault.InvalidInput, "pipeline.validate", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fault.Newf(fault.InvalidInput, "pipeline.validate", "url %q must use http or https", target)
	}
	if parsed.Host == "" {
		return nil, fault.Newf(fault.InvalidInput, "pipeline.validate", "url %q has no host", target)
	}
	return parsed, nil
}

// ProductName derives a display name from a product url: the last
// non-empty path segment, or the host if the path is empty.
func ProductName(target *url.URL) string {
	segments := strings.Split(target.Path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		segment := strings.TrimSpace(segments[i])
		if segment == "" {
			continue
		}
		unescaped, err := url.PathUnescape(segment)
		if err != nil {
			return segment
		}
		return unescaped
	}
	return target.Hostname()
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// Process runs a full job for target. A page without reviews is not an
// error, it yields a Result with NoReviews set and stores no analysis.
func (p Pipeline) Process(ctx context.Context, target string) (Result, error) {
	runID := uuid.NewString()
	ctx, span := tracer.Start(ctx, "Process", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.String("url", target),
	))
	defer span.End()

	p.tel.ReportCount(report_pipeline_runs, 1)

	parsed, err := ValidateURL(target)
	if err != nil {
		return Result{}, fail(span, err)
	}
	target = parsed.String()

	reviews, err := p.scrape(ctx, target)
	if err != nil {
		return Result{}, fail(span, err)
	}
	p.tel.ReportCount(report_pipeline_reviews, int64(len(reviews)))
	span.SetAttributes(attribute.Int("reviews", len(reviews)))

	productID, err := p.deps.Store.AddProduct(ctx, target)
	if err != nil {
		return Result{}, fail(span, err)
	}
	err = p.deps.Store.AddReviews(ctx, productID, reviews)
	if err != nil {
		return Result{}, fail(span, err)
	}

	if len(reviews) == 0 {
		p.tel.ReportDebug("no reviews found", runID, target)
		return Result{
			RunID:     runID,
			URL:       target,
			NoReviews: true,
			Message:   NoReviewsMessage,
		}, nil
	}

	labels, err := Classify(ctx, p.deps.Classifier, reviews, p.concurrency, p.tel)
	if err != nil {
		return Result{}, fail(span, err)
	}

	snapshot, classified := Snapshot(reviews, labels)
	p.tel.ReportCount(report_pipeline_classified, int64(len(classified)))

	summary, err := aggregate.Summarize(classified)
	if err != nil {
		return Result{}, fail(span, fault.New(fault.ClassificationError, "pipeline.summarize", err))
	}

	name := ProductName(parsed)
	analysisID, err := p.deps.Store.AddAnalysis(ctx, target, store.AnalysisRecord{
		ProductName:           name,
		SentimentDistribution: summary.Distribution,
		AverageScore:          summary.AverageScore,
		ReviewCount:           len(snapshot),
		Reviews:               snapshot,
	})
	if err != nil {
		return Result{}, fail(span, err)
	}
	span.SetAttributes(attribute.Int64("analysis_id", analysisID))

	return Result{
		RunID:           runID,
		URL:             target,
		ProductName:     name,
		AnalysisID:      analysisID,
		AverageScore:    summary.AverageScore,
		Distribution:    summary.Distribution,
		MostCommon:      summary.MostCommon,
		Reviews:         snapshot,
		ReviewCount:     len(snapshot),
		ClassifiedCount: len(classified),
	}, nil
}

// scrape acquires a session for the duration of loading and extraction,
// the session is released before anything is persisted.
func (p Pipeline) scrape(ctx context.Context, target string) ([]extract.RawReview, error) {
	ctx, span := tracer.Start(ctx, "Scrape")
	defer span.End()

	var reviews []extract.RawReview
	err := p.deps.Sessions.With(ctx, func(s automation.Session) error {
		doc, err := p.deps.Loader.Load(ctx, target, s)
		if err != nil {
			return err
		}
		reviews = p.deps.Extractor.Extract(ctx, doc)
		return nil
	})
	if err != nil {
		return nil, fail(span, err)
	}
	return reviews, nil
}

// Classify labels every review in document order with up to concurrency
// classifications in flight. A review that cannot be classified gets
// sentiment.Unknown and a warning, only when all of them fail is a
// ClassificationError returned.
func Classify(
	ctx context.Context,
	classifier sentiment.Classifier,
	reviews []extract.RawReview,
	concurrency int,
	tel telemetry.API,
) ([]sentiment.Label, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	ctx, span := tracer.Start(ctx, "Classify", trace.WithAttributes(
		attribute.Int("reviews", len(reviews)),
		attribute.Int("concurrency", concurrency),
	))
	defer span.End()

	labels := make([]sentiment.Label, len(reviews))
	failures := make([]error, len(reviews))

	group := errgroup.Group{}
	group.SetLimit(concurrency)
	for i, r := range reviews {
		i, r := i, r
		group.Go(func() error {
			label, err := classifier.Classify(ctx, r.Text)
			if err == nil && !label.Valid() {
				err = fmt.Errorf("classifier returned %s", label)
			}
			if err != nil {
				failures[i] = err
				tel.ReportWarning(report_pipeline_classify, err, i)
				return nil
			}
			labels[i] = label
			return nil
		})
	}
	_ = group.Wait()

	failed := 0
	for _, err := range failures {
		if err != nil {
			failed++
		}
	}
	span.SetAttributes(attribute.Int("failed", failed))

	if failed == len(reviews) {
		return nil, fail(span, fault.New(
			fault.ClassificationError,
			"pipeline.classify",
			fmt.Errorf("all %d reviews failed to classify: %w", failed, errors.Join(failures...)),
		))
	}
	if err := ctx.Err(); err != nil {
		return nil, fail(span, fault.New(fault.ClassificationError, "pipeline.classify", err))
	}
	return labels, nil
}

// Snapshot pairs reviews with their labels in document order. classified
// holds the labels that count towards the summary.
func Snapshot(reviews []extract.RawReview, labels []sentiment.Label) (snapshot []store.ReviewSentiment, classified []sentiment.Label) {
	snapshot = make([]store.ReviewSentiment, len(reviews))
	classified = make([]sentiment.Label, 0, len(labels))
	for i, r := range reviews {
		snapshot[i] = store.ReviewSentiment{
			Text:      r.Text,
			Sentiment: labels[i],
			Highlight: utf8.RuneCountInString(r.Text) > HighlightLength,
		}
		if labels[i].Valid() {
			classified = append(classified, labels[i])
		}
	}
	return snapshot, classified
}
