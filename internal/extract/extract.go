// Package extract reads review records out of a loaded document.
package extract

import (
	"context"
	"errors"
	"strings"

	"reviewscope-backend/internal/automation"
	"reviewscope-backend/internal/components/assert"
	"reviewscope-backend/internal/components/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("internal/extract")

const (
	report_extractor_enumerate = "extractor.enumerate"
	report_extractor_read_text = "extractor.read-text"
	report_extractor_reviews   = "extractor.reviews"
	report_extractor_stale     = "extractor.stale"
)

// DefaultReviewSelector selects the text block of every review container.
const DefaultReviewSelector = ".item-content .content"

// RawReview is a review as it appears on the page.
type RawReview struct {
	Text string
	// Rating is never populated, the review markup has no reliable star
	// rating.
	Rating *int
}

type Extractor struct {
	selector string
	tel      telemetry.API
}

func NewExtractor(selector string, tel telemetry.API) Extractor {
	assert.NotEmptyStr(selector)
	assert.NotNil(tel)
	return Extractor{
		selector: selector,
		tel:      telemetry.NewScopedAPI("extract", tel),
	}
}

// Extract returns every non-empty review in document order. It never fails
// as a whole: elements that went stale or could not be read are skipped.
func (e Extractor) Extract(ctx context.Context, doc automation.Document) []RawReview {
	ctx, span := tracer.Start(ctx, "Extract")
	defer span.End()

	elements, err := doc.Elements(ctx, e.selector)
	if err != nil {
		span.RecordError(err)
		e.tel.ReportBroken(report_extractor_enumerate, err, e.selector)
		return nil
	}

	var stale int64
	reviews := make([]RawReview, 0, len(elements))
	for i, el := range elements {
		text, err := el.Text(ctx)
		if errors.Is(err, automation.ErrStaleElement) {
			stale++
			e.tel.ReportWarning(report_extractor_read_text, err, i)
			continue
		}
		if err != nil {
			e.tel.ReportBroken(report_extractor_read_text, err, i)
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		reviews = append(reviews, RawReview{Text: text})
	}

	span.SetAttributes(
		attribute.Int("elements", len(elements)),
		attribute.Int("reviews", len(reviews)),
		attribute.Int64("stale", stale),
	)
	e.tel.ReportCount(report_extractor_reviews, int64(len(reviews)))
	if stale > 0 {
		e.tel.ReportCount(report_extractor_stale, stale)
	}
	return reviews
}
