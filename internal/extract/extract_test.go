package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"reviewscope-backend/internal/automation"
	"reviewscope-backend/internal/automation/automationtest"
	"reviewscope-backend/internal/components/telemetry"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func TestExtractSkipsStaleElements(t *testing.T) {
	for _, tc := range []struct {
		total int
		stale []int
	}{
		{total: 5},
		{total: 5, stale: []int{0}},
		{total: 8, stale: []int{1, 4, 7}},
		{total: 3, stale: []int{0, 1, 2}},
	} {
		t.Run(fmt.Sprintf("%d-%d", tc.total, len(tc.stale)), func(t *testing.T) {
			isStale := map[int]bool{}
			for _, i := range tc.stale {
				isStale[i] = true
			}

			var elements []automation.Element
			var expected []RawReview
			for i := 0; i < tc.total; i++ {
				text := fmt.Sprintf("review number %d", i)
				elements = append(elements, automationtest.Element{Content: text, Stale: isStale[i]})
				if !isStale[i] {
					expected = append(expected, RawReview{Text: text})
				}
			}

			tel := telemetry.NewRecorder()
			extractor := NewExtractor(DefaultReviewSelector, tel)
			session := automationtest.NewSession(map[string][]automation.Element{
				DefaultReviewSelector: elements,
			})

			reviews := extractor.Extract(context.Background(), session)
			require.Len(t, reviews, tc.total-len(tc.stale))
			if diff := cmp.Diff(expected, reviews, cmpopts.EquateEmpty()); diff != "" {
				t.Fatal(diff)
			}
			require.Equal(t, len(tc.stale), tel.Count("warning", report_extractor_read_text))
		})
	}
}

func TestExtractFiltersEmptyAndBrokenElements(t *testing.T) {
	tel := telemetry.NewRecorder()
	extractor := NewExtractor(DefaultReviewSelector, tel)
	session := automationtest.NewSession(map[string][]automation.Element{
		DefaultReviewSelector: {
			automationtest.Element{Content: "  excellent quality \n"},
			automationtest.Element{Content: "   "},
			automationtest.Element{Err: errors.New("websocket closed")},
			automationtest.Element{Content: ""},
			automationtest.Element{Content: "it's okay"},
		},
	})

	reviews := extractor.Extract(context.Background(), session)
	require.Equal(t, []RawReview{
		{Text: "excellent quality"},
		{Text: "it's okay"},
	}, reviews)
	for _, r := range reviews {
		require.Nil(t, r.Rating)
	}
	require.Equal(t, 1, tel.Count("broken", report_extractor_read_text))
}

func TestExtractEnumerationFailure(t *testing.T) {
	tel := telemetry.NewRecorder()
	extractor := NewExtractor(DefaultReviewSelector, tel)
	session := automationtest.NewSession(nil)
	session.ElementsErr = errors.New("target closed")

	require.Empty(t, extractor.Extract(context.Background(), session))
	require.Equal(t, 1, tel.Count("broken", report_extractor_enumerate))
}

const snapshot = `<!DOCTYPE html>
<html>
<body>
	<div class="reviews">
		<div class="item-content">
			<div class="middle">★★★★★</div>
			<div class="content">
				Excellent   quality,
				arrived early
			</div>
		</div>
		<div class="item-content">
			<div class="content"><span>terrible, broke in a day</span><script>track()</script></div>
		</div>
		<div class="item-content">
			<div class="content">   </div>
		</div>
		<div class="item-content">
			<div class="no-content">seller reply</div>
		</div>
	</div>
	<div class="content">not a review</div>
</body>
</html>`

func TestExtractFromHTML(t *testing.T) {
	doc, err := ParseHTML(strings.NewReader(snapshot))
	require.NoError(t, err)

	extractor := NewExtractor(DefaultReviewSelector, telemetry.NewRecorder())
	reviews := extractor.Extract(context.Background(), doc)
	require.Equal(t, []RawReview{
		{Text: "Excellent quality, arrived early"},
		{Text: "terrible, broke in a day"},
	}, reviews)

	markers, err := doc.Elements(context.Background(), ".item-content")
	require.NoError(t, err)
	require.Len(t, markers, 4)

	html, err := doc.HTML(context.Background())
	require.NoError(t, err)
	require.Contains(t, html, "seller reply")
}
