package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"reviewscope-backend/internal/sentiment"
	"reviewscope-backend/internal/service"
	"reviewscope-backend/internal/store"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func formatTime(t time.Time) string {
	return t.Local().Format(time.DateTime)
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

func renderDistribution(distribution map[sentiment.Label]float64) {
	t := newTable()
	t.SetTitle("Sentiment distribution")
	t.AppendHeader(table.Row{"Sentiment", "Share"})
	for _, l := range sentiment.Labels {
		share, ok := distribution[l]
		if !ok {
			continue
		}
		t.AppendRow(table.Row{l.String(), fmt.Sprintf("%.1f%%", share)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	t.Render()
}

func renderReviews(reviews []store.ReviewSentiment) {
	t := newTable()
	t.SetTitle("Reviews")
	t.AppendHeader(table.Row{"#", "Sentiment", "Review"})
	for i, r := range reviews {
		review := truncate(r.Text, 80)
		if r.Highlight {
			review = text.Bold.Sprint(review)
		}
		t.AppendRow(table.Row{i + 1, r.Sentiment.String(), review})
	}
	t.Render()
}

func renderResult(r *service.Result) {
	t := newTable()
	t.SetTitle("%s", r.ProductName)
	t.AppendRows([]table.Row{
		{"Analysis", r.AnalysisID},
		{"Run", r.RunID},
		{"Url", r.URL},
		{"Average score", fmt.Sprintf("%.2f / 5", r.AverageScore)},
		{"Most common", r.MostCommon.String()},
		{"Reviews", fmt.Sprintf("%d (%d classified)", r.ReviewCount, r.ClassifiedCount)},
	})
	t.Render()

	renderDistribution(r.Distribution)
}

func renderAnalysis(a service.Analysis) {
	t := newTable()
	t.SetTitle("%s", a.ProductName)
	t.AppendRows([]table.Row{
		{"Analysis", a.ID},
		{"Url", a.URL},
		{"Analyzed at", formatTime(a.Timestamp)},
		{"Average score", fmt.Sprintf("%.2f / 5", a.AverageScore)},
		{"Most common", a.MostCommon.String()},
		{"Reviews", a.ReviewCount},
	})
	t.Render()

	renderDistribution(a.SentimentDistribution)
}
