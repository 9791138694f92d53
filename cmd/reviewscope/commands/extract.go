package commands

import (
	"fmt"
	"os"

	"reviewscope-backend/internal/aggregate"
	"reviewscope-backend/internal/app"
	"reviewscope-backend/internal/components/telemetry"
	"reviewscope-backend/internal/extract"
	"reviewscope-backend/internal/pipeline"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	extractClassify bool
	extractSelector string
)

func init() {
	extractCmd.Flags().BoolVar(&extractClassify, "classify", false, "Classify the extracted reviews and summarize them.")
	extractCmd.Flags().StringVar(&extractSelector, "selector", "", "Overrides scraper.review_selector.")
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract <snapshot.html> [--classify]",
	Short: "Extracts reviews from a saved page snapshot without a browser.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		selector := cfg.Scraper.ReviewSelector
		if extractSelector != "" {
			selector = extractSelector
		}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		doc, err := extract.ParseHTML(f)
		if err != nil {
			return fmt.Errorf("parse snapshot: %w", err)
		}

		tel := telemetry.SlogAPI{}
		reviews := extract.NewExtractor(selector, tel).Extract(ctx, doc)

		if !extractClassify {
			t := newTable()
			t.AppendHeader(table.Row{"#", "Review"})
			for i, r := range reviews {
				t.AppendRow(table.Row{i + 1, truncate(r.Text, 100)})
			}
			t.SetCaption("%d review(s)", len(reviews))
			t.Render()
			return nil
		}

		if len(reviews) == 0 {
			fmt.Println("no reviews found")
			return nil
		}

		classifier, err := app.NewClassifier(cfg.Classifier, tel)
		if err != nil {
			return err
		}
		defer classifier.Close()

		labels, err := pipeline.Classify(
			ctx, classifier, reviews, cfg.Classifier.Concurrency,
			telemetry.NewScopedAPI("extract", tel),
		)
		if err != nil {
			return err
		}
		snapshot, classified := pipeline.Snapshot(reviews, labels)
		renderReviews(snapshot)

		summary, err := aggregate.Summarize(classified)
		if err != nil {
			return fmt.Errorf("summarize: %w", err)
		}
		fmt.Printf("average score %.2f / 5, mostly %s\n", summary.AverageScore, summary.MostCommon)
		renderDistribution(summary.Distribution)
		return nil
	},
}
