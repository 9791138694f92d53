package commands

import (
	"fmt"

	"reviewscope-backend/internal/service"

	"connectrpc.com/connect"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reviewsCmd)
}

var reviewsCmd = &cobra.Command{
	Use:   "reviews <url>",
	Short: "Lists every review stored for a product.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, release, err := openService(ctx)
		if err != nil {
			return err
		}
		defer release()

		res, err := svc.ListReviews(ctx, connect.NewRequest(&service.ListReviewsRequest{URL: args[0]}))
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Id", "Rating", "Review", "Scraped at"})
		for _, r := range res.Msg.Reviews {
			rating := "-"
			if r.Rating != nil {
				rating = fmt.Sprint(*r.Rating)
			}
			t.AppendRow(table.Row{r.ID, rating, truncate(r.Text, 80), formatTime(r.Timestamp)})
		}
		t.SetCaption("last scraped at %s", formatTime(res.Msg.LastScrapedAt))
		t.Render()
		return nil
	},
}
