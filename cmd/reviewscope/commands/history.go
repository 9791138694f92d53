package commands

import (
	"fmt"

	"reviewscope-backend/internal/service"

	"connectrpc.com/connect"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	historyPage    int
	historyPerPage int
)

func init() {
	historyCmd.Flags().IntVar(&historyPage, "page", 1, "The page to show, starting at 1.")
	historyCmd.Flags().IntVar(&historyPerPage, "per-page", service.DefaultPerPage, "The amount of analyses per page.")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history [--page <n>] [--per-page <n>]",
	Short: "Lists past analyses, most recent first.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, release, err := openService(ctx)
		if err != nil {
			return err
		}
		defer release()

		res, err := svc.ListAnalyses(ctx, connect.NewRequest(&service.ListAnalysesRequest{
			Page:    historyPage,
			PerPage: historyPerPage,
		}))
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Id", "Product", "Average", "Most common", "Reviews", "Analyzed at"})
		for _, a := range res.Msg.Analyses {
			t.AppendRow(table.Row{
				a.ID,
				truncate(a.ProductName, 40),
				fmt.Sprintf("%.2f", a.AverageScore),
				a.MostCommon.String(),
				a.ReviewCount,
				formatTime(a.Timestamp),
			})
		}
		t.SetCaption("page %d of %d", res.Msg.Page, res.Msg.TotalPages)
		t.Render()
		return nil
	},
}
