package commands

import (
	"fmt"
	"strconv"

	"reviewscope-backend/internal/components/fault"
	"reviewscope-backend/internal/service"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fault.Newf(fault.InvalidInput, "parse id", "invalid analysis id %q", arg)
	}
	return id, nil
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Shows an analysis together with its reviews.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		svc, release, err := openService(ctx)
		if err != nil {
			return err
		}
		defer release()

		res, err := svc.GetAnalysis(ctx, connect.NewRequest(&service.GetAnalysisRequest{ID: id}))
		if err != nil {
			return err
		}
		renderAnalysis(res.Msg.Analysis)
		renderReviews(res.Msg.Analysis.Reviews)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Deletes an analysis from the history.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		svc, release, err := openService(ctx)
		if err != nil {
			return err
		}
		defer release()

		_, err = svc.DeleteAnalysis(ctx, connect.NewRequest(&service.DeleteAnalysisRequest{ID: id}))
		if err != nil {
			return err
		}
		fmt.Printf("deleted analysis %d\n", id)
		return nil
	},
}
