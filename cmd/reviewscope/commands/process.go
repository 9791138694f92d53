package commands

import (
	"fmt"

	"reviewscope-backend/internal/service"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"
)

var processJSON bool

func init() {
	processCmd.Flags().BoolVar(&processJSON, "json", false, "Print the result as json.")
	rootCmd.AddCommand(processCmd)
}

var processCmd = &cobra.Command{
	Use:   "process <url> [--json]",
	Short: "Scrapes the reviews of a product page, classifies them and stores the analysis.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, release, err := openService(ctx)
		if err != nil {
			return err
		}
		defer release()

		res, err := svc.Process(ctx, connect.NewRequest(&service.ProcessRequest{URL: args[0]}))
		if err != nil {
			return err
		}
		if processJSON {
			return printJSON(res.Msg)
		}
		if res.Msg.NoReviews {
			fmt.Println(res.Msg.Message)
			return nil
		}
		renderResult(res.Msg.Result)
		return nil
	},
}
