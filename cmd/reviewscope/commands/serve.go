package commands

import (
	"fmt"
	"net/http"
	"time"

	"reviewscope-backend/internal/components/telemetry"
	"reviewscope-backend/internal/service"
	"reviewscope-backend/pkg/serviceutil"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"
)

var servePort int

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Overrides service.port.")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve [--port <port>]",
	Short: "Serves reviewscope.v1.ReviewService over connect rpc.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		port := a.Config.Service.Port
		if servePort != 0 {
			port = servePort
		}

		otelInterceptor, err := serviceutil.NewConnectOtelInterceptor()
		if err != nil {
			return fmt.Errorf("initialize otel interceptor: %w", err)
		}

		tel := telemetry.SlogAPI{}
		telemetry.InstrumentPerfStats(ctx, tel)

		mux := http.NewServeMux()
		mux.Handle(service.NewHandler(
			service.NewService(a.Pipeline, a.Store, service.WithTelemetry(tel)),
			connect.WithInterceptors(
				otelInterceptor,
				service.NewBearerTokenInterceptor(a.Config.Service.AccessToken),
			),
		))
		return serviceutil.StartHttpServer(ctx, port, mux, time.Second*10)
	},
}
